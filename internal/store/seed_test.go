package store

import (
	"context"
	"reflect"
	"testing"

	"linkbox-cli/internal/model"
)

func TestSeedIfEmpty_PriorityChain(t *testing.T) {
	folder := &Folder{URI: "file:///work/My%20Site"}
	key := resolveStorageKey("linux", folder)
	legacy := GlobalKey + ":" + folder.URI

	list := func(label string) []byte {
		return []byte(`[{"label":"` + label + `","url":"https://` + label + `.example.com"}]`)
	}

	type entry struct {
		tier Tier
		key  string
	}
	all := []entry{
		{TierGlobal, legacy},
		{TierWorkspace, key},
		{TierWorkspace, legacy},
		{TierWorkspace, GlobalKey},
	}

	// Each case stores data at candidates[from:] and expects the first one to win.
	for from := range all {
		from := from
		t.Run(string(all[from].tier)+":"+all[from].key, func(t *testing.T) {
			ctx := context.Background()
			kv := NewMemoryKV()
			ls := NewLinkStore(kv)
			for i := from; i < len(all); i++ {
				if err := kv.Set(ctx, all[i].tier, all[i].key, list("c"+string(rune('0'+i)))); err != nil {
					t.Fatalf("set: %v", err)
				}
			}

			seeded, err := ls.SeedIfEmpty(ctx, folder, key)
			if err != nil {
				t.Fatalf("SeedIfEmpty: %v", err)
			}
			if !seeded {
				t.Fatalf("expected seeding")
			}
			got, err := ls.Links(ctx, key)
			if err != nil {
				t.Fatalf("Links: %v", err)
			}
			label := "c" + string(rune('0'+from))
			want := []model.Link{{Label: label, URL: "https://" + label + ".example.com"}}
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("Links = %+v, want %+v", got, want)
			}
		})
	}
}

func TestSeedIfEmpty_NoOps(t *testing.T) {
	ctx := context.Background()
	folder := &Folder{URI: "file:///work/site"}
	key := resolveStorageKey("linux", folder)

	t.Run("existing data", func(t *testing.T) {
		kv := NewMemoryKV()
		ls := NewLinkStore(kv)
		_ = kv.Set(ctx, TierGlobal, key, []byte(`[]`))
		_ = kv.Set(ctx, TierWorkspace, GlobalKey, []byte(`[{"label":"old","url":"https://old.example.com"}]`))
		seeded, err := ls.SeedIfEmpty(ctx, folder, key)
		if err != nil || seeded {
			t.Fatalf("expected no-op, seeded=%v err=%v", seeded, err)
		}
		raw, _, _ := kv.Get(ctx, TierGlobal, key)
		if string(raw) != "[]" {
			t.Fatalf("existing data overwritten: %s", raw)
		}
	})

	t.Run("no legacy data", func(t *testing.T) {
		kv := NewMemoryKV()
		ls := NewLinkStore(kv)
		seeded, err := ls.SeedIfEmpty(ctx, folder, key)
		if err != nil || seeded {
			t.Fatalf("expected no-op, seeded=%v err=%v", seeded, err)
		}
		if _, ok, _ := kv.Get(ctx, TierGlobal, key); ok {
			t.Fatalf("nothing should be written")
		}
	})

	t.Run("global key is never seeded", func(t *testing.T) {
		kv := NewMemoryKV()
		ls := NewLinkStore(kv)
		_ = kv.Set(ctx, TierWorkspace, GlobalKey, []byte(`[{"label":"old","url":"https://old.example.com"}]`))
		seeded, err := ls.SeedIfEmpty(ctx, nil, GlobalKey)
		if err != nil || seeded {
			t.Fatalf("expected no-op, seeded=%v err=%v", seeded, err)
		}
	})

	t.Run("first hit that is not a list stops the chain", func(t *testing.T) {
		kv := NewMemoryKV()
		ls := NewLinkStore(kv)
		_ = kv.Set(ctx, TierWorkspace, key, []byte(`{"broken":true}`))
		_ = kv.Set(ctx, TierWorkspace, GlobalKey, []byte(`[{"label":"old","url":"https://old.example.com"}]`))
		seeded, err := ls.SeedIfEmpty(ctx, folder, key)
		if err != nil || seeded {
			t.Fatalf("expected no-op, seeded=%v err=%v", seeded, err)
		}
	})
}

func TestSeedIfEmpty_FalsyValuesFallThrough(t *testing.T) {
	ctx := context.Background()
	folder := &Folder{URI: "file:///work/My%20Site"}
	key := resolveStorageKey("linux", folder)
	legacy := GlobalKey + ":" + folder.URI

	for _, falsy := range []string{`false`, `0`, `0.0`, `""`, `null`} {
		t.Run(falsy, func(t *testing.T) {
			kv := NewMemoryKV()
			ls := NewLinkStore(kv)
			_ = kv.Set(ctx, TierGlobal, legacy, []byte(falsy))
			_ = kv.Set(ctx, TierWorkspace, key, []byte(`[{"label":"ws","url":"https://ws.example.com"}]`))

			seeded, err := ls.SeedIfEmpty(ctx, folder, key)
			if err != nil || !seeded {
				t.Fatalf("expected seeding past %s, seeded=%v err=%v", falsy, seeded, err)
			}
			got, err := ls.Links(ctx, key)
			if err != nil {
				t.Fatalf("Links: %v", err)
			}
			if len(got) != 1 || got[0].Label != "ws" {
				t.Fatalf("got %+v", got)
			}
		})
	}

	t.Run("truthy scalar still stops the chain", func(t *testing.T) {
		kv := NewMemoryKV()
		ls := NewLinkStore(kv)
		_ = kv.Set(ctx, TierGlobal, legacy, []byte(`"x"`))
		_ = kv.Set(ctx, TierWorkspace, key, []byte(`[{"label":"ws","url":"https://ws.example.com"}]`))
		seeded, err := ls.SeedIfEmpty(ctx, folder, key)
		if err != nil || seeded {
			t.Fatalf("expected no-op, seeded=%v err=%v", seeded, err)
		}
	})
}
