package store

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/pkg/errors"
)

type seedSource struct {
	tier Tier
	key  string
}

// seedSources lists, in priority order, where older releases kept a folder's links.
// The order is a migration contract; do not extend it for new key formats.
func seedSources(folder *Folder, key string) []seedSource {
	legacyKey, hasLegacy := legacyStorageKey(folder)
	out := make([]seedSource, 0, 4)
	if hasLegacy {
		out = append(out, seedSource{tier: TierGlobal, key: legacyKey})
	}
	out = append(out, seedSource{tier: TierWorkspace, key: key})
	if hasLegacy {
		out = append(out, seedSource{tier: TierWorkspace, key: legacyKey})
	}
	out = append(out, seedSource{tier: TierWorkspace, key: GlobalKey})
	return out
}

// SeedIfEmpty copies legacy data into key the first time a folder is seen.
// It reports whether anything was written.
func (s *LinkStore) SeedIfEmpty(ctx context.Context, folder *Folder, key string) (bool, error) {
	if key == "" || key == GlobalKey {
		return false, nil
	}
	existing, ok, err := s.kv.Get(ctx, TierGlobal, key)
	if err != nil {
		return false, err
	}
	if ok && isJSONArray(existing) {
		return false, nil
	}

	for _, src := range seedSources(folder, key) {
		raw, ok, err := s.kv.Get(ctx, src.tier, src.key)
		if err != nil {
			return false, err
		}
		if !ok || isJSONFalsy(raw) {
			continue
		}
		// The first truthy value wins even when it is not a list; a non-list ends the search.
		if !isJSONArray(raw) {
			return false, nil
		}
		if err := s.kv.Set(ctx, TierGlobal, key, raw); err != nil {
			return false, errors.Wrapf(err, "seed %s from %s/%s", key, src.tier, src.key)
		}
		return true, nil
	}
	return false, nil
}

// isJSONFalsy reports null, false, numeric zero and the empty string. Older
// releases tested candidates for truthiness, so these fall through.
func isJSONFalsy(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	if isJSONNull(raw) || bytes.Equal(raw, []byte("false")) {
		return true
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case string:
		return t == ""
	case float64:
		return t == 0
	}
	return false
}
