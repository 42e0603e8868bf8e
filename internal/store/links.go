package store

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"linkbox-cli/internal/model"

	"github.com/pkg/errors"
)

// LinkStore reads and writes link lists on top of a KV substrate.
type LinkStore struct {
	kv KV
}

func NewLinkStore(kv KV) *LinkStore {
	return &LinkStore{kv: kv}
}

func (s *LinkStore) KV() KV { return s.kv }

func resolvedKey(key string) string {
	if strings.TrimSpace(key) == "" {
		return GlobalKey
	}
	return key
}

// Links returns the normalized list stored at key. Missing, malformed or
// all-invalid values yield model.DefaultLinks. Only substrate failures error.
func (s *LinkStore) Links(ctx context.Context, key string) ([]model.Link, error) {
	raw, ok, err := s.kv.Get(ctx, TierGlobal, resolvedKey(key))
	if err != nil {
		return nil, err
	}
	if !ok {
		return model.DefaultLinks(), nil
	}
	links, isArray := decodeLinks(raw)
	if !isArray || len(links) == 0 {
		return model.DefaultLinks(), nil
	}
	return links, nil
}

// UpdateLinks replaces the list stored at key.
func (s *LinkStore) UpdateLinks(ctx context.Context, key string, links []model.Link) error {
	if links == nil {
		links = []model.Link{}
	}
	b, err := json.Marshal(links)
	if err != nil {
		return errors.Wrap(err, "encode links")
	}
	return s.kv.Set(ctx, TierGlobal, resolvedKey(key), b)
}

// decodeLinks keeps entries whose label and url are strings that are non-empty
// once trimmed. isArray is false when raw is not a JSON array.
func decodeLinks(raw []byte) (links []model.Link, isArray bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil, false
	}
	out := make([]model.Link, 0, len(items))
	for _, it := range items {
		var entry map[string]any
		if err := json.Unmarshal(it, &entry); err != nil || entry == nil {
			continue
		}
		label, lok := entry["label"].(string)
		url, uok := entry["url"].(string)
		if !lok || !uok {
			continue
		}
		l := model.Link{Label: label, URL: url}.Trimmed()
		if l.Label == "" || l.URL == "" {
			continue
		}
		out = append(out, l)
	}
	return out, true
}

func isJSONArray(raw []byte) bool {
	var items []json.RawMessage
	return json.Unmarshal(raw, &items) == nil && items != nil
}

func isJSONNull(raw []byte) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// KeyReport summarizes what is stored under one key.
type KeyReport struct {
	Key     string `json:"key"`
	Tier    Tier   `json:"tier"`
	IsList  bool   `json:"isList"`
	Entries int    `json:"entries"`
	Valid   int    `json:"valid"`
}

// Inspect reports every key in every tier.
func (s *LinkStore) Inspect(ctx context.Context) ([]KeyReport, error) {
	out := []KeyReport{}
	for _, tier := range []Tier{TierGlobal, TierWorkspace} {
		keys, err := s.kv.Keys(ctx, tier)
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			raw, ok, err := s.kv.Get(ctx, tier, k)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			rep := KeyReport{Key: k, Tier: tier}
			var items []json.RawMessage
			if json.Unmarshal(raw, &items) == nil && items != nil {
				rep.IsList = true
				rep.Entries = len(items)
				valid, _ := decodeLinks(raw)
				rep.Valid = len(valid)
			}
			out = append(out, rep)
		}
	}
	return out, nil
}
