package store

import (
	"context"
	"errors"
)

// Tier selects one of the two key spaces held by a substrate.
//
// TierGlobal is the current home of every link list. TierWorkspace only holds
// data written by older releases and is read during seeding.
type Tier string

const (
	TierGlobal    Tier = "global"
	TierWorkspace Tier = "workspace"
)

func (t Tier) valid() bool {
	return t == TierGlobal || t == TierWorkspace
}

var errUnknownTier = errors.New("unknown storage tier")

// KV is the persistence substrate: an opaque string -> JSON value map per tier.
// Set replaces the whole value at key in a single write.
type KV interface {
	Get(ctx context.Context, tier Tier, key string) ([]byte, bool, error)
	Set(ctx context.Context, tier Tier, key string, value []byte) error
	Keys(ctx context.Context, tier Tier) ([]string, error)
	Backend() Backend
	Close() error
}
