package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

var (
	bucketGlobal    = []byte(TierGlobal)
	bucketWorkspace = []byte(TierWorkspace)
)

type boltKV struct {
	db *bolt.DB
}

func openBoltKV(path string) (*boltKV, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "open bolt")
	}
	if err := initBoltSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &boltKV{db: db}, nil
}

func initBoltSchema(db *bolt.DB) error {
	return db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketGlobal); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(bucketWorkspace); err != nil {
			return err
		}
		return nil
	})
}

func bucketFor(tier Tier) ([]byte, error) {
	switch tier {
	case TierGlobal:
		return bucketGlobal, nil
	case TierWorkspace:
		return bucketWorkspace, nil
	default:
		return nil, errUnknownTier
	}
}

func (s *boltKV) Get(ctx context.Context, tier Tier, key string) ([]byte, bool, error) {
	name, err := bucketFor(tier)
	if err != nil {
		return nil, false, err
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	var out []byte
	err = s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(name)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			// Values are only valid for the life of the transaction.
			out = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, errors.Wrapf(err, "read %s/%s", tier, key)
	}
	return out, out != nil, nil
}

func (s *boltKV) Set(ctx context.Context, tier Tier, key string, value []byte) error {
	name, err := bucketFor(tier)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(name)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), value)
	})
	return errors.Wrapf(err, "write %s/%s", tier, key)
}

func (s *boltKV) Keys(ctx context.Context, tier Tier) ([]string, error) {
	name, err := bucketFor(tier)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := []string{}
	err = s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(name)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, _ []byte) error {
			out = append(out, string(k))
			return nil
		})
	})
	return out, errors.Wrap(err, "list keys")
}

func (s *boltKV) Backend() Backend { return BackendBolt }

func (s *boltKV) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
