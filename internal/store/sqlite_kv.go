package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	_ "modernc.org/sqlite"
)

type sqliteKV struct {
	db *sql.DB
}

func openSQLiteKV(ctx context.Context, path string) (*sqliteKV, error) {
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	// WAL lets the TUI and the manager share the file; busy_timeout avoids "database is locked".
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, errors.Wrapf(err, "sqlite %s", p)
		}
	}
	if err := migrateSQLiteKV(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &sqliteKV{db: db}, nil
}

func migrateSQLiteKV(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			tier TEXT NOT NULL,
			k TEXT NOT NULL,
			v TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL,
			PRIMARY KEY (tier, k)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return errors.Wrap(err, "migrate sqlite kv")
		}
	}
	return nil
}

func (s *sqliteKV) Get(ctx context.Context, tier Tier, key string) ([]byte, bool, error) {
	if !tier.valid() {
		return nil, false, errUnknownTier
	}
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT v FROM kv WHERE tier = ? AND k = ?`, string(tier), key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "read %s/%s", tier, key)
	}
	return []byte(v), true, nil
}

func (s *sqliteKV) Set(ctx context.Context, tier Tier, key string, value []byte) error {
	if !tier.valid() {
		return errUnknownTier
	}
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer func() { _ = tx.Rollback() }()

	nowMs := time.Now().UTC().UnixMilli()
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO kv(tier, k, v, updated_at_unixms) VALUES(?, ?, ?, ?)`,
		string(tier), key, string(value), nowMs); err != nil {
		return errors.Wrapf(err, "write %s/%s", tier, key)
	}
	return errors.Wrap(tx.Commit(), "commit")
}

func (s *sqliteKV) Keys(ctx context.Context, tier Tier) ([]string, error) {
	if !tier.valid() {
		return nil, errUnknownTier
	}
	rows, err := s.db.QueryContext(ctx, `SELECT k FROM kv WHERE tier = ? ORDER BY k ASC`, string(tier))
	if err != nil {
		return nil, errors.Wrap(err, "list keys")
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func (s *sqliteKV) Backend() Backend { return BackendSQLite }

func (s *sqliteKV) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
