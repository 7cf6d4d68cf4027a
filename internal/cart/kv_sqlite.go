package cart

import (
	"context"
	"database/sql"
	"time"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
)

// SQLiteSchema creates the archive table. SQLiteKV applies it on New, but it
// is exported so migrations can run it directly.
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS archive (
	k TEXT PRIMARY KEY,
	v TEXT NOT NULL
);
`

// SQLiteKV archives the cart in a local SQLite file, the durable-local-file
// analogue of a browser's localStorage. Open the db with the "sqlite"
// driver (modernc.org/sqlite).
type SQLiteKV struct {
	db *sql.DB
}

func NewSQLiteKV(db *sql.DB) (*SQLiteKV, error) {
	if _, err := db.Exec(SQLiteSchema); err != nil {
		return nil, err
	}
	return &SQLiteKV{db: db}, nil
}

func (s *SQLiteKV) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, `
			SELECT v FROM archive WHERE k = ?
		`, key).Scan(&v)
	})

	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *SQLiteKV) Set(ctx context.Context, key, value string) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO archive (k, v) VALUES (?, ?)
			ON CONFLICT (k) DO UPDATE SET v = excluded.v
		`, key, value)
		return err
	})
}

func (s *SQLiteKV) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
