package cart

import (
	"context"
	"database/sql"
)

// PostgresSchema creates the archive table.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS archive (
	k TEXT PRIMARY KEY,
	v TEXT NOT NULL
);
`

// PostgresKV archives the cart in Postgres. Open the db with the pgx stdlib
// driver.
type PostgresKV struct {
	db *sql.DB
}

func NewPostgresKV(db *sql.DB) (*PostgresKV, error) {
	if _, err := db.Exec(PostgresSchema); err != nil {
		return nil, err
	}
	return &PostgresKV{db: db}, nil
}

func (s *PostgresKV) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, `
			SELECT v FROM archive WHERE k = $1
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

func (s *PostgresKV) Set(ctx context.Context, key, value string) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO archive (k, v) VALUES ($1, $2)
			ON CONFLICT (k) DO UPDATE SET v = excluded.v
		`, key, value)
		return err
	})
}

func (s *PostgresKV) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}
