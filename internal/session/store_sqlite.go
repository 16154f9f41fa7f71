package session

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite" // driver: sqlite
)

const storeSchema = `
CREATE TABLE IF NOT EXISTS sessions (
  key        TEXT PRIMARY KEY,
  state_json TEXT NOT NULL,
  updated_at INTEGER NOT NULL
);
`

// SQLiteStore is the file-backed Store used outside of tests.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (creating if needed) the session database at
// path and ensures the schema exists.
func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, storeSchema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(key string) ([]byte, bool, error) {
	var blob string
	err := s.db.QueryRow(`SELECT state_json FROM sessions WHERE key=$1`, key).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(blob), true, nil
}

func (s *SQLiteStore) Put(key string, data []byte) error {
	_, err := s.db.Exec(`INSERT INTO sessions (key,state_json,updated_at) VALUES ($1,$2,$3)
		ON CONFLICT (key) DO UPDATE SET state_json=EXCLUDED.state_json, updated_at=EXCLUDED.updated_at`,
		key, string(data), time.Now().Unix())
	return err
}

func (s *SQLiteStore) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE key=$1`, key)
	return err
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
