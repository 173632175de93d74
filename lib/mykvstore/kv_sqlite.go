package mykvstore

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type sqliteStore struct {
	db *sql.DB
}

func newSqliteStore(c context.Context, path string) (*sqliteStore, func(), error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening local db %s: %s", path, err)
	}

	_, err = db.ExecContext(c, `CREATE TABLE IF NOT EXISTS keyvalue (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("error creating keyvalue table: %s", err)
	}

	return &sqliteStore{
			db: db,
		}, func() {
			db.Close()
		}, nil
}

func (s *sqliteStore) Get(c context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(c, `SELECT value FROM keyvalue WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("error fetching key %s: %s", key, err)
	}

	return value, true, nil
}

func (s *sqliteStore) Set(c context.Context, key string, value string) error {
	_, err := s.db.ExecContext(c, `INSERT INTO keyvalue (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("error storing key %s: %s", key, err)
	}

	return nil
}

func (s *sqliteStore) Remove(c context.Context, key string) error {
	_, err := s.db.ExecContext(c, `DELETE FROM keyvalue WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("error removing key %s: %s", key, err)
	}

	return nil
}
