package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const createSlotsTable = `
CREATE TABLE IF NOT EXISTS kv_slots (
	slot VARCHAR(191) NOT NULL PRIMARY KEY,
	payload TEXT NOT NULL
)`

var upsertSlot = map[string]string{
	"sqlite":   `INSERT INTO kv_slots (slot, payload) VALUES (?, ?) ON CONFLICT (slot) DO UPDATE SET payload = excluded.payload`,
	"postgres": `INSERT INTO kv_slots (slot, payload) VALUES (?, ?) ON CONFLICT (slot) DO UPDATE SET payload = excluded.payload`,
	"mysql":    `INSERT INTO kv_slots (slot, payload) VALUES (?, ?) ON DUPLICATE KEY UPDATE payload = VALUES(payload)`,
}

// SQLKV stores slots in the kv_slots table of a SQL database.
type SQLKV struct {
	db     *sqlx.DB
	upsert string
	get    string
}

// SQLitePath is the database file used by the sqlite driver when no DSN is set.
func SQLitePath(dir string) string {
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, "tasks.db")
}

func NewSQLKV(driver, dsn string) (*SQLKV, error) {
	upsert, ok := upsertSlot[driver]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	if driver == "sqlite" {
		// one writer keeps sqlite from reporting SQLITE_BUSY
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(createSlotsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create kv_slots table: %w", err)
	}

	return &SQLKV{
		db:     db,
		upsert: db.Rebind(upsert),
		get:    db.Rebind(`SELECT payload FROM kv_slots WHERE slot = ?`),
	}, nil
}

func (s *SQLKV) Get(slot string) (string, bool, error) {
	var payload string
	err := s.db.Get(&payload, s.get, slot)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return payload, true, nil
}

func (s *SQLKV) Put(slot, value string) error {
	_, err := s.db.Exec(s.upsert, slot, value)
	return err
}

func (s *SQLKV) Close() error {
	return s.db.Close()
}
