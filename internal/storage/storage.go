package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"tasklist/internal/logger"
	"tasklist/internal/models"
)

// DefaultSlot is the key the task collection is stored under.
const DefaultSlot = "tasks"

var ErrUnknownDriver = errors.New("unknown storage driver")

// KV is a local key-value store holding string values under named slots.
type KV interface {
	Get(slot string) (value string, ok bool, err error)
	Put(slot, value string) error
	Close() error
}

// Store persists the whole task collection as JSON in a single slot.
type Store struct {
	kv   KV
	slot string
}

func NewStore(kv KV, slot string) *Store {
	if slot == "" {
		slot = DefaultSlot
	}
	return &Store{kv: kv, slot: slot}
}

// Load returns the persisted tasks. A missing, unreadable or malformed slot
// yields an empty list.
func (s *Store) Load() []models.Task {
	ctx := context.Background()

	raw, ok, err := s.kv.Get(s.slot)
	if err != nil {
		logger.Error(ctx, err, "read slot", "slot", s.slot)
		return []models.Task{}
	}
	if !ok || raw == "" {
		logger.Debug(ctx, "slot is empty", "slot", s.slot)
		return []models.Task{}
	}

	tasks, err := DecodeTasks([]byte(raw))
	if err != nil {
		logger.Error(ctx, err, "discard malformed slot", "slot", s.slot)
		return []models.Task{}
	}
	return tasks
}

var ErrEmptySlot = errors.New("slot is empty")

// Read is Load without the fallback: a missing slot is ErrEmptySlot and a
// malformed one is a decode error.
func (s *Store) Read() ([]models.Task, error) {
	raw, ok, err := s.kv.Get(s.slot)
	if err != nil {
		return nil, fmt.Errorf("read slot %q: %w", s.slot, err)
	}
	if !ok || raw == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptySlot, s.slot)
	}
	return DecodeTasks([]byte(raw))
}

// Copy writes the collection in src to dst and returns how many tasks
// were copied.
func Copy(dst, src *Store) (int, error) {
	tasks, err := src.Read()
	if err != nil {
		return 0, err
	}
	if err := dst.Save(tasks); err != nil {
		return 0, err
	}
	return len(tasks), nil
}

// Save overwrites the slot with the given collection.
func (s *Store) Save(tasks []models.Task) error {
	data, err := EncodeTasks(tasks)
	if err != nil {
		return err
	}
	if err := s.kv.Put(s.slot, string(data)); err != nil {
		return fmt.Errorf("write slot %q: %w", s.slot, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.kv.Close()
}

func EncodeTasks(tasks []models.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []models.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return nil, fmt.Errorf("encode tasks: %w", err)
	}
	return data, nil
}

func DecodeTasks(data []byte) ([]models.Task, error) {
	var tasks []models.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

// Open builds a Store for the given backend. driver is one of "file",
// "memory", "sqlite", "mysql" or "postgres"; path is the directory for the
// file backend and dsn the data source for the SQL ones.
func Open(driver, path, dsn, slot string) (*Store, error) {
	var (
		kv  KV
		err error
	)
	switch driver {
	case "", "file":
		kv, err = NewFileKV(path)
	case "memory":
		kv = NewMemoryKV()
	case "sqlite", "mysql", "postgres":
		if dsn == "" && driver == "sqlite" {
			dsn = SQLitePath(path)
		}
		kv, err = NewSQLKV(driver, dsn)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
	if err != nil {
		return nil, err
	}
	return NewStore(kv, slot), nil
}
