package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gofiber/fiber/v2/log"

	"github.com/benbeisheim/chess-backend/internal/model"
)

const gamePrefix = "game/"

// ErrNotFound is returned when no game is saved under an id.
var ErrNotFound = errors.New("saved game not found")

// record is the stored form of a game.
type record struct {
	SavedAt time.Time       `json:"saved_at"`
	State   model.GameState `json:"state"`
}

// Summary describes a saved game without its history.
type Summary struct {
	ID      string         `json:"id"`
	SavedAt time.Time      `json:"savedAt"`
	Status  model.Status   `json:"status"`
	Type    model.GameType `json:"gameType"`
	Plies   int            `json:"plies"`
}

// Store wraps BadgerDB for saved games
type Store struct {
	db  *badger.DB
	now func() time.Time
}

// Open opens the store in dir. An in-memory store keeps nothing on disk
// and ignores dir.
func Open(dir string, inMemory bool) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", dir, err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func gameKey(id string) []byte {
	return []byte(gamePrefix + id)
}

// Save stores state under its id, replacing any earlier save.
func (s *Store) Save(state model.GameState) error {
	data, err := json.Marshal(record{SavedAt: s.now().UTC(), State: state})
	if err != nil {
		return fmt.Errorf("encode game %s: %w", state.ID, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(gameKey(state.ID), data)
	})
	if err != nil {
		return fmt.Errorf("save game %s: %w", state.ID, err)
	}
	log.Debugw("game saved", "game_id", state.ID, "bytes", len(data))
	return nil
}

// Load returns the state saved under id.
func (s *Store) Load(id string) (model.GameState, error) {
	var rec record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gameKey(id))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return model.GameState{}, fmt.Errorf("load game %s: %w", id, err)
	}
	return rec.State, nil
}

// Delete removes the save for id. Deleting a missing game is not an error.
func (s *Store) Delete(id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(gameKey(id))
	})
}

// List returns a summary of every saved game in key order.
func (s *Store) List() ([]Summary, error) {
	var summaries []Summary
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(gamePrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec record
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			summaries = append(summaries, Summary{
				ID:      rec.State.ID,
				SavedAt: rec.SavedAt,
				Status:  rec.State.Status,
				Type:    rec.State.Type,
				Plies:   len(rec.State.Plies),
			})
		}
		return nil
	})
	return summaries, err
}
