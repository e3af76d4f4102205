// Package store persists CureCircle documents in an embedded Badger
// database. Failures surface as structured *Error values with
// machine-readable codes so callers can distinguish permission problems
// from schema drift from plain not-found.
package store

import (
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// Collection names. Each has a schema marker written at bootstrap; reads
// and writes verify the marker so a data directory from an incompatible
// build fails loudly instead of silently misreading records.
const (
	collectionCards     = "cards"
	collectionProfiles  = "profiles"
	collectionUsers     = "users"
	collectionSessions  = "sessions"
	collectionPlaylists = "playlists"
)

// schemaVersion is bumped when a collection's record shape changes in a way
// normalization cannot bridge.
const schemaVersion = 1

var collections = []string{
	collectionCards,
	collectionProfiles,
	collectionUsers,
	collectionSessions,
	collectionPlaylists,
}

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// New opens the database at path and bootstraps schema markers.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Sync writes to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	s := &Store{db: db, logger: logger}

	if err := s.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return s, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// ensureSchema writes the version marker for every collection.
func (s *Store) ensureSchema() error {
	return s.db.Update(func(txn *badger.Txn) error {
		for _, c := range collections {
			key := schemaKey(c)
			if _, err := txn.Get(key); err == nil {
				continue
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			if err := txn.Set(key, fmt.Appendf(nil, "%d", schemaVersion)); err != nil {
				return err
			}
		}
		return nil
	})
}

// checkCollection verifies the schema marker for a collection inside txn.
func checkCollection(txn *badger.Txn, collection string) error {
	_, err := txn.Get(schemaKey(collection))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrMissingTable.WithMessage(
			fmt.Sprintf("schema marker for %q missing; data directory was not initialized by this server", collection))
	}
	if err != nil {
		return ErrInternal.WithCause(err)
	}
	return nil
}

func schemaKey(collection string) []byte {
	return fmt.Appendf(nil, "schema:%s", collection)
}

// Helper methods for database operations.

// get retrieves a value by key.
func (s *Store) get(key []byte, dest any) error {
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return ErrInternal.WithCause(err)
	}
	return nil
}

// getRaw retrieves the raw stored bytes for a key.
func (s *Store) getRaw(key []byte) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, ErrInternal.WithCause(err)
	}
	return out, nil
}

// set stores a value by key, verifying the collection's schema marker in the
// same transaction.
func (s *Store) set(collection string, key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return ErrInternal.WithMessage("failed to marshal record").WithCause(err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := checkCollection(txn, collection); err != nil {
			return err
		}
		return txn.Set(key, data)
	})

	var serr *Error
	if errors.As(err, &serr) {
		return serr
	}
	if err != nil {
		return ErrInternal.WithCause(err)
	}
	return nil
}

// delete removes a key from the database.
func (s *Store) delete(key []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
	if err != nil {
		return ErrInternal.WithCause(err)
	}
	return nil
}

// exists checks if a key exists.
func (s *Store) exists(key []byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, ErrInternal.WithCause(err)
	}
	return true, nil
}

// userExists reports whether a user record exists inside txn. Used for
// owner-reference checks on writes.
func userExists(txn *badger.Txn, userID string) (bool, error) {
	_, err := txn.Get(userKey(userID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
