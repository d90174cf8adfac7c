// Package snapshot persists reconciliation proposals between edit
// round-trips, keyed by statement line id.
package snapshot

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/openledger-dev/bank-reconcile/internal/engine"
)

const bucketProposals = "proposals"

// Store is the bbolt-backed proposal snapshot store. It implements the
// engine's SnapshotStore.
type Store struct {
	db *bolt.DB
}

// Open creates a Store at the given path and initializes its bucket.
func Open(dbPath string) (*Store, error) {
	db, err := bolt.Open(dbPath, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketProposals))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns the stored proposal for a statement line, nil when none is
// stored.
func (s *Store) Load(statementLineID int64) (*engine.Proposal, error) {
	var proposal *engine.Proposal
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(bucketProposals)).Get(itob(statementLineID))
		if data == nil {
			return nil
		}
		proposal = &engine.Proposal{}
		if err := json.Unmarshal(data, proposal); err != nil {
			return fmt.Errorf("failed to unmarshal proposal: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return proposal, nil
}

// Save stores the proposal of a statement line, replacing any previous one.
func (s *Store) Save(statementLineID int64, p *engine.Proposal) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("failed to marshal proposal: %w", err)
		}
		return tx.Bucket([]byte(bucketProposals)).Put(itob(statementLineID), data)
	})
}

// Delete drops the stored proposal of a statement line.
func (s *Store) Delete(statementLineID int64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketProposals)).Delete(itob(statementLineID))
	})
}

// itob converts an int64 to a byte slice for use as a bbolt key.
func itob(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}
