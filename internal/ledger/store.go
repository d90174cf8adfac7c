package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/openledger-dev/bank-reconcile/internal/currency"
)

// ErrNotFound is returned when a record is not found.
var ErrNotFound = errors.New("record not found")

// dbtx is satisfied by both *sql.DB and *sql.Tx so read queries can run
// inside or outside a transaction.
type dbtx interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// Store manages the ledger database.
type Store struct {
	queries
	db     *sql.DB
	dbPath string
}

// Tx groups ledger mutations into one atomic unit.
type Tx struct {
	queries
	tx *sql.Tx
}

// Open opens the ledger database, enabling WAL mode and foreign keys, and
// initializes the schema. The currency service is used for residual zero
// checks when recording reconciliations.
func Open(dbPath string, currencies *currency.Service) (*Store, error) {
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	connStr := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL", dbPath)
	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	store := &Store{
		queries: queries{db: db, currencies: currencies},
		db:      db,
		dbPath:  dbPath,
	}
	return store, nil
}

// OpenInMemory opens a throwaway in-memory ledger, mainly for tests.
func OpenInMemory(currencies *currency.Service) (*Store, error) {
	db, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Store{queries: queries{db: db, currencies: currencies}, db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// Transaction executes a function within a database transaction. If the
// function returns an error the transaction is rolled back, otherwise it is
// committed.
func (s *Store) Transaction(fn func(*Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	ltx := &Tx{queries: queries{db: tx, currencies: s.queries.currencies}, tx: tx}
	if err := fn(ltx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
