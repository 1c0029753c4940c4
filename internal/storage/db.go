// Package storage persists tree nodes in SQLite. It is the only package
// that touches the database; the coordinate algebra stays pure and the
// engine composes the two.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"brocot/internal/config"
	brocoterrors "brocot/internal/errors"
	"brocot/internal/logging"
)

// DB wraps two connection pools over one SQLite file: a read pool and a
// single-connection write pool whose transactions start with BEGIN
// IMMEDIATE. Taking the write lock up front is the locking discipline the
// coordinate protocol needs: slot allocation and subtree rewrites read,
// compute, and write inside one lock, so no two writers can mint the same
// child slot or interleave a descendant rewrite.
type DB struct {
	reader *sql.DB
	writer *sql.DB
	logger *logging.Logger
	dbPath string
}

// Open opens or creates the tree database at <root>/<dataDir>/tree.db.
func Open(root string, cfg *config.Config, logger *logging.Logger) (*DB, error) {
	dir := filepath.Join(root, cfg.DataDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dir, "tree.db")
	dbExists := fileExists(dbPath)

	reader, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	writer, err := sql.Open("sqlite", "file:"+dbPath+"?_txlock=immediate")
	if err != nil {
		_ = reader.Close()
		return nil, fmt.Errorf("failed to open write connection: %w", err)
	}
	// One writer connection; SQLite serializes writers anyway and a single
	// connection avoids spurious SQLITE_BUSY between our own transactions.
	writer.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		fmt.Sprintf("PRAGMA busy_timeout=%d", cfg.Locking.BusyTimeoutMs),
		"PRAGMA cache_size=-16000",
	}
	for _, conn := range []*sql.DB{reader, writer} {
		for _, pragma := range pragmas {
			if _, err := conn.Exec(pragma); err != nil {
				_ = reader.Close()
				_ = writer.Close()
				return nil, fmt.Errorf("failed to set pragma: %w", err)
			}
		}
	}

	db := &DB{
		reader: reader,
		writer: writer,
		logger: logger,
		dbPath: dbPath,
	}

	if !dbExists {
		logger.Info("Creating tree database", map[string]interface{}{
			"path": dbPath,
		})
	}
	if err := db.initializeSchema(); err != nil {
		_ = reader.Close()
		_ = writer.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Close closes both connection pools.
func (db *DB) Close() error {
	var firstErr error
	if db.writer != nil {
		firstErr = db.writer.Close()
	}
	if db.reader != nil {
		if err := db.reader.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.dbPath
}

// SizeBytes returns the current size of the database file.
func (db *DB) SizeBytes() (int64, error) {
	info, err := os.Stat(db.dbPath)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Querier is the subset of database/sql shared by *sql.DB and *sql.Tx, so
// repository calls run unchanged inside or outside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Reader returns the read pool for queries outside a transaction.
func (db *DB) Reader() Querier {
	return db.reader
}

// WithWriteTx runs fn inside a BEGIN IMMEDIATE transaction. The write lock
// is held for the whole read-compute-write window, which is what makes
// slot allocation and the reparent rewrite atomic against other writers.
// A lock that cannot be acquired within busy_timeout surfaces as
// CONCURRENT_CONFLICT for the caller to retry; nothing is retried here.
func (db *DB) WithWriteTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.writer.BeginTx(ctx, nil)
	if err != nil {
		return classifyBusy(fmt.Errorf("failed to begin write transaction: %w", err))
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return classifyBusy(err)
	}

	if err := tx.Commit(); err != nil {
		return classifyBusy(fmt.Errorf("failed to commit: %w", err))
	}
	return nil
}

// WithReadTx runs fn inside a deferred read transaction for multi-query
// snapshot consistency.
func (db *DB) WithReadTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.reader.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin read transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	return fn(tx)
}

// classifyBusy maps SQLite lock-contention failures onto the stable
// CONCURRENT_CONFLICT code. Other errors pass through untouched.
func classifyBusy(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY") {
		return brocoterrors.Wrap(brocoterrors.ConcurrentConflict,
			"could not acquire write lock", err)
	}
	return err
}
