package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/logger"
	"github.com/cleared-dev/tally/internal/model"

	_ "modernc.org/sqlite"
)

// ErrClosed is returned for operations on a closed SQLite adapter.
var ErrClosed = errors.New("store is closed")

const (
	insertTransaction = `INSERT INTO transactions (amount, category, description, date) VALUES (?, ?, ?, ?)`
	selectAll         = `SELECT amount, category, description, date FROM transactions ORDER BY id ASC`
)

// SQLite stores transactions as rows of the transactions table. Rows are
// only ever appended.
type SQLite struct {
	db     *sql.DB
	path   string
	closed bool
}

// OpenSQLite opens (creating if needed) the database at path and makes sure
// the transactions table exists. The handle is held until Close.
// In-memory databases are refused: every connection would get its own empty
// database.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if isMemoryDSN(path) {
		return nil, &model.PersistenceError{Op: "open", Target: path, Err: fmt.Errorf("in-memory database: %w", model.ErrInvalidArgument)}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, &model.PersistenceError{Op: "open", Target: path, Err: fmt.Errorf("create db directory: %w", err)}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &model.PersistenceError{Op: "open", Target: path, Err: err}
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &model.PersistenceError{Op: "open", Target: path, Err: fmt.Errorf("ping database: %w", err)}
	}

	if err := ensureSchema(path); err != nil {
		db.Close()
		return nil, &model.PersistenceError{Op: "open", Target: path, Err: err}
	}

	log := logger.FromContext(ctx)
	log.Debug().Str("path", path).Msg("opened sqlite ledger")

	return &SQLite{db: db, path: path}, nil
}

func isMemoryDSN(path string) bool {
	return path == "" || path == ":memory:" ||
		strings.HasPrefix(path, "file::memory:") || strings.Contains(path, "mode=memory")
}

// Format implements Adapter.
func (s *SQLite) Format() Format { return Relational }

// Close releases the database handle. Calling it again is a no-op.
func (s *SQLite) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.db.Close(); err != nil {
		return &model.PersistenceError{Op: "close", Target: s.path, Err: err}
	}
	return nil
}

// Save inserts one row per transaction in a single SQL transaction: either
// every row is appended or none is.
func (s *SQLite) Save(ctx context.Context, txns []model.Transaction) error {
	if s.closed {
		return &model.PersistenceError{Op: "save", Target: s.path, Err: ErrClosed}
	}
	if err := s.insert(ctx, txns); err != nil {
		return &model.PersistenceError{Op: "save", Target: s.path, Err: err}
	}

	log := logger.FromContext(ctx)
	log.Debug().Str("path", s.path).Int("count", len(txns)).Msg("appended sqlite rows")
	return nil
}

func (s *SQLite) insert(ctx context.Context, txns []model.Transaction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertTransaction)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range txns {
		if _, err := stmt.ExecContext(ctx, t.Amount.InexactFloat64(), t.Category, t.Description, t.Date); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Load returns every row in insertion (id) order without the id.
func (s *SQLite) Load(ctx context.Context) ([]model.Transaction, error) {
	if s.closed {
		return nil, &model.PersistenceError{Op: "load", Target: s.path, Err: ErrClosed}
	}
	txns, err := s.selectAll(ctx)
	if err != nil {
		return nil, &model.PersistenceError{Op: "load", Target: s.path, Err: err}
	}

	log := logger.FromContext(ctx)
	log.Debug().Str("path", s.path).Int("count", len(txns)).Msg("loaded sqlite rows")
	return txns, nil
}

func (s *SQLite) selectAll(ctx context.Context) ([]model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, selectAll)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txns []model.Transaction
	for rows.Next() {
		var (
			amount float64
			desc   sql.NullString
			t      model.Transaction
		)
		if err := rows.Scan(&amount, &t.Category, &desc, &t.Date); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Amount = decimal.NewFromFloat(amount)
		t.Description = desc.String
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txns, nil
}
