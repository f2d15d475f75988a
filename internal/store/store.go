// Package store persists ledger transactions to JSON files, CSV files and a
// SQLite table. Every adapter reports I/O failures as *model.PersistenceError
// and never returns partial data from a failed load.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/cleared-dev/tally/internal/model"
)

// Format selects a persistence backend. The caller always names it
// explicitly; it is never guessed from a file name.
type Format int

const (
	StructuredText Format = iota + 1 // JSON array of records
	TabularText                      // CSV with a header row
	Relational                       // SQLite table
)

// String returns the short name used in config and on the command line.
func (f Format) String() string {
	switch f {
	case StructuredText:
		return "json"
	case TabularText:
		return "csv"
	case Relational:
		return "sqlite"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Ext returns the conventional file extension, dot included.
func (f Format) Ext() string {
	switch f {
	case StructuredText:
		return ".json"
	case TabularText:
		return ".csv"
	case Relational:
		return ".db"
	default:
		return ""
	}
}

// Formats lists every supported format.
func Formats() []Format {
	return []Format{StructuredText, TabularText, Relational}
}

// ParseFormat maps "json", "csv" or "sqlite" to a Format.
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, f := range Formats() {
		if f.String() == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown format %q (want json, csv or sqlite): %w", s, model.ErrInvalidArgument)
}

// Adapter translates between transactions and one durable representation.
type Adapter interface {
	Format() Format
	// Save writes txns. File adapters replace the file; the relational
	// adapter appends one row per transaction.
	Save(ctx context.Context, txns []model.Transaction) error
	// Load returns every stored transaction in order.
	Load(ctx context.Context) ([]model.Transaction, error)
	// Close releases any handle held by the adapter.
	Close() error
}

// Open builds the adapter for format f backed by target (a file path).
func Open(ctx context.Context, f Format, target string) (Adapter, error) {
	switch f {
	case StructuredText:
		return NewJSONFile(target), nil
	case TabularText:
		return NewCSVFile(target), nil
	case Relational:
		return OpenSQLite(ctx, target)
	default:
		return nil, fmt.Errorf("open %s: %w", f, model.ErrInvalidArgument)
	}
}
