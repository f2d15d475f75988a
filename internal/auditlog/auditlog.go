// Package auditlog appends one CSV row per ledger operation to
// logs/audit-log.csv.
package auditlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cleared-dev/tally/internal/ledger"
)

// Entry is one row in the audit log.
type Entry struct {
	Timestamp time.Time
	Session   string
	Operation string
	Index     int // -1 when the operation is not index-addressed
	Details   string
}

// Header is the CSV header for audit-log.csv.
const Header = "timestamp,session,operation,index,details"

const (
	numFields    = 5
	logDir       = "logs"
	logFile      = "logs/audit-log.csv"
	colTimestamp = 0
	colSession   = 1
	colOperation = 2
	colIndex     = 3
	colDetails   = 4
)

// Path returns the audit log location under root.
func Path(root string) string {
	return filepath.Join(root, logFile)
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colSession] = e.Session
	row[colOperation] = e.Operation
	if e.Index >= 0 {
		row[colIndex] = strconv.Itoa(e.Index)
	}
	row[colDetails] = e.Details
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	idx := -1
	if s := record[colIndex]; s != "" {
		idx, err = strconv.Atoi(s)
		if err != nil {
			return Entry{}, fmt.Errorf("parsing index %q: %w", s, err)
		}
	}

	return Entry{
		Timestamp: ts,
		Session:   record[colSession],
		Operation: record[colOperation],
		Index:     idx,
		Details:   record[colDetails],
	}, nil
}

// Append writes entries to <root>/logs/audit-log.csv, creating the file and header if needed.
func Append(root string, entries []Entry) error {
	dir := filepath.Join(root, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := Path(root)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	if err := writeEntries(f, entries, needsHeader); err != nil {
		return err
	}
	return f.Close()
}

func writeEntries(w io.Writer, entries []Entry, header bool) error {
	cw := csv.NewWriter(w)

	if header {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("writing audit log: %w", err)
	}
	return nil
}

// Read returns all entries from <root>/logs/audit-log.csv.
// Returns an empty slice if the file does not exist.
func Read(root string) ([]Entry, error) {
	f, err := os.Open(Path(root))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading audit log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Recorder is a ledger.Observer that appends every event to the audit log
// under Root, tagged with a per-process session id.
type Recorder struct {
	Root    string
	Session string
	Now     func() time.Time

	err error
}

// NewRecorder returns a Recorder with a fresh session id.
func NewRecorder(root string) *Recorder {
	return &Recorder{
		Root:    root,
		Session: uuid.NewString(),
		Now:     time.Now,
	}
}

// Observe implements ledger.Observer.
func (r *Recorder) Observe(e ledger.Event) {
	r.append(Entry{
		Operation: string(e.Op),
		Index:     e.Index,
		Details:   describe(e),
	})
}

// Record logs an operation that does not go through the ledger, such as a
// currency conversion.
func (r *Recorder) Record(op, details string) {
	r.append(Entry{Operation: op, Index: -1, Details: details})
}

// Err returns the first write failure, if any. Observe cannot return errors
// so the caller checks once at the end.
func (r *Recorder) Err() error {
	return r.err
}

func (r *Recorder) append(e Entry) {
	if r.err != nil {
		return
	}
	e.Timestamp = r.Now().UTC()
	e.Session = r.Session
	if err := Append(r.Root, []Entry{e}); err != nil {
		r.err = err
	}
}

func describe(e ledger.Event) string {
	var parts []string
	switch e.Op {
	case ledger.OpAdd, ledger.OpRemove, ledger.OpReplace:
		parts = append(parts,
			"amount="+e.Transaction.Amount.String(),
			"category="+e.Transaction.Category)
	case ledger.OpBalance:
		parts = append(parts, "balance="+e.Balance.String())
	}
	parts = append(parts, "count="+strconv.Itoa(e.Count))
	if e.Err != nil {
		parts = append(parts, "error="+e.Err.Error())
	}
	return strings.Join(parts, " ")
}
