package store

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/logger"
	"github.com/cleared-dev/tally/internal/model"
)

// Header is the first line of every ledger CSV file.
const Header = "amount,category,description,date"

const (
	numFields = 4
	colAmount = 0
	colCat    = 1
	colDesc   = 2
	colDate   = 3
)

// CSVFile stores the ledger as a CSV file with a header row.
type CSVFile struct {
	Path string
}

// NewCSVFile returns an adapter for path. Nothing is opened until Save or Load.
func NewCSVFile(path string) *CSVFile {
	return &CSVFile{Path: path}
}

// Format implements Adapter.
func (f *CSVFile) Format() Format { return TabularText }

// Close implements Adapter; there is no handle to release.
func (f *CSVFile) Close() error { return nil }

// Save rewrites the file with txns.
func (f *CSVFile) Save(ctx context.Context, txns []model.Transaction) error {
	var buf bytes.Buffer
	if err := WriteTransactions(&buf, txns); err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			return verr
		}
		return &model.PersistenceError{Op: "save", Target: f.Path, Err: err}
	}
	if err := writeFile(f.Path, buf.Bytes()); err != nil {
		return err
	}
	log := logger.FromContext(ctx)
	log.Debug().Str("path", f.Path).Int("count", len(txns)).Msg("saved csv ledger")
	return nil
}

// Load reads every row of the file.
func (f *CSVFile) Load(ctx context.Context) ([]model.Transaction, error) {
	data, err := readFile(f.Path)
	if err != nil {
		return nil, err
	}
	txns, err := ReadTransactions(bytes.NewReader(data))
	if err != nil {
		var ferr *model.FormatError
		if errors.As(err, &ferr) {
			ferr.Target = f.Path
		}
		return nil, err
	}
	log := logger.FromContext(ctx)
	log.Debug().Str("path", f.Path).Int("count", len(txns)).Msg("loaded csv ledger")
	return txns, nil
}

// ReadTransactions reads all rows from a ledger CSV. Structural problems are
// *model.FormatError, unparsable amounts *model.ValidationError.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		ferr := &model.FormatError{Target: "csv", Err: err}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			ferr.Row = perr.Line
		}
		return nil, ferr
	}

	if len(records) == 0 {
		return nil, nil
	}

	if !slices.Equal(records[0], strings.Split(Header, ",")) {
		return nil, &model.FormatError{Target: "csv", Row: 1, Err: fmt.Errorf("header %q, want %q", strings.Join(records[0], ","), Header)}
	}

	// Skip header row.
	txns := make([]model.Transaction, 0, len(records)-1)
	for i, rec := range records[1:] {
		t, err := UnmarshalTransaction(rec)
		if err != nil {
			var verr *model.ValidationError
			if errors.As(err, &verr) {
				verr.Row = i + 2
				return nil, verr
			}
			return nil, &model.FormatError{Target: "csv", Row: i + 2, Err: err}
		}
		txns = append(txns, t)
	}
	return txns, nil
}

// WriteTransactions writes the header and one row per transaction. Text
// fields containing a carriage return are refused with a
// *model.ValidationError before anything is written: a CSV reader drops the
// CR of every CRLF, so such a field would not load back unchanged.
func WriteTransactions(w io.Writer, txns []model.Transaction) error {
	for i, t := range txns {
		if err := checkCSVText(t); err != nil {
			err.Row = i + 2
			return err
		}
	}

	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, t := range txns {
		if err := cw.Write(MarshalTransaction(t)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func checkCSVText(t model.Transaction) *model.ValidationError {
	fields := []struct{ name, value string }{
		{"category", t.Category},
		{"description", t.Description},
		{"date", t.Date},
	}
	for _, f := range fields {
		if strings.ContainsRune(f.value, '\r') {
			return &model.ValidationError{Field: f.name, Value: f.value, Err: errors.New("carriage return cannot be stored in csv")}
		}
	}
	return nil
}

// MarshalTransaction converts a Transaction to a CSV row.
func MarshalTransaction(t model.Transaction) []string {
	row := make([]string, numFields)
	row[colAmount] = t.Amount.String()
	row[colCat] = t.Category
	row[colDesc] = t.Description
	row[colDate] = t.Date
	return row
}

// UnmarshalTransaction converts a CSV row to a Transaction.
func UnmarshalTransaction(record []string) (model.Transaction, error) {
	if len(record) != numFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.Transaction{}, &model.ValidationError{Field: "amount", Value: record[colAmount], Err: err}
	}

	return model.Transaction{
		Amount:      amount,
		Category:    record[colCat],
		Description: record[colDesc],
		Date:        record[colDate],
	}, nil
}
