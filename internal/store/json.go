package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/logger"
	"github.com/cleared-dev/tally/internal/model"
)

func init() {
	// Amounts are written as bare JSON numbers carrying the exact decimal text.
	decimal.MarshalJSONWithoutQuotes = true
}

// jsonRecord is the on-disk shape. Pointers tell a missing field from an
// empty one.
type jsonRecord struct {
	Amount      *decimal.Decimal `json:"amount"`
	Category    *string          `json:"category"`
	Description *string          `json:"description"`
	Date        *string          `json:"date"`
}

// JSONFile stores the ledger as a pretty-printed JSON array.
type JSONFile struct {
	Path string
}

// NewJSONFile returns an adapter for path. Nothing is opened until Save or Load.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{Path: path}
}

// Format implements Adapter.
func (f *JSONFile) Format() Format { return StructuredText }

// Close implements Adapter; there is no handle to release.
func (f *JSONFile) Close() error { return nil }

// Save rewrites the file with txns.
func (f *JSONFile) Save(ctx context.Context, txns []model.Transaction) error {
	var buf bytes.Buffer
	if err := EncodeJSON(&buf, txns); err != nil {
		return &model.PersistenceError{Op: "save", Target: f.Path, Err: err}
	}
	if err := writeFile(f.Path, buf.Bytes()); err != nil {
		return err
	}
	log := logger.FromContext(ctx)
	log.Debug().Str("path", f.Path).Int("count", len(txns)).Msg("saved json ledger")
	return nil
}

// Load reads every record of the file.
func (f *JSONFile) Load(ctx context.Context) ([]model.Transaction, error) {
	data, err := readFile(f.Path)
	if err != nil {
		return nil, err
	}
	txns, err := DecodeJSON(bytes.NewReader(data))
	if err != nil {
		var ferr *model.FormatError
		if errors.As(err, &ferr) {
			ferr.Target = f.Path
		}
		return nil, err
	}
	log := logger.FromContext(ctx)
	log.Debug().Str("path", f.Path).Int("count", len(txns)).Msg("loaded json ledger")
	return txns, nil
}

// EncodeJSON writes txns as an indented JSON array.
func EncodeJSON(w io.Writer, txns []model.Transaction) error {
	records := make([]jsonRecord, 0, len(txns))
	for _, t := range txns {
		records = append(records, jsonRecord{
			Amount:      &t.Amount,
			Category:    &t.Category,
			Description: &t.Description,
			Date:        &t.Date,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encoding ledger: %w", err)
	}
	return nil
}

// DecodeJSON reads a JSON array of records. Any syntax error, non-array
// document, trailing data or record missing a field is a *model.FormatError.
func DecodeJSON(r io.Reader) ([]model.Transaction, error) {
	dec := json.NewDecoder(r)

	var records []jsonRecord
	if err := dec.Decode(&records); err != nil {
		return nil, &model.FormatError{Target: "json", Err: err}
	}
	if records == nil {
		return nil, &model.FormatError{Target: "json", Err: errors.New("top-level value is not an array")}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &model.FormatError{Target: "json", Err: errors.New("trailing data after array")}
	}

	txns := make([]model.Transaction, 0, len(records))
	for i, rec := range records {
		t, err := rec.transaction()
		if err != nil {
			return nil, &model.FormatError{Target: "json", Row: i + 1, Err: err}
		}
		txns = append(txns, t)
	}
	return txns, nil
}

func (r jsonRecord) transaction() (model.Transaction, error) {
	switch {
	case r.Amount == nil:
		return model.Transaction{}, errors.New(`missing field "amount"`)
	case r.Category == nil:
		return model.Transaction{}, errors.New(`missing field "category"`)
	case r.Description == nil:
		return model.Transaction{}, errors.New(`missing field "description"`)
	case r.Date == nil:
		return model.Transaction{}, errors.New(`missing field "date"`)
	}
	return model.Transaction{
		Amount:      *r.Amount,
		Category:    *r.Category,
		Description: *r.Description,
		Date:        *r.Date,
	}, nil
}
