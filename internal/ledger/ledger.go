// Package ledger holds the in-memory transaction store and the amount
// categorizer.
package ledger

import (
	"context"
	"fmt"
	"iter"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/model"
)

// Saver persists a snapshot of transactions.
type Saver interface {
	Save(ctx context.Context, txns []model.Transaction) error
}

// Loader reads every persisted transaction.
type Loader interface {
	Load(ctx context.Context) ([]model.Transaction, error)
}

// Ledger is an ordered, in-memory collection of transactions. It is not safe
// for concurrent use.
type Ledger struct {
	txns      []model.Transaction
	observers []Observer
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithObserver registers an observer notified after each operation.
func WithObserver(o Observer) Option {
	return func(l *Ledger) {
		if o != nil {
			l.observers = append(l.observers, o)
		}
	}
}

// New creates an empty Ledger.
func New(opts ...Option) *Ledger {
	l := &Ledger{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Observe adds an observer after construction.
func (l *Ledger) Observe(o Observer) {
	WithObserver(o)(l)
}

// Add appends a transaction.
func (l *Ledger) Add(t model.Transaction) {
	l.txns = append(l.txns, t)
	l.notify(Event{Op: OpAdd, Index: len(l.txns) - 1, Transaction: t, Count: len(l.txns)})
}

// Len returns the number of transactions.
func (l *Ledger) Len() int {
	return len(l.txns)
}

// At returns the transaction at index i. ok is false when i is out of range.
func (l *Ledger) At(i int) (t model.Transaction, ok bool) {
	if i < 0 || i >= len(l.txns) {
		return model.Transaction{}, false
	}
	return l.txns[i], true
}

// ParseIndex converts user input into an index. Non-integer input fails with
// model.ErrInvalidArgument; range is checked by the caller.
func ParseIndex(s string) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("index %q: %w", s, model.ErrInvalidArgument)
	}
	return i, nil
}

// Remove deletes the transaction at index i and returns it.
func (l *Ledger) Remove(i int) (model.Transaction, error) {
	t, ok := l.At(i)
	if !ok {
		return model.Transaction{}, l.outOfRange(i)
	}
	l.txns = append(l.txns[:i], l.txns[i+1:]...)
	l.notify(Event{Op: OpRemove, Index: i, Transaction: t, Count: len(l.txns)})
	return t, nil
}

// Replace overwrites the transaction at index i.
func (l *Ledger) Replace(i int, t model.Transaction) error {
	if _, ok := l.At(i); !ok {
		return l.outOfRange(i)
	}
	l.txns[i] = t
	l.notify(Event{Op: OpReplace, Index: i, Transaction: t, Count: len(l.txns)})
	return nil
}

func (l *Ledger) outOfRange(i int) error {
	return fmt.Errorf("index %d out of range [0,%d): %w", i, len(l.txns), model.ErrInvalidArgument)
}

// All returns a copy of every transaction in insertion order.
func (l *Ledger) All() []model.Transaction {
	out := make([]model.Transaction, len(l.txns))
	copy(out, l.txns)
	return out
}

// Seq yields every transaction in insertion order.
func (l *Ledger) Seq() iter.Seq[model.Transaction] {
	return l.Filter(func(model.Transaction) bool { return true })
}

// ByCategory yields transactions whose category matches name exactly.
func (l *Ledger) ByCategory(name string) iter.Seq[model.Transaction] {
	return l.Filter(func(t model.Transaction) bool { return t.Category == name })
}

// Filter yields transactions satisfying pred. The sequence is evaluated
// lazily and can be ranged over more than once; pred only ever sees copies.
func (l *Ledger) Filter(pred func(model.Transaction) bool) iter.Seq[model.Transaction] {
	return func(yield func(model.Transaction) bool) {
		for _, t := range l.txns {
			if pred(t) && !yield(t) {
				return
			}
		}
	}
}

// Positions pairs each transaction of seq with its index in the ledger. seq
// must yield a subsequence of the ledger in order, as Seq, ByCategory and
// Filter do; each value is matched to the first equal transaction after the
// previous match.
func (l *Ledger) Positions(seq iter.Seq[model.Transaction]) iter.Seq2[int, model.Transaction] {
	return func(yield func(int, model.Transaction) bool) {
		i := 0
		for t := range seq {
			for i < len(l.txns) && !l.txns[i].Equal(t) {
				i++
			}
			if i == len(l.txns) {
				return
			}
			if !yield(i, t) {
				return
			}
			i++
		}
	}
}

// Balance returns income minus expenses. Zero for an empty ledger.
func (l *Ledger) Balance() decimal.Decimal {
	total := decimal.Zero
	for _, t := range l.txns {
		total = total.Add(t.Amount)
	}
	l.notify(Event{Op: OpBalance, Index: -1, Balance: total, Count: len(l.txns)})
	return total
}

// Reset replaces the contents with a copy of txns.
func (l *Ledger) Reset(txns []model.Transaction) {
	l.txns = append([]model.Transaction(nil), txns...)
}

// Save hands a snapshot to s. The ledger is never modified.
func (l *Ledger) Save(ctx context.Context, s Saver) error {
	start := time.Now()
	err := s.Save(ctx, l.All())
	l.notify(Event{Op: OpSave, Index: -1, Count: len(l.txns), Duration: time.Since(start), Err: err})
	return err
}

// Load replaces the contents with everything src holds. On error the
// previous contents are kept.
func (l *Ledger) Load(ctx context.Context, src Loader) error {
	start := time.Now()
	txns, err := src.Load(ctx)
	if err == nil {
		l.Reset(txns)
	}
	l.notify(Event{Op: OpLoad, Index: -1, Count: len(l.txns), Duration: time.Since(start), Err: err})
	return err
}
