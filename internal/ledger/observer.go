package ledger

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/model"
)

// Op names a ledger operation reported to observers.
type Op string

const (
	OpAdd     Op = "add"
	OpRemove  Op = "remove"
	OpReplace Op = "replace"
	OpBalance Op = "balance"
	OpLoad    Op = "load"
	OpSave    Op = "save"
)

// Event describes a completed ledger operation.
type Event struct {
	Op          Op
	Index       int // -1 when the operation is not index-addressed
	Transaction model.Transaction
	Balance     decimal.Decimal
	Count       int // ledger length after the operation
	Duration    time.Duration
	Err         error
}

// Observer is notified after every ledger operation. Observers cannot reach
// the ledger's storage; they only get the event.
type Observer interface {
	Observe(e Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// Observe calls f(e).
func (f ObserverFunc) Observe(e Event) { f(e) }

func (l *Ledger) notify(e Event) {
	for _, o := range l.observers {
		o.Observe(e)
	}
}

// LogObserver writes one structured log line per operation.
type LogObserver struct {
	Log zerolog.Logger
}

// Observe implements Observer.
func (o LogObserver) Observe(e Event) {
	ev := o.Log.Debug()
	if e.Err != nil {
		ev = o.Log.Warn().Err(e.Err)
	}
	ev = ev.Str("op", string(e.Op)).Int("count", e.Count)
	if e.Index >= 0 {
		ev = ev.Int("index", e.Index).Str("amount", e.Transaction.Amount.String()).Str("category", e.Transaction.Category)
	}
	switch e.Op {
	case OpBalance:
		ev = ev.Str("balance", e.Balance.String())
	case OpLoad, OpSave:
		ev = ev.Dur("duration", e.Duration)
	}
	ev.Msg("ledger operation")
}
