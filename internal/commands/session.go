package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/cleared-dev/tally/internal/auditlog"
	"github.com/cleared-dev/tally/internal/config"
	"github.com/cleared-dev/tally/internal/ledger"
	"github.com/cleared-dev/tally/internal/logger"
	"github.com/cleared-dev/tally/internal/model"
	"github.com/cleared-dev/tally/internal/store"
)

// env is the per-invocation configuration, logger and audit trail.
type env struct {
	ctx   context.Context
	cfg   *config.Config
	log   zerolog.Logger
	audit *auditlog.Recorder
}

// loadEnv reads the config file (defaults when it does not exist), applies
// .env and TALLY_* overrides and the --log-level flag, then validates.
func loadEnv(ctx context.Context, opts *globalOptions) (*env, error) {
	dir := filepath.Dir(opts.configPath)
	if err := config.LoadEnv(dir); err != nil {
		return nil, err
	}

	cfg, err := config.Load(opts.configPath)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = config.Default()
		cfg.Root = dir
	} else if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	log := logger.New(level)

	return &env{
		ctx:   logger.WithContext(ctx, log),
		cfg:   cfg,
		log:   log,
		audit: auditlog.NewRecorder(cfg.Root),
	}, nil
}

// finish reports an audit log failure as a warning; the command itself
// already succeeded or failed on its own.
func (e *env) finish() {
	if err := e.audit.Err(); err != nil {
		e.log.Warn().Err(err).Str("path", auditlog.Path(e.cfg.Root)).Msg("failed to write audit log")
	}
}

// book is a loaded ledger bound to its configured storage.
type book struct {
	*env
	ledger  *ledger.Ledger
	adapter store.Adapter
	format  store.Format
	path    string
	loaded  int
}

// openBook loads the configured ledger. A file that does not exist yet is
// an empty ledger.
func openBook(ctx context.Context, opts *globalOptions) (*book, error) {
	e, err := loadEnv(ctx, opts)
	if err != nil {
		return nil, err
	}

	format, err := e.cfg.Format()
	if err != nil {
		return nil, err
	}
	path, err := e.cfg.DataPath()
	if err != nil {
		return nil, err
	}

	adapter, err := store.Open(e.ctx, format, path)
	if err != nil {
		return nil, err
	}

	l := ledger.New(
		ledger.WithObserver(ledger.LogObserver{Log: e.log}),
		ledger.WithObserver(e.audit),
	)
	b := &book{env: e, ledger: l, adapter: adapter, format: format, path: path}

	if format != store.Relational {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return b, nil
		}
	}
	if err := l.Load(e.ctx, adapter); err != nil {
		adapter.Close()
		return nil, err
	}
	b.loaded = l.Len()
	return b, nil
}

// persist writes the ledger back. File formats are rewritten in full; the
// relational store only receives rows added since the load.
func (b *book) persist() error {
	if b.format == store.Relational {
		return b.ledger.Save(b.ctx, tailSaver{Adapter: b.adapter, skip: b.loaded})
	}
	return b.ledger.Save(b.ctx, b.adapter)
}

// requireRewritable fails for storage that cannot drop or change rows.
func (b *book) requireRewritable(op string) error {
	if b.format == store.Relational {
		return fmt.Errorf("%s is not supported for %s storage: %w", op, b.format, model.ErrInvalidArgument)
	}
	return nil
}

func (b *book) close() error {
	b.finish()
	return b.adapter.Close()
}

// tailSaver hands only the rows past skip to an append-only adapter.
type tailSaver struct {
	store.Adapter
	skip int
}

func (s tailSaver) Save(ctx context.Context, txns []model.Transaction) error {
	if s.skip >= len(txns) {
		return nil
	}
	return s.Adapter.Save(ctx, txns[s.skip:])
}
