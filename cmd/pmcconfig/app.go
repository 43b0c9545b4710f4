package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/nerrad567/pmc-config/internal/conversion"
	"github.com/nerrad567/pmc-config/internal/infrastructure/config"
	"github.com/nerrad567/pmc-config/internal/infrastructure/database"
	"github.com/nerrad567/pmc-config/internal/infrastructure/logging"
	"github.com/nerrad567/pmc-config/internal/journal"
	"github.com/nerrad567/pmc-config/internal/pmc"
	"github.com/nerrad567/pmc-config/internal/report"
	"github.com/nerrad567/pmc-config/internal/threshold"
	"github.com/nerrad567/pmc-config/migrations"
)

// app holds the wired components for one invocation.
type app struct {
	opts   *options
	cfg    *config.Config
	log    *logging.Logger
	out    io.Writer
	in     io.Reader
	store  *pmc.Store
	engine *conversion.Engine

	// trace is the engine used where calculations are shown to the operator.
	trace *conversion.Engine

	db      *database.DB
	journal journal.Repository
}

// newApp loads the configuration and wires the components.
func newApp(opts *options, s streams) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	log := logging.New(cfg.Logging, version, s.out, s.err)

	store := pmc.NewStore()
	store.SetLogger(log.With("component", "store"))
	store.SetBackupSuffix(cfg.Backup.Suffix)

	engine := conversion.NewEngine()
	engine.SetLogger(log.With("component", "conversion"))

	trace := engine
	if cfg.Display.Trace {
		trace = engine.WithTrace(s.out)
	}

	return &app{
		opts:   opts,
		cfg:    cfg,
		log:    log,
		out:    s.out,
		in:     s.in,
		store:  store,
		engine: engine,
		trace:  trace,
	}, nil
}

// close releases the journal database and log file.
func (a *app) close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("closing journal database", "error", err)
		}
	}
	if err := a.log.Close(); err != nil {
		fmt.Fprintf(a.out, "Warning: closing log file: %v\n", err)
	}
}

// execute runs the selected action. The first matching flag wins, in the
// order list, get, set, set-thres, history, info.
func (a *app) execute(ctx context.Context) error {
	a.log.Debug("starting", "file", a.opts.file, "device", a.opts.dev)

	doc, err := a.load()
	if err != nil {
		return err
	}

	switch {
	case a.opts.list:
		return report.DeviceList(a.out, a.opts.file, doc.Devices)
	case a.opts.get != "":
		return a.get(doc)
	case a.opts.set != "":
		return a.set(ctx, doc)
	case a.opts.setThres:
		return a.setThresholds(ctx, doc)
	case a.opts.history:
		return a.history(ctx)
	default:
		return a.info(doc)
	}
}

// load reads the PMC file, reporting the failures every action shares.
func (a *app) load() (*pmc.Document, error) {
	doc, err := a.store.Load(a.opts.file)
	switch {
	case err == nil:
		return doc, nil
	case errors.Is(err, pmc.ErrFileNotFound):
		fmt.Fprintf(a.out, "Error: File '%s' not found\n", a.opts.file)
		return nil, errReported
	case errors.Is(err, pmc.ErrParse):
		fmt.Fprintf(a.out, "Error: Failed to parse XML file: %s\n", parseMessage(a.opts.file, err))
		return nil, errReported
	default:
		return nil, err
	}
}

// parseMessage strips the path and sentinel prefixes from a parse error.
func parseMessage(path string, err error) string {
	msg := strings.TrimPrefix(err.Error(), path+": ")
	return strings.TrimPrefix(msg, pmc.ErrParse.Error()+": ")
}

// device resolves --dev, printing the failure when it is unknown.
func (a *app) device(doc *pmc.Document) (*pmc.Device, error) {
	dev, err := doc.Device(a.opts.dev)
	if err != nil {
		fmt.Fprintf(a.out, "Error: Device '%s' not found\n", a.opts.dev)
		return nil, errReported
	}
	return dev, nil
}

func (a *app) info(doc *pmc.Document) error {
	dev, err := doc.Device(a.opts.dev)
	if err != nil {
		fmt.Fprintf(a.out, "Device '%s' not found\n", a.opts.dev)
		return errReported
	}
	return report.DeviceInfo(a.out, dev, a.engine, a.cfg.Display.RealColumn)
}

func (a *app) get(doc *pmc.Document) error {
	dev, err := a.device(doc)
	if err != nil {
		return err
	}
	if err := report.Value(a.out, dev, a.opts.get, a.trace); err != nil {
		if errors.Is(err, pmc.ErrVariableNotFound) {
			return errReported
		}
		return err
	}
	return nil
}

func (a *app) set(ctx context.Context, doc *pmc.Document) error {
	dev, err := a.device(doc)
	if err != nil {
		return err
	}

	variable, value := a.opts.set, a.opts.value
	stored := value
	converted := false
	if conversion.IsThresholdParam(variable) {
		raw, err := a.trace.RealToRaw(dev, value)
		if err != nil {
			fmt.Fprintf(a.out, "Error: %v\n", err)
			fmt.Fprintln(a.out, "Error: Failed to convert real value. Aborting.")
			return errReported
		}
		stored = conversion.FormatRawHex(raw)
		converted = true
	}

	res, err := dev.SetValue(variable, stored)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return errReported
	}
	if err := report.Updated(a.out, res, stored); err != nil {
		return err
	}
	if converted {
		fmt.Fprintf(a.out, "Config saved successfully (converted from real value %s)\n", value)
	} else {
		fmt.Fprintln(a.out, "Config saved successfully")
	}

	p := a.persister(doc, dev, journal.SourceSet)
	return p.Persist(ctx, []threshold.Applied{{
		Change: threshold.Change{Variable: variable, Value: stored},
		Result: res,
	}})
}

func (a *app) setThresholds(ctx context.Context, doc *pmc.Document) error {
	dev, err := a.device(doc)
	if err != nil {
		return err
	}

	session, err := threshold.NewSession(dev, threshold.Options{
		Converter:  a.engine,
		Prompter:   threshold.NewLinePrompter(a.in, a.out),
		Persister:  a.persister(doc, dev, journal.SourceThreshold),
		Out:        a.out,
		RealColumn: a.cfg.Display.RealColumn,
	})
	if err != nil {
		if errors.Is(err, pmc.ErrNoSdrSection) {
			fmt.Fprintf(a.out, "Error: Device '%s' has no SDR section\n", dev.Name)
			return errReported
		}
		return err
	}
	session.SetLogger(a.log.With("component", "threshold"))

	outcome, err := session.Run(ctx)
	if err != nil {
		return err
	}
	if outcome.Applied != len(outcome.Changes) && !outcome.Cancelled {
		return errReported
	}
	return nil
}

func (a *app) history(ctx context.Context) error {
	if !a.cfg.Journal.Enabled {
		return errors.New("change journal is disabled")
	}
	repo, err := a.openJournal(ctx)
	if err != nil {
		return err
	}

	result, err := repo.List(ctx, journal.Filter{
		File:   absPath(a.opts.file),
		Device: a.opts.dev,
		Limit:  a.opts.limit,
	})
	if err != nil {
		return fmt.Errorf("listing changes: %w", err)
	}
	return printHistory(a.out, a.opts.dev, result)
}

// openJournal opens and migrates the journal database on first use.
func (a *app) openJournal(ctx context.Context) (journal.Repository, error) {
	if a.journal != nil {
		return a.journal, nil
	}
	if !a.cfg.Journal.Enabled {
		a.journal = journal.NopRepository{}
		return a.journal, nil
	}

	db, err := database.Open(ctx, database.Config{
		Path:        a.cfg.Journal.Path,
		WALMode:     a.cfg.Journal.WALMode,
		BusyTimeout: a.cfg.GetBusyTimeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("opening change journal: %w", err)
	}
	if err := db.Migrate(ctx, migrations.FS, migrations.Dir); err != nil {
		db.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("migrating change journal: %w", err)
	}
	if err := db.HealthCheck(ctx); err != nil {
		db.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("checking change journal: %w", err)
	}

	a.db = db
	a.journal = journal.NewSQLiteRepository(db.DB)
	return a.journal, nil
}

// absPath keys journal entries on a stable file name.
func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
