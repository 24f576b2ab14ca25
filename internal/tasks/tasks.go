// Package tasks wires the reconciliation core to storage and the file
// lifecycle. Each task is a zero-argument operation invoked by name,
// synchronous, run to completion. Partial completion is possible and is
// not rolled back; the backup taken at task start is the recovery path.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"trading-journal/internal/config"
	"trading-journal/internal/journal"
	"trading-journal/internal/table"
)

// ErrUnknownTask reports a task name Run does not dispatch.
var ErrUnknownTask = errors.New("unknown task")

// FileGuard covers the pre-flight and backup steps around a task. A nil
// guard skips them (in-memory stores in tests).
type FileGuard interface {
	// EnsureClosed verifies no other process holds the storage file.
	EnsureClosed() error
	// CheckWritable probes the output location for write permission.
	CheckWritable() error
	// CreateBackup snapshots the storage file before mutation.
	CreateBackup() (string, error)
}

// Runner executes the journal tasks against a store.
type Runner struct {
	log   *zap.Logger
	cfg   *config.Config
	store journal.Store
	guard FileGuard

	// now is swappable for tests.
	now func() time.Time

	// watch mode must never overlap a manual run.
	mu sync.Mutex
}

// NewRunner creates a task runner. guard may be nil.
func NewRunner(log *zap.Logger, cfg *config.Config, store journal.Store, guard FileGuard) *Runner {
	return &Runner{log: log, cfg: cfg, store: store, guard: guard, now: time.Now}
}

// Run dispatches a task by name.
func (r *Runner) Run(name string) error {
	switch name {
	case "import":
		return r.Import()
	case "digest":
		return r.Digest()
	case "reminders":
		return r.Reminders()
	}
	return fmt.Errorf("task %q: %w", name, ErrUnknownTask)
}

// Import runs the daily path: mirror the broker export, merge it into
// the trade ledger and schedule retrospectives for the merged trades.
func (r *Runner) Import() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.preflight(); err != nil {
		return r.fail("import", err)
	}

	imp, err := journal.ReadImport(r.cfg.Journal.ImportPath)
	if err != nil {
		return r.fail("import", err)
	}
	if err := journal.NormalizeImport(imp); err != nil {
		return r.fail("import", err)
	}
	if err := r.store.ReplaceAll(journal.SheetImportMirror, imp, journal.ImportFormats()); err != nil {
		return r.fail("import", err)
	}
	r.log.Info("Broker export mirrored",
		zap.String("sheet", journal.SheetImportMirror), zap.Int("rows", len(imp.Rows)))

	ledger, err := r.store.ReadAll(journal.SheetTradeLog)
	if err != nil {
		return r.fail("import", err)
	}
	merged, newRows, err := journal.MergeLedger(ledger, imp)
	if err != nil {
		return r.fail("import", err)
	}
	if err := r.store.ReplaceAll(journal.SheetTradeLog, merged, journal.LedgerFormats()); err != nil {
		return r.fail("import", err)
	}
	r.log.Info("Trade ledger merged",
		zap.Int("new_trades", len(newRows)), zap.Int("total_rows", len(merged.Rows)))

	if len(newRows) == 0 {
		return nil
	}
	if err := r.scheduleRetros(merged.Header, newRows); err != nil {
		return r.fail("import", err)
	}
	return nil
}

// scheduleRetros appends one retro row per merged trade to the Retro
// sheet. Re-importing a trade appends another retro row for it; only
// identifier assignment is idempotent, not retro creation.
func (r *Runner) scheduleRetros(ledgerHeader []string, newRows []table.Row) error {
	tags, err := r.store.ReadAll(journal.SheetDataTags)
	if err != nil {
		return err
	}
	tax, err := journal.LoadTaxonomy(tags)
	if err != nil {
		return err
	}
	retros, err := journal.BuildRetros(ledgerHeader, newRows, tax)
	if err != nil {
		return err
	}

	existing, err := r.store.ReadAll(journal.SheetRetro)
	if err != nil {
		return err
	}
	aligned, err := alignRows(journal.RetroColumns, existing.Header, retros)
	if err != nil {
		return err
	}
	existing.Rows = append(existing.Rows, aligned...)
	if err := r.store.ReplaceAll(journal.SheetRetro, existing, journal.RetroFormats()); err != nil {
		return err
	}
	r.log.Info("Retrospectives scheduled", zap.Int("retros", len(retros)))
	return nil
}

// Digest runs the weekly path: rebuild the one-pager from this week's
// journal notes. The digest is fully transient and regenerated each run.
func (r *Runner) Digest() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.preflight(); err != nil {
		return r.fail("digest", err)
	}

	if err := r.store.ClearRows(journal.SheetOnePager); err != nil {
		return r.fail("digest", err)
	}
	notes, err := r.store.ReadAll(journal.SheetJournal)
	if err != nil {
		return r.fail("digest", err)
	}
	rows, err := journal.BuildDigest(notes, r.cfg.Digest.WatchList, r.now())
	if err != nil {
		return r.fail("digest", err)
	}
	if err := r.store.AppendRows(journal.SheetOnePager, rows, nil); err != nil {
		return r.fail("digest", err)
	}
	r.log.Info("Weekly one pager built", zap.Int("rows", len(rows)))
	return nil
}

// Reminders runs the three sweep passes over the Journal, Retro and
// Ideas sheets, flipping stale markers to the due sentinel.
func (r *Runner) Reminders() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.guard != nil {
		if err := r.guard.EnsureClosed(); err != nil {
			return r.fail("reminders", err)
		}
	}

	today := r.now()
	stale := r.cfg.Reminders.StaleAfterDays

	notes, err := r.store.ReadAll(journal.SheetJournal)
	if err != nil {
		return r.fail("reminders", err)
	}
	flagged, err := journal.SweepJournal(notes, today, stale)
	if err != nil {
		return r.fail("reminders", err)
	}
	if err := r.store.ReplaceAll(journal.SheetJournal, notes, nil); err != nil {
		return r.fail("reminders", err)
	}

	retros, err := r.store.ReadAll(journal.SheetRetro)
	if err != nil {
		return r.fail("reminders", err)
	}
	due, err := journal.SweepRetros(retros, today)
	if err != nil {
		return r.fail("reminders", err)
	}
	if err := r.store.ReplaceAll(journal.SheetRetro, retros, nil); err != nil {
		return r.fail("reminders", err)
	}

	ideas, err := r.store.ReadAll(journal.SheetIdeas)
	if err != nil {
		return r.fail("reminders", err)
	}
	aged, err := journal.SweepIdeas(ideas, today, stale)
	if err != nil {
		return r.fail("reminders", err)
	}
	if err := r.store.ReplaceAll(journal.SheetIdeas, ideas, nil); err != nil {
		return r.fail("reminders", err)
	}

	r.log.Info("Reminders updated",
		zap.Int("journal_flagged", flagged), zap.Int("retros_due", due), zap.Int("ideas_aged", aged))
	return nil
}

// Watch schedules the reminder sweep on the configured cron expression
// and blocks until the context is cancelled.
func (r *Runner) Watch(ctx context.Context) error {
	c := cron.New()
	_, err := c.AddFunc(r.cfg.Reminders.Schedule, func() {
		if err := r.Reminders(); err != nil {
			r.log.Error("Scheduled reminder sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("cron schedule %q: %w", r.cfg.Reminders.Schedule, err)
	}

	r.log.Info("Watching", zap.String("schedule", r.cfg.Reminders.Schedule))
	c.Start()
	<-ctx.Done()
	stopped := c.Stop()
	<-stopped.Done()
	return nil
}

// preflight runs the shared guard steps: ensure the file is closed,
// verify write permission and take a backup before any mutation.
func (r *Runner) preflight() error {
	if r.guard == nil {
		return nil
	}
	if err := r.guard.CheckWritable(); err != nil {
		return err
	}
	if err := r.guard.EnsureClosed(); err != nil {
		return err
	}
	if !r.cfg.Journal.Backup {
		return nil
	}
	backup, err := r.guard.CreateBackup()
	if err != nil {
		return err
	}
	r.log.Info("Backup taken", zap.String("backup", backup))
	return nil
}

// fail logs the underlying cause and returns a single task-level error.
func (r *Runner) fail(task string, err error) error {
	r.log.Error("Task failed", zap.String("task", task), zap.Error(err))
	return fmt.Errorf("%s: %w", task, err)
}

// alignRows reorders rows built against one header into another header's
// order. Every destination column must exist in the source.
func alignRows(src, dst []string, rows []table.Row) ([]table.Row, error) {
	srcT := &table.Table{Header: src}
	dstT := &table.Table{Header: dst}
	for _, c := range dst {
		if _, ok := srcT.Col(c); !ok {
			return nil, fmt.Errorf("column %q: %w", c, journal.ErrSchema)
		}
	}
	out := make([]table.Row, 0, len(rows))
	for _, row := range rows {
		aligned := make(table.Row, len(dst))
		for _, c := range dst {
			dstT.Set(&aligned, c, srcT.Value(row, c))
		}
		out = append(out, aligned)
	}
	return out, nil
}
