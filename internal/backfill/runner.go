// Package backfill replays archived life-event logs (one JSON event per
// line) through the processor, without publishing to the bus. Runs are
// resumable: a state file records which files were already processed.
package backfill

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/MikeSquared-Agency/dyad/internal/events"
	"github.com/MikeSquared-Agency/dyad/internal/processor"
)

// Config holds the backfill command configuration.
type Config struct {
	Dir       string // directory of .jsonl event archives
	BatchSize int    // save state every N applied events
	DryRun    bool   // apply in memory only; skip state saves
	StatePath string // state file override, empty for the default
}

// Runner orchestrates the backfill.
type Runner struct {
	cfg    Config
	proc   *processor.Processor
	logger *slog.Logger
}

// NewRunner creates a backfill runner. The processor decides persistence:
// dry runs hand in a store-less processor.
func NewRunner(cfg Config, proc *processor.Processor, logger *slog.Logger) *Runner {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	return &Runner{cfg: cfg, proc: proc, logger: logger}
}

// Run replays every unprocessed .jsonl file under the configured directory.
// Events within one file are sorted by occurred_at before replay so decay
// and replay see monotonically increasing time.
func (r *Runner) Run(ctx context.Context) error {
	state, err := LoadState(r.cfg.StatePath)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	files, err := r.discoverFiles()
	if err != nil {
		return fmt.Errorf("discover files: %w", err)
	}
	r.logger.Info("backfill starting",
		"dir", r.cfg.Dir,
		"files", len(files),
		"already_processed", len(state.FilesProcessed),
		"dry_run", r.cfg.DryRun,
	)

	sinceSave := 0
	for _, path := range files {
		if state.IsProcessed(path) {
			r.logger.Debug("skipping processed file", "file", path)
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		evts, parseErrors := r.readEvents(path)
		for _, msg := range parseErrors {
			state.AddError(msg)
		}
		sort.SliceStable(evts, func(i, j int) bool {
			return evts[i].OccurredAt.Before(evts[j].OccurredAt)
		})

		applied, skipped := 0, 0
		for _, evt := range evts {
			res, err := r.proc.ApplyEvent(ctx, evt)
			if err != nil {
				state.AddError(fmt.Sprintf("%s: event %s: %v", path, evt.EventID, err))
				r.logger.Warn("event failed during backfill", "file", path, "event_id", evt.EventID, "error", err)
				continue
			}
			if res.Applied {
				applied++
			} else {
				skipped++
			}

			sinceSave++
			if sinceSave >= r.cfg.BatchSize {
				sinceSave = 0
				state.EventsApplied += applied
				state.EventsSkipped += skipped
				applied, skipped = 0, 0
				if err := r.saveState(state); err != nil {
					return err
				}
			}
		}

		state.EventsApplied += applied
		state.EventsSkipped += skipped
		state.MarkProcessed(path)
		if err := r.saveState(state); err != nil {
			return err
		}
		r.logger.Info("file replayed", "file", path, "applied", applied, "skipped", skipped)
	}

	r.logger.Info("backfill complete",
		"files_processed", len(state.FilesProcessed),
		"events_applied", state.EventsApplied,
		"events_skipped", state.EventsSkipped,
		"errors", len(state.Errors),
	)
	return nil
}

// discoverFiles lists the .jsonl archives in deterministic order.
func (r *Runner) discoverFiles() ([]string, error) {
	pattern := filepath.Join(r.cfg.Dir, "*.jsonl")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	sort.Strings(files)
	return files, nil
}

// readEvents parses one archive. Malformed lines are skipped with a warning
// and reported back as error strings for the state file.
func (r *Runner) readEvents(path string) ([]events.LifeEvent, []string) {
	f, err := os.Open(path)
	if err != nil {
		return nil, []string{fmt.Sprintf("%s: %v", path, err)}
	}
	defer f.Close()

	var (
		evts   []events.LifeEvent
		errs   []string
		lineNo int
	)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		evt, err := events.Parse(line)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s:%d: %v", path, lineNo, err))
			r.logger.Warn("malformed event line", "file", path, "line", lineNo, "error", err)
			continue
		}
		evts = append(evts, evt)
	}
	if err := scanner.Err(); err != nil {
		errs = append(errs, fmt.Sprintf("%s: scan: %v", path, err))
	}
	return evts, errs
}

func (r *Runner) saveState(state *State) error {
	if r.cfg.DryRun {
		return nil
	}
	if err := state.Save(); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}
