package ledger

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ammledger/internal/model"
	"ammledger/internal/storage"
)

const defaultBatchSize = 500

// RunConfig controls a replay.
type RunConfig struct {
	BatchSize  int
	RunID      string
	StateStore StateStore
	Metrics    *Metrics
}

// Summary counts what a replay did with each journal line.
type Summary struct {
	RunID     string `json:"run_id"`
	Total     int    `json:"total"`
	Applied   int    `json:"applied"`
	Rejected  int    `json:"rejected"`
	Skipped   int    `json:"skipped"`
	Malformed int    `json:"malformed"`
	LastSeq   uint64 `json:"last_seq"`
}

// Runner replays an operation journal through a Ledger.
type Runner struct {
	cfg    RunConfig
	ledger *Ledger
	sink   storage.OutcomeSink
	logger *zap.Logger
}

func NewRunner(cfg RunConfig, l *Ledger, sink storage.OutcomeSink, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	return &Runner{cfg: cfg, ledger: l, sink: sink, logger: logger}
}

func (r *Runner) RunID() string {
	return r.cfg.RunID
}

// Run restores the last snapshot, applies every journal operation past its checkpoint,
// and saves a snapshot after each batch and at the end.
func (r *Runner) Run(ctx context.Context, inputPath string) (Summary, error) {
	summary := Summary{RunID: r.cfg.RunID}
	if r.ledger == nil {
		return summary, fmt.Errorf("ledger is nil")
	}
	if r.sink == nil {
		return summary, fmt.Errorf("outcome sink is nil")
	}

	checkpoint, restored, err := r.restore(ctx)
	if err != nil {
		return summary, err
	}

	file, err := os.Open(inputPath)
	if err != nil {
		return summary, fmt.Errorf("open journal: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	batch := make([]model.Outcome, 0, r.cfg.BatchSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		summary.Total++

		var op model.Operation
		if err := json.Unmarshal(line, &op); err != nil {
			summary.Malformed++
			r.cfg.Metrics.observeMalformed()
			r.logger.Warn("decode operation", zap.Int("line", lineNo), zap.Error(err))
			continue
		}

		if restored && op.Seq <= checkpoint {
			summary.Skipped++
			r.cfg.Metrics.observeSkipped()
			continue
		}

		outcome := r.ledger.Apply(op)
		outcome.RunID = r.cfg.RunID
		if outcome.OK {
			summary.Applied++
		} else {
			summary.Rejected++
		}
		r.cfg.Metrics.observeOutcome(outcome, r.ledger.LastSeq())
		batch = append(batch, outcome)

		if len(batch) >= r.cfg.BatchSize {
			if err := r.flush(ctx, batch); err != nil {
				return summary, err
			}
			batch = batch[:0]
		}
	}

	if err := scanner.Err(); err != nil {
		return summary, fmt.Errorf("scan journal: %w", err)
	}

	if err := r.flush(ctx, batch); err != nil {
		return summary, err
	}
	summary.LastSeq = r.ledger.LastSeq()

	r.logger.Info("replay complete",
		zap.String("run_id", summary.RunID),
		zap.Int("total", summary.Total),
		zap.Int("applied", summary.Applied),
		zap.Int("rejected", summary.Rejected),
		zap.Int("skipped", summary.Skipped),
		zap.Int("malformed", summary.Malformed),
		zap.Uint64("last_seq", summary.LastSeq),
	)
	return summary, nil
}

func (r *Runner) restore(ctx context.Context) (uint64, bool, error) {
	if r.cfg.StateStore == nil {
		return 0, false, nil
	}
	snap, ok, err := r.cfg.StateStore.Load(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("load state: %w", err)
	}
	if !ok {
		return 0, false, nil
	}
	if err := r.ledger.Restore(snap); err != nil {
		return 0, false, err
	}
	r.logger.Info("state restored",
		zap.Uint64("last_seq", snap.LastSeq),
		zap.Int64("epoch", snap.Epoch),
		zap.Int("pools", len(snap.Pools)),
		zap.Int("stakes", len(snap.Stakes)),
	)
	return snap.LastSeq, true, nil
}

// flush writes the batch, then saves a snapshot covering it.
func (r *Runner) flush(ctx context.Context, batch []model.Outcome) error {
	if len(batch) > 0 {
		if err := r.sink.PutOutcomes(batch); err != nil {
			return fmt.Errorf("write outcomes: %w", err)
		}
	}
	if r.cfg.StateStore == nil {
		return nil
	}
	if err := r.cfg.StateStore.Save(ctx, r.ledger.Snapshot()); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	r.cfg.Metrics.observeSnapshot()
	return nil
}
