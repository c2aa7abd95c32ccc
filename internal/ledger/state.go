package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"ammledger/internal/model"
)

// StateStore persists ledger snapshots between runs.
type StateStore interface {
	Load(ctx context.Context) (model.Snapshot, bool, error)
	Save(ctx context.Context, snap model.Snapshot) error
}

// FileStateStore stores the snapshot in a local JSON file.
type FileStateStore struct {
	Path string
}

func (s *FileStateStore) Load(ctx context.Context) (model.Snapshot, bool, error) {
	if s == nil || s.Path == "" {
		return model.Snapshot{}, false, nil
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.Snapshot{}, false, nil
		}
		return model.Snapshot{}, false, fmt.Errorf("read state: %w", err)
	}

	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return model.Snapshot{}, false, fmt.Errorf("parse state: %w", err)
	}
	return snap, true, nil
}

func (s *FileStateStore) Save(ctx context.Context, snap model.Snapshot) error {
	if s == nil || s.Path == "" {
		return nil
	}
	dir := filepath.Dir(s.Path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state tmp: %w", err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		return fmt.Errorf("rename state: %w", err)
	}
	return nil
}

// SnapshotDB is the subset of the Postgres store used for state.
type SnapshotDB interface {
	LoadSnapshot(ctx context.Context, name string) (model.Snapshot, bool, error)
	SaveSnapshot(ctx context.Context, name string, snap model.Snapshot) error
}

// DBStateStore stores snapshots in Postgres under Name, retrying transient failures.
type DBStateStore struct {
	Store        SnapshotDB
	Name         string
	MaxRetries   int
	RetryBackoff time.Duration
	Logger       *zap.Logger
}

func (s *DBStateStore) Load(ctx context.Context) (model.Snapshot, bool, error) {
	if s == nil || s.Store == nil {
		return model.Snapshot{}, false, nil
	}
	var (
		snap model.Snapshot
		ok   bool
	)
	err := withRetry(ctx, s.MaxRetries, s.RetryBackoff, func(ctx context.Context) error {
		var err error
		snap, ok, err = s.Store.LoadSnapshot(ctx, s.Name)
		if err != nil {
			s.logger().Warn("load snapshot failed", zap.String("name", s.Name), zap.Error(err))
		}
		return err
	})
	return snap, ok, err
}

func (s *DBStateStore) Save(ctx context.Context, snap model.Snapshot) error {
	if s == nil || s.Store == nil {
		return nil
	}
	return withRetry(ctx, s.MaxRetries, s.RetryBackoff, func(ctx context.Context) error {
		err := s.Store.SaveSnapshot(ctx, s.Name, snap)
		if err != nil {
			s.logger().Warn("save snapshot failed", zap.String("name", s.Name), zap.Uint64("last_seq", snap.LastSeq), zap.Error(err))
		}
		return err
	})
}

func (s *DBStateStore) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
