package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"ammledger/internal/model"
)

func TestFileStateStoreRoundTrip(t *testing.T) {
	store := &FileStateStore{Path: filepath.Join(t.TempDir(), "nested", "state.json")}

	_, ok, err := store.Load(context.Background())
	if err != nil || ok {
		t.Fatalf("expected empty state, ok=%v err=%v", ok, err)
	}

	l := newLedger()
	for _, op := range journal()[:6] {
		l.Apply(op)
	}
	want := l.Snapshot()
	if err := store.Save(context.Background(), want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := store.Load(context.Background())
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("snapshot mismatch:\n got %+v\nwant %+v", got, want)
	}
}

type flakyDB struct {
	failures int
	calls    int
	saved    model.Snapshot
}

func (f *flakyDB) LoadSnapshot(ctx context.Context, name string) (model.Snapshot, bool, error) {
	f.calls++
	if f.calls <= f.failures {
		return model.Snapshot{}, false, errors.New("connection reset")
	}
	return f.saved, f.saved.LastSeq > 0, nil
}

func (f *flakyDB) SaveSnapshot(ctx context.Context, name string, snap model.Snapshot) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("connection reset")
	}
	f.saved = snap
	return nil
}

func TestDBStateStoreRetries(t *testing.T) {
	db := &flakyDB{failures: 2}
	store := &DBStateStore{Store: db, Name: "ledger", MaxRetries: 2, RetryBackoff: time.Millisecond}

	if err := store.Save(context.Background(), model.Snapshot{LastSeq: 9}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if db.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", db.calls)
	}

	db.calls, db.failures = 0, 0
	snap, ok, err := store.Load(context.Background())
	if err != nil || !ok || snap.LastSeq != 9 {
		t.Fatalf("load: snap=%+v ok=%v err=%v", snap, ok, err)
	}

	db.calls, db.failures = 0, 5
	if err := store.Save(context.Background(), model.Snapshot{LastSeq: 10}); err == nil {
		t.Fatalf("expected error after exhausting retries")
	}
	if db.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", db.calls)
	}
}

func TestWithRetryHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := withRetry(ctx, 10, time.Hour, func(context.Context) error {
		calls++
		cancel()
		return errors.New("fail")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}
