package storage

import (
	"path/filepath"
	"testing"

	"ammledger/internal/model"
)

func TestJsonlStorageAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "outcomes.jsonl")
	sink := NewJsonlStorage(path)

	if err := sink.PutOutcomes(nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}
	first := []model.Outcome{
		{RunID: "r1", Seq: 1, Op: model.OpCreatePool, OK: true},
		{RunID: "r1", Seq: 2, Op: model.OpSwap, OK: false, ErrorCode: "empty_pool", Error: "pool reserves are empty"},
	}
	if err := sink.PutOutcomes(first); err != nil {
		t.Fatalf("put first: %v", err)
	}
	second := []model.Outcome{{
		RunID: "r1",
		Seq:   3,
		Op:    model.OpFundVault,
		OK:    true,
		Deltas: []model.Delta{
			model.DebitOf(model.Address{1}, model.Address{2}, 10),
		},
	}}
	if err := sink.PutOutcomes(second); err != nil {
		t.Fatalf("put second: %v", err)
	}

	got, err := ReadOutcomes(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(got))
	}
	for i, outcome := range got {
		if outcome.Seq != uint64(i+1) {
			t.Fatalf("outcome %d has seq %d", i, outcome.Seq)
		}
	}
	if got[1].ErrorCode != "empty_pool" || got[1].OK {
		t.Fatalf("unexpected failed outcome: %+v", got[1])
	}
	if len(got[2].Deltas) != 1 || got[2].Deltas[0].Amount != 10 || got[2].Deltas[0].Side != model.Debit {
		t.Fatalf("unexpected deltas: %+v", got[2].Deltas)
	}
}
