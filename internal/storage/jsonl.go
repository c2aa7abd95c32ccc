package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"ammledger/internal/model"
)

// JsonlStorage appends outcome records to a JSONL file.
type JsonlStorage struct {
	path string
	mu   sync.Mutex
}

func NewJsonlStorage(path string) *JsonlStorage {
	return &JsonlStorage{path: path}
}

// PutOutcomes appends a batch of outcomes as JSON lines.
func (s *JsonlStorage) PutOutcomes(outcomes []model.Outcome) error {
	if len(outcomes) == 0 {
		return nil
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	enc := json.NewEncoder(writer)
	for _, outcome := range outcomes {
		if err := enc.Encode(outcome); err != nil {
			return fmt.Errorf("write outcome %d: %w", outcome.Seq, err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

// ReadOutcomes loads every outcome from a JSONL file.
func ReadOutcomes(path string) ([]model.Outcome, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open outcomes: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	var out []model.Outcome
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var outcome model.Outcome
		if err := json.Unmarshal(scanner.Bytes(), &outcome); err != nil {
			return nil, fmt.Errorf("parse outcome: %w", err)
		}
		out = append(out, outcome)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan outcomes: %w", err)
	}
	return out, nil
}
