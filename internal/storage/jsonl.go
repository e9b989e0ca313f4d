package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"stakerScope/internal/model"
)

// metricLine tags each JSONL record so pool and user metrics can share one file.
type metricLine struct {
	Kind string      `json:"kind"`
	Data interface{} `json:"data"`
}

const (
	kindPool = "pool"
	kindUser = "user"
)

// JsonlStorage appends metric records to a JSONL file.
type JsonlStorage struct {
	path string
	mu   sync.Mutex
}

func NewJsonlStorage(path string) *JsonlStorage {
	return &JsonlStorage{path: path}
}

// PutPoolMetrics appends pool metrics as JSON lines.
func (s *JsonlStorage) PutPoolMetrics(_ context.Context, metrics []model.PoolMetrics) error {
	values := make([]interface{}, 0, len(metrics))
	for _, m := range metrics {
		values = append(values, metricLine{Kind: kindPool, Data: m})
	}
	return s.append(values)
}

// PutUserMetrics appends user metrics as JSON lines.
func (s *JsonlStorage) PutUserMetrics(_ context.Context, metrics []model.UserMetrics) error {
	values := make([]interface{}, 0, len(metrics))
	for _, m := range metrics {
		values = append(values, metricLine{Kind: kindUser, Data: m})
	}
	return s.append(values)
}

// WriteSnapshots appends frozen snapshot records as JSON lines.
func (s *JsonlStorage) WriteSnapshots(records []model.PoolSnapshot) error {
	values := make([]interface{}, 0, len(records))
	for _, rec := range records {
		values = append(values, rec)
	}
	return s.append(values)
}

func (s *JsonlStorage) append(values []interface{}) error {
	if len(values) == 0 {
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
	for _, value := range values {
		line, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}
