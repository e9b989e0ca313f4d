package snapshot

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"stakerScope/internal/model"
)

// LoadStats summarizes a snapshot file read.
type LoadStats struct {
	Total   int
	Decoded int
	Failed  int
}

// LoadFile reads a JSONL snapshot file. Lines that fail to parse or validate are
// counted and logged; they never abort the read.
func LoadFile(path string, logger *zap.Logger) ([]*Snapshot, LoadStats, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("open input: %w", err)
	}
	defer file.Close()
	return Load(file, logger)
}

// Load reads and decodes JSONL snapshot records from r.
func Load(r io.Reader, logger *zap.Logger) ([]*Snapshot, LoadStats, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var snapshots []*Snapshot
	stats, err := scanRecords(r, logger, func(lineNo int, record model.PoolSnapshot) bool {
		snap, err := Decode(record)
		if err != nil {
			logger.Warn("invalid snapshot",
				zap.Int("line", lineNo),
				zap.String("pool", record.Pool),
				zap.Uint64("block", record.BlockNumber),
				zap.Error(err),
			)
			return false
		}
		snapshots = append(snapshots, snap)
		return true
	})
	if err != nil {
		return nil, stats, err
	}
	return snapshots, stats, nil
}

// ReadRecordsFile reads JSONL snapshot records without validating them. Lines that are
// not valid JSON are counted and logged.
func ReadRecordsFile(path string, logger *zap.Logger) ([]model.PoolSnapshot, LoadStats, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	var records []model.PoolSnapshot
	stats, err := scanRecords(file, logger, func(_ int, record model.PoolSnapshot) bool {
		records = append(records, record)
		return true
	})
	if err != nil {
		return nil, stats, err
	}
	return records, stats, nil
}

func scanRecords(r io.Reader, logger *zap.Logger, handle func(lineNo int, record model.PoolSnapshot) bool) (LoadStats, error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 64*1024*1024)

	var stats LoadStats
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		stats.Total++

		var record model.PoolSnapshot
		if err := json.Unmarshal(line, &record); err != nil {
			stats.Failed++
			logger.Warn("parse snapshot", zap.Int("line", lineNo), zap.Error(err))
			continue
		}
		if !handle(lineNo, record) {
			stats.Failed++
			continue
		}
		stats.Decoded++
	}

	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("scan input: %w", err)
	}
	return stats, nil
}
