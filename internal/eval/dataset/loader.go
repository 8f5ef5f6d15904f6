package dataset

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// Loader handles loading of labelled chessboard datasets
type Loader struct {
	datasetPath string
}

// NewLoader creates a new dataset loader
func NewLoader(datasetPath string) *Loader {
	return &Loader{
		datasetPath: datasetPath,
	}
}

// BaseDir is the directory relative image paths are resolved against
func (l *Loader) BaseDir() string {
	return filepath.Dir(l.datasetPath)
}

// Load loads all records from a dataset file (JSONL or Parquet)
func (l *Loader) Load() ([]Record, error) {
	return l.LoadSample(-1)
}

// LoadSample loads at most limit records; limit < 0 loads everything
func (l *Loader) LoadSample(limit int) ([]Record, error) {
	ext := strings.ToLower(filepath.Ext(l.datasetPath))

	switch ext {
	case ".parquet":
		return l.loadParquet(limit)
	case ".jsonl", ".json":
		return l.loadJSONL(limit)
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .parquet, .jsonl)", ext)
	}
}

// loadJSONL loads records from a JSONL file
func (l *Loader) loadJSONL(limit int) ([]Record, error) {
	slog.Debug("Opening JSONL file", "path", l.datasetPath)

	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer file.Close()

	var records []Record
	scanner := bufio.NewScanner(file)

	lineNum := 0
	for scanner.Scan() {
		if limit >= 0 && len(records) >= limit {
			break
		}
		lineNum++
		line := scanner.Bytes()

		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var record Record
		if err := json.Unmarshal(line, &record); err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}

		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading dataset: %w", err)
	}

	slog.Debug("Finished reading JSONL file", "total_records", len(records), "total_lines", lineNum)

	return records, nil
}

// loadParquet loads records from a Parquet file
func (l *Loader) loadParquet(limit int) ([]Record, error) {
	slog.Debug("Opening Parquet file", "path", l.datasetPath, "sample_limit", limit)

	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet file opened successfully", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[Record](pf)
	defer reader.Close()

	var records []Record
	rows := make([]Record, 128)

	batchNum := 0
	for limit < 0 || len(records) < limit {
		n, err := reader.Read(rows)
		if n > 0 {
			batchNum++
			if limit >= 0 && n > limit-len(records) {
				n = limit - len(records)
			}
			records = append(records, rows[:n]...)
			slog.Debug("Read batch from Parquet", "batch", batchNum, "rows_in_batch", n, "total_rows_read", len(records))
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	slog.Debug("Finished reading Parquet file", "total_records", len(records), "total_batches", batchNum)

	return records, nil
}
