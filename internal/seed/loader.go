// Package seed bulk-loads locations from JSONL or Parquet files.
package seed

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

// Loader reads seed locations from a file
type Loader struct {
	path string
}

// NewLoader creates a new seed loader
func NewLoader(path string) *Loader {
	return &Loader{
		path: path,
	}
}

// Load reads every location (JSONL or Parquet, by extension)
func (l *Loader) Load() ([]Location, error) {
	ext := strings.ToLower(filepath.Ext(l.path))

	switch ext {
	case ".parquet":
		return l.loadParquet()
	case ".jsonl", ".json":
		return l.loadJSONL()
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .parquet, .jsonl)", ext)
	}
}

// loadJSONL skips malformed lines with a warning
func (l *Loader) loadJSONL() ([]Location, error) {
	slog.Debug("Opening JSONL file", "path", l.path)

	file, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer file.Close()

	var locations []Location
	scanner := bufio.NewScanner(file)

	const maxCapacity = 1024 * 1024
	buf := make([]byte, maxCapacity)
	scanner.Buffer(buf, maxCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()

		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var loc Location
		if err := json.Unmarshal(line, &loc); err != nil {
			slog.Warn("Skipping malformed seed line", "line", lineNum, "err", err)
			continue
		}

		locations = append(locations, loc)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading seed file: %w", err)
	}

	slog.Debug("Finished reading JSONL file", "locations", len(locations), "lines", lineNum)
	return locations, nil
}

func (l *Loader) loadParquet() ([]Location, error) {
	slog.Debug("Opening Parquet file", "path", l.path)

	file, err := os.Open(l.path)
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

	slog.Debug("Parquet file opened", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[Location](pf)
	defer reader.Close()

	locations, err := readRows(reader)
	if err != nil {
		return nil, err
	}

	slog.Debug("Finished reading Parquet file", "locations", len(locations))
	return locations, nil
}

// rowReader is the part of parquet.GenericReader used by readRows
type rowReader interface {
	Read(rows []Location) (int, error)
}

// readRows drains r until io.EOF. Any other error fails the whole load.
func readRows(r rowReader) ([]Location, error) {
	var locations []Location
	rows := make([]Location, 128)

	for {
		n, err := r.Read(rows)
		if n > 0 {
			locations = append(locations, rows[:n]...)
		}
		if errors.Is(err, io.EOF) {
			return locations, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows after %d locations: %w", len(locations), err)
		}
	}
}
