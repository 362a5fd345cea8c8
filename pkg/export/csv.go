// Package export writes collected vacancy rows to a UTF-8 CSV file that
// spreadsheet tools open with the right encoding.
package export

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Sternrassler/hh-vacancy-collector/pkg/collector"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// BOM is the UTF-8 byte order mark written at the start of every file.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// FileName returns the output file name for a run finishing at now,
// e.g. hh_vacancies_20240501_1005.csv.
func FileName(now time.Time) string {
	return "hh_vacancies_" + now.Format("20060102_1504") + ".csv"
}

// CSVWriter saves rows to a timestamped CSV file in one directory.
type CSVWriter struct {
	dir    string
	now    func() time.Time
	logger zerolog.Logger
}

// NewCSVWriter creates a writer for dir; an empty dir means the working directory.
func NewCSVWriter(dir string) *CSVWriter {
	if dir == "" {
		dir = "."
	}
	return &CSVWriter{
		dir:    dir,
		now:    time.Now,
		logger: log.With().Str("component", "export").Logger(),
	}
}

// WithClock replaces the time source used for the file name (for testing).
func (w *CSVWriter) WithClock(now func() time.Time) *CSVWriter {
	w.now = now
	return w
}

// Write saves rows to a new file and returns its path. The header row is
// written even when rows is empty. The output directory is created if needed.
func (w *CSVWriter) Write(rows []collector.Row) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("could not create output dir: %w", err)
	}

	path := filepath.Join(w.dir, FileName(w.now()))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("could not create file: %w", err)
	}

	if err := Encode(file, rows); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("could not close %s: %w", path, err)
	}

	w.logger.Debug().Str("path", path).Int("rows", len(rows)).Msg("CSV written")
	return path, nil
}

// Encode writes the BOM, the header row and one record per row to out.
func Encode(out io.Writer, rows []collector.Row) error {
	buf := bufio.NewWriter(out)
	if _, err := buf.Write(BOM); err != nil {
		return fmt.Errorf("csv write error: %w", err)
	}

	writer := csv.NewWriter(buf)
	if err := writer.Write(collector.Columns); err != nil {
		return fmt.Errorf("csv write error: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row.Record()); err != nil {
			return fmt.Errorf("csv write error: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("csv write error: %w", err)
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("csv write error: %w", err)
	}
	return nil
}

// ReadCSV loads a file produced by Write.
func ReadCSV(path string) ([]collector.Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	rows, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// Decode parses CSV data produced by Encode. A leading BOM is optional.
func Decode(in io.Reader) ([]collector.Row, error) {
	buf := bufio.NewReader(in)
	if head, err := buf.Peek(len(BOM)); err == nil && bytes.Equal(head, BOM) {
		buf.Discard(len(BOM))
	}

	reader := csv.NewReader(buf)
	reader.FieldsPerRecord = len(collector.Columns)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, name := range collector.Columns {
		if header[i] != name {
			return nil, fmt.Errorf("column %d is %q, want %q", i+1, header[i], name)
		}
	}

	var rows []collector.Row
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row, err := collector.RowFromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
