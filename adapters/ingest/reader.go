// Package ingest reads daily series data out of CSV and Excel exports into
// the domain model. The expected shape is one date column plus any number of
// value columns; each value column becomes its own series keyed by header.
package ingest

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"nocturna/domain/core"
	"nocturna/domain/series"
	"nocturna/internal"
	"nocturna/internal/errors"
	"nocturna/ports"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath   string
	fileType   string // "xlsx" or "csv"
	sheetName  string // xlsx only; first sheet when empty
	dateColumn string
	logger     *internal.Logger
}

// Option configures a DataReader.
type Option func(*DataReader)

// WithSheet selects an Excel sheet by name.
func WithSheet(name string) Option {
	return func(r *DataReader) { r.sheetName = name }
}

// WithDateColumn overrides the default "date" date column header.
func WithDateColumn(name string) Option {
	return func(r *DataReader) { r.dateColumn = name }
}

// NewDataReader creates a reader that dispatches on the file extension.
func NewDataReader(filePath string, opts ...Option) *DataReader {
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(filePath)) == ".csv" {
		fileType = "csv"
	}
	r := &DataReader{
		filePath:   filePath,
		fileType:   fileType,
		dateColumn: "date",
		logger:     internal.DefaultLogger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ ports.SeriesReader = (*DataReader)(nil)

// Read loads the file into a SeriesBundle. Rows whose date cannot be parsed
// are skipped with a warning; value cells that cannot be parsed become NaN
// so the day still counts as recorded.
func (r *DataReader) Read(ctx context.Context) (*ports.SeriesBundle, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.NotFound(r.filePath)
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows(ctx)
	case "xlsx":
		rows, err = r.readExcelRows(ctx)
	}
	if err != nil {
		return nil, errors.IngestError(r.filePath, err)
	}
	if len(rows) < 2 {
		return nil, errors.ValidationError("input needs a header row and at least one data row")
	}
	return r.buildBundle(rows)
}

func (r *DataReader) readCSVRows(ctx context.Context) ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // ragged exports are common; pad per row
	return reader.ReadAll()
}

func (r *DataReader) readExcelRows(ctx context.Context) ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := r.sheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	return f.GetRows(sheet)
}

func (r *DataReader) buildBundle(rows [][]string) (*ports.SeriesBundle, error) {
	headers := rows[0]
	dateIdx := -1
	for i, h := range headers {
		if strings.EqualFold(strings.TrimSpace(h), r.dateColumn) {
			dateIdx = i
			break
		}
	}
	if dateIdx < 0 {
		return nil, errors.ValidationError("date column " + r.dateColumn + " not found in header")
	}

	bundle := &ports.SeriesBundle{
		Source: r.filePath,
		Series: map[core.SeriesKey]series.Series{},
	}

	skipped := 0
	for _, row := range rows[1:] {
		if dateIdx >= len(row) {
			skipped++
			continue
		}
		date, ok := parseDate(row[dateIdx])
		if !ok {
			skipped++
			continue
		}
		for i, h := range headers {
			if i == dateIdx {
				continue
			}
			key := core.SeriesKey(strings.TrimSpace(h))
			if key == "" {
				continue
			}
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			bundle.Series[key] = append(bundle.Series[key], series.TimePoint{
				Date:  core.DateOf(date),
				Value: parseValue(cell),
			})
		}
	}
	if skipped > 0 {
		r.logger.Warn("skipped %d rows with unparseable dates in %s", skipped, r.filePath)
	}
	if len(bundle.Series) == 0 {
		return nil, errors.ValidationError("no value columns found in " + r.filePath)
	}

	r.logger.Info("loaded %d series from %s (%d data rows, %d skipped)",
		len(bundle.Series), r.filePath, len(rows)-1, skipped)
	return bundle, nil
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01-02-06", // excelize's default short-date rendering
}

func parseDate(cell string) (time.Time, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
