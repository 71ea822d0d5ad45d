package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/couchcryptid/incident-map-service/internal/domain"
)

// ErrMissingColumn means the feed header lacks a required column. It makes
// the whole feed unusable, unlike per-row decode failures.
var ErrMissingColumn = errors.New("missing required column")

// ErrEmptyFeed means the feed had no header row at all.
var ErrEmptyFeed = errors.New("feed is empty")

// ParseCSV reads a feed export into records. Rows are numbered from 1,
// excluding the header. Extra columns are ignored; cells beyond the end of
// a short row count as empty.
func ParseCSV(r io.Reader) ([]domain.RawRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFeed
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var records []domain.RawRecord
	for row := 1; ; row++ {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row, err)
		}

		records = append(records, domain.RawRecord{
			Row:       row,
			Date:      text(fields, idx[domain.ColumnDate]),
			Address:   text(fields, idx[domain.ColumnAddress]),
			Category:  text(fields, idx[domain.ColumnCategory]),
			Quote:     text(fields, idx[domain.ColumnQuote]),
			Latitude:  cell(fields, idx[domain.ColumnLatitude]),
			Longitude: cell(fields, idx[domain.ColumnLongitude]),
		})
	}
	return records, nil
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}

	var missing []string
	for _, col := range domain.RequiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return idx, nil
}

// text returns the cell verbatim. Category matching is exact, so padding is
// significant.
func text(fields []string, i int) string {
	if i >= len(fields) {
		return ""
	}
	return fields[i]
}

// cell returns the trimmed coordinate cell, or nil when it is absent or blank.
func cell(fields []string, i int) *string {
	v := strings.TrimSpace(text(fields, i))
	if v == "" {
		return nil
	}
	return &v
}
