package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Feed column names as they appear in the sheet header.
const (
	ColumnDate      = "Datum"
	ColumnAddress   = "Adresse"
	ColumnCategory  = "Type"
	ColumnQuote     = "Quote"
	ColumnLatitude  = "Latitude"
	ColumnLongitude = "Longitude"
)

// RequiredColumns lists every column a feed must carry.
var RequiredColumns = []string{
	ColumnDate,
	ColumnAddress,
	ColumnCategory,
	ColumnQuote,
	ColumnLatitude,
	ColumnLongitude,
}

// RawRecord is one unprocessed feed row. A nil coordinate means the cell was
// empty or absent.
type RawRecord struct {
	Row       int     `json:"row"`
	Date      string  `json:"Datum"`
	Address   string  `json:"Adresse"`
	Category  string  `json:"Type"`
	Quote     string  `json:"Quote"`
	Latitude  *string `json:"Latitude"`
	Longitude *string `json:"Longitude"`
}

// UnmarshalJSON accepts coordinates as strings, numbers or null. Exported
// sheets and hand-written fixtures disagree on which one they use.
func (r *RawRecord) UnmarshalJSON(data []byte) error {
	type plain RawRecord
	var aux struct {
		plain
		Latitude  json.RawMessage `json:"Latitude"`
		Longitude json.RawMessage `json:"Longitude"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	lat, err := rawCoordinateFromJSON(aux.Latitude)
	if err != nil {
		return fmt.Errorf("field %s: %w", ColumnLatitude, err)
	}
	lon, err := rawCoordinateFromJSON(aux.Longitude)
	if err != nil {
		return fmt.Errorf("field %s: %w", ColumnLongitude, err)
	}

	*r = RawRecord(aux.plain)
	r.Latitude = lat
	r.Longitude = lon
	return nil
}

func rawCoordinateFromJSON(data json.RawMessage) (*string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		return &s, nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("coordinate must be a string, number or null: %w", err)
	}
	return NumericRaw(f), nil
}

// NumericRaw renders a numeric cell in its shortest decimal form so it can be
// decoded like a digit string.
func NumericRaw(v float64) *string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	return &s
}

// Raw is a convenience for building records with a present coordinate cell.
func Raw(s string) *string {
	return &s
}
