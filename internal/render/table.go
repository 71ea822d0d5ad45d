package render

import "github.com/couchcryptid/incident-map-service/internal/domain"

// RecordRow is a raw feed row as shown in the review tables.
type RecordRow struct {
	Row       int     `json:"row"`
	Date      string  `json:"date"`
	Address   string  `json:"address"`
	Category  string  `json:"category"`
	Quote     string  `json:"quote"`
	Latitude  *string `json:"latitude"`
	Longitude *string `json:"longitude"`
}

// RejectedRow is an unmappable record with the reason for each failed field.
type RejectedRow struct {
	RecordRow
	DisplayDate    string `json:"display_date"`
	LatitudeError  string `json:"latitude_error,omitempty"`
	LongitudeError string `json:"longitude_error,omitempty"`
}

// Records passes the feed through unchanged for inspection.
func Records(records []domain.RawRecord) []RecordRow {
	rows := make([]RecordRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, recordRow(r))
	}
	return rows
}

// Rejected lists the unmappable records for manual correction.
func Rejected(rejected []domain.RejectedRecord) []RejectedRow {
	rows := make([]RejectedRow, 0, len(rejected))
	for _, r := range rejected {
		rows = append(rows, RejectedRow{
			RecordRow:      recordRow(r.RawRecord),
			DisplayDate:    r.Date,
			LatitudeError:  errString(r.LatitudeError),
			LongitudeError: errString(r.LongitudeError),
		})
	}
	return rows
}

func recordRow(r domain.RawRecord) RecordRow {
	return RecordRow{
		Row:       r.Row,
		Date:      r.Date,
		Address:   r.Address,
		Category:  r.Category,
		Quote:     r.Quote,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
