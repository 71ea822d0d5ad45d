package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// MapPoint is a mappable record with decoded coordinates, ready for the map.
type MapPoint struct {
	ID        string  `json:"id"`
	Row       int     `json:"row"`
	DateText  string  `json:"date_text"`
	Date      string  `json:"date"` // DD.MM.YYYY, empty when unparseable
	Address   string  `json:"address"`
	Category  string  `json:"category"`
	Quote     string  `json:"quote"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Color     Color   `json:"color"`
}

// RejectedRecord is an unmappable record kept for manual review, with the
// reason each coordinate failed. A nil error means that field decoded fine.
type RejectedRecord struct {
	RawRecord
	Date           string `json:"date"`
	LatitudeError  error  `json:"-"`
	LongitudeError error  `json:"-"`
}

// Reasons lists the decode failures as human-readable strings.
func (r RejectedRecord) Reasons() []string {
	var reasons []string
	for _, err := range []error{r.LatitudeError, r.LongitudeError} {
		if err != nil {
			reasons = append(reasons, err.Error())
		}
	}
	return reasons
}

// Dataset is the result of one assembly pass over a feed.
type Dataset struct {
	Records    []RawRecord
	Mappable   []MapPoint
	Unmappable []RejectedRecord
}

// Assemble decodes every record and partitions the feed. A record is
// mappable iff both coordinates decode; both are always attempted so a
// rejected record carries every failing field. Source order is preserved in
// each partition.
func Assemble(records []RawRecord) Dataset {
	ds := Dataset{
		Records:    records,
		Mappable:   make([]MapPoint, 0, len(records)),
		Unmappable: make([]RejectedRecord, 0),
	}

	for _, rec := range records {
		lat, latErr := DecodeLatitude(rec.Latitude)
		lon, lonErr := DecodeLongitude(rec.Longitude)
		date := FormatDate(rec.Date)

		if latErr != nil || lonErr != nil {
			ds.Unmappable = append(ds.Unmappable, RejectedRecord{
				RawRecord:      rec,
				Date:           date,
				LatitudeError:  latErr,
				LongitudeError: lonErr,
			})
			continue
		}

		ds.Mappable = append(ds.Mappable, MapPoint{
			ID:        generateID(rec.Row, rec.Date, rec.Address, lat, lon),
			Row:       rec.Row,
			DateText:  rec.Date,
			Date:      date,
			Address:   rec.Address,
			Category:  rec.Category,
			Quote:     rec.Quote,
			Latitude:  lat,
			Longitude: lon,
			Color:     StyleFor(rec.Category),
		})
	}

	return ds
}

// generateID hashes the fields that identify a report so repeated refreshes
// of an unchanged sheet publish the same keys.
func generateID(row int, date, address string, lat, lon float64) string {
	input := fmt.Sprintf("%d|%s|%s|%.4f|%.4f", row, date, address, lat, lon)
	hash := sha256.Sum256([]byte(input))
	return "inc-" + hex.EncodeToString(hash[:8])
}
