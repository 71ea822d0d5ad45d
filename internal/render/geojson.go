// Package render turns assembled datasets into what the browser consumes:
// GeoJSON for the map layer, review tables, and the map page itself.
package render

import (
	"github.com/couchcryptid/incident-map-service/internal/domain"
	"github.com/microcosm-cc/bluemonday"
)

// FeatureCollection is a GeoJSON feature collection.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is a single GeoJSON point feature.
type Feature struct {
	Type       string            `json:"type"`
	ID         string            `json:"id"`
	Geometry   Geometry          `json:"geometry"`
	Properties FeatureProperties `json:"properties"`
}

// Geometry is a GeoJSON geometry. Coordinates are [lon, lat].
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// FeatureProperties carries what the map needs to draw and label a marker.
type FeatureProperties struct {
	Row      int    `json:"row"`
	Date     string `json:"date"`
	Address  string `json:"address"`
	Category string `json:"category"`
	Quote    string `json:"quote"`
	Color    string `json:"color"`
	Fill     string `json:"fill"`
	Popup    string `json:"popup"`
}

// popupPolicy keeps the popup's own markup and strips anything a reporter
// may have typed into a field.
var popupPolicy = bluemonday.NewPolicy().AllowElements("b", "br")

// SanitizePopup makes a domain popup safe to hand to the map as HTML.
func SanitizePopup(popup string) string {
	return popupPolicy.Sanitize(popup)
}

// GeoJSON converts map points into a feature collection, one marker each.
func GeoJSON(points []domain.MapPoint) FeatureCollection {
	fc := FeatureCollection{
		Type:     "FeatureCollection",
		Features: make([]Feature, 0, len(points)),
	}
	for _, p := range points {
		fc.Features = append(fc.Features, Feature{
			Type: "Feature",
			ID:   p.ID,
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: []float64{p.Longitude, p.Latitude},
			},
			Properties: FeatureProperties{
				Row:      p.Row,
				Date:     p.Date,
				Address:  p.Address,
				Category: p.Category,
				Quote:    p.Quote,
				Color:    string(p.Color),
				Fill:     p.Color.Hex(),
				Popup:    SanitizePopup(domain.PopupText(p)),
			},
		})
	}
	return fc
}
