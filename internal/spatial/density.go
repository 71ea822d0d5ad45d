// Package spatial aggregates map points into H3 hexagonal cells.
package spatial

import (
	"fmt"
	"sort"

	"github.com/couchcryptid/incident-map-service/internal/domain"
	"github.com/uber/h3-go/v4"
)

// Valid H3 resolutions.
const (
	MinResolution = 0
	MaxResolution = 15
)

// Cell is one occupied H3 cell with the number of points inside it.
type Cell struct {
	Index     string         `json:"index"`
	Count     int            `json:"count"`
	Latitude  float64        `json:"latitude"`
	Longitude float64        `json:"longitude"`
	Colors    map[string]int `json:"colors"`
}

// Density groups points by their H3 cell at the given resolution. Cells are
// ordered by descending count, ties broken by index.
func Density(points []domain.MapPoint, resolution int) ([]Cell, error) {
	if resolution < MinResolution || resolution > MaxResolution {
		return nil, fmt.Errorf("h3 resolution %d out of range [%d, %d]", resolution, MinResolution, MaxResolution)
	}

	byCell := make(map[h3.Cell]*Cell)
	for _, p := range points {
		cell, err := h3.LatLngToCell(h3.NewLatLng(p.Latitude, p.Longitude), resolution)
		if err != nil {
			return nil, fmt.Errorf("h3 cell for point %s: %w", p.ID, err)
		}

		c, ok := byCell[cell]
		if !ok {
			center, err := h3.CellToLatLng(cell)
			if err != nil {
				return nil, fmt.Errorf("h3 center for cell %s: %w", cell, err)
			}
			c = &Cell{
				Index:     cell.String(),
				Latitude:  center.Lat,
				Longitude: center.Lng,
				Colors:    make(map[string]int),
			}
			byCell[cell] = c
		}
		c.Count++
		c.Colors[string(p.Color)]++
	}

	cells := make([]Cell, 0, len(byCell))
	for _, c := range byCell {
		cells = append(cells, *c)
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Count != cells[j].Count {
			return cells[i].Count > cells[j].Count
		}
		return cells[i].Index < cells[j].Index
	})
	return cells, nil
}
