package render

import (
	"fmt"
	"html/template"
	"io"
	"time"
)

// PageData is everything the map page template needs.
type PageData struct {
	Title       string
	CenterLat   float64
	CenterLon   float64
	Zoom        int
	PointsURL   string
	Mappable    int
	Records     []RecordRow
	Rejected    []RejectedRow
	RefreshedAt time.Time
}

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"coord": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"stamp": func(t time.Time) string { return t.Format("02.01.2006 15:04:05") },
}).Parse(pageHTML))

// Page writes the map page. Markers are loaded by the browser from
// PointsURL; the review tables are rendered server side.
func Page(w io.Writer, data PageData) error {
	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

const pageHTML = `<!DOCTYPE html>
<html lang="de">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<style>
body { margin: 0; font-family: sans-serif; }
header { padding: 0.5rem 1rem; }
#map { height: 75vh; width: 100%; }
details { margin: 0.5rem 1rem; }
table { border-collapse: collapse; font-size: 0.85rem; }
td, th { border: 1px solid #ccc; padding: 0.2rem 0.4rem; text-align: left; }
.err { color: #a23336; }
</style>
</head>
<body>
<header>
<h1>📍 {{.Title}}</h1>
<p>{{.Mappable}} von {{len .Records}} Meldungen auf der Karte · Stand {{stamp .RefreshedAt}}</p>
</header>
<div id="map"></div>

<details>
<summary>📄 Rohdaten anzeigen ({{len .Records}})</summary>
<table>
<tr><th>Zeile</th><th>Datum</th><th>Adresse</th><th>Typ</th><th>Zitat</th><th>Latitude</th><th>Longitude</th></tr>
{{range .Records}}<tr><td>{{.Row}}</td><td>{{.Date}}</td><td>{{.Address}}</td><td>{{.Category}}</td><td>{{.Quote}}</td><td>{{coord .Latitude}}</td><td>{{coord .Longitude}}</td></tr>
{{end}}</table>
</details>

<details>
<summary>❗️ Ungültige Koordinaten ({{len .Rejected}})</summary>
<table>
<tr><th>Zeile</th><th>Datum</th><th>Adresse</th><th>Typ</th><th>Latitude</th><th>Longitude</th><th>Fehler</th></tr>
{{range .Rejected}}<tr><td>{{.Row}}</td><td>{{.Date}}</td><td>{{.Address}}</td><td>{{.Category}}</td><td>{{coord .Latitude}}</td><td>{{coord .Longitude}}</td><td class="err">{{.LatitudeError}} {{.LongitudeError}}</td></tr>
{{end}}</table>
</details>

<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<script>
const map = L.map('map').setView([{{.CenterLat}}, {{.CenterLon}}], {{.Zoom}});
L.tileLayer('https://tile.openstreetmap.org/{z}/{x}/{y}.png', {
  maxZoom: 19,
  attribution: '&copy; OpenStreetMap'
}).addTo(map);
fetch({{.PointsURL}})
  .then(r => r.json())
  .then(fc => {
    L.geoJSON(fc, {
      pointToLayer: (f, latlng) => L.circleMarker(latlng, {
        radius: 8, color: '#333', weight: 1, fillColor: f.properties.fill, fillOpacity: 0.9
      }),
      onEachFeature: (f, layer) => layer.bindPopup(f.properties.popup, {maxWidth: 300})
    }).addTo(map);
  });
</script>
</body>
</html>
`
