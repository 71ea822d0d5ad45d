package domain

// Color is a marker color token understood by the map renderer.
type Color string

const (
	ColorOrange     Color = "orange"
	ColorDarkRed    Color = "darkred"
	ColorLightGreen Color = "lightgreen"
	ColorGray       Color = "gray"
)

// DefaultColor is used for every category without an explicit color.
const DefaultColor = ColorGray

var categoryColors = map[string]Color{
	"Verbal":   ColorOrange,
	"Physisch": ColorDarkRed,
	"Schreien": ColorLightGreen,
}

// StyleFor returns the marker color for a category. Matching is exact; any
// other label, including the empty string, gets DefaultColor.
func StyleFor(category string) Color {
	if c, ok := categoryColors[category]; ok {
		return c
	}
	return DefaultColor
}

// Hex maps a color token to the CSS color used on the rendered page.
func (c Color) Hex() string {
	switch c {
	case ColorOrange:
		return "#f69730"
	case ColorDarkRed:
		return "#a23336"
	case ColorLightGreen:
		return "#bbf970"
	default:
		return "#575757"
	}
}
