package domain

import "fmt"

// popupTemplate is interpolated as-is. Callers rendering HTML must sanitize
// the result; field values are not escaped.
const popupTemplate = `<b>Datum:</b> %s<br>
<b>Adresse:</b> %s<br>
<b>Typ:</b> %s<br>
<b>Zitat:</b> %s`

// PopupText composes the marker popup for a point.
func PopupText(p MapPoint) string {
	return fmt.Sprintf(popupTemplate, p.Date, p.Address, p.Category, p.Quote)
}
