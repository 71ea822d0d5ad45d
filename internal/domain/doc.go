// Package domain models the incident report feed and the decoding rules that
// turn its rows into map pins.
//
// # Data Source
//
// Reports are collected in a shared Google Sheet and published as a CSV
// export. Each row is one incident with the columns:
//
//	Datum      date of the incident, free text, day-first ("01.03.2023")
//	Adresse    street address as typed by the reporter
//	Type       category label ("Verbal", "Physisch", "Schreien", ...)
//	Quote      what was said or done, free text
//	Latitude   encoded latitude (see below)
//	Longitude  encoded longitude (see below)
//
// Missing columns make the whole feed unusable and are reported by the feed
// adapter. Missing cells are per-row problems handled here.
//
// # Coordinate Encoding
//
// The sheet stores coordinates as fixed-point digit strings with the decimal
// point removed. The integer part has a fixed width:
//
//	Latitude:  2 integer digits + 4 fraction digits  "519617818" → 51.9617
//	Longitude: 1 integer digit  + 4 fraction digits  "76285726"  → 7.6285
//
// Spreadsheet software regularly mangles these values (thousands separators,
// a decimal point in the wrong place, stray spaces), so every non-digit
// character is stripped before the digits are split. Digits beyond the
// fourth fraction digit are truncated, never rounded. Signs are discarded;
// the encoding is calibrated to one city (Münster, ~51.96°N 7.63°E) and has
// no way to express southern or western coordinates.
//
// A coordinate is invalid when it is missing or has fewer digits than the
// encoding needs (6 for latitude, 5 for longitude). See [DecodeLatitude] and
// [DecodeLongitude].
//
// # Partitioning
//
// [Assemble] decodes both coordinates of every record and splits the feed
// into mappable points and rejected records. Every record lands in exactly
// one of the two sets, in source order. Rejected records stay visible so
// the sheet can be corrected by hand.
//
// # Dates
//
// Dates are normalized to DD.MM.YYYY for display. An unparseable date shows
// as empty and never makes a record unmappable. See [FormatDate].
//
// # Categories
//
// Pin colors come from a fixed table with a gray fallback for every other
// label, including empty ones. See [StyleFor].
package domain
