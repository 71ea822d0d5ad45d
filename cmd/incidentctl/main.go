// Command incidentctl is the operator tool for the incident map feed.
//
// Usage:
//
//	incidentctl check export.csv
//	incidentctl check --format json --strict records.json
//	incidentctl genmock --rows 200 --seed 7 --out testdata/mock.csv
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
