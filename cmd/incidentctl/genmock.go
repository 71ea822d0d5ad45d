package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/incident-map-service/internal/config"
	"github.com/couchcryptid/incident-map-service/internal/domain"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	mockStreets = []string{
		"Prinzipalmarkt", "Ludgeristraße", "Salzstraße", "Rothenburg", "Aegidiistraße",
		"Hammer Straße", "Wolbecker Straße", "Hafenweg", "Bahnhofstraße", "Warendorfer Straße",
	}
	mockCategories = []string{"Verbal", "Physisch", "Schreien", "Sonstiges"}
	mockQuotes     = []string{
		"", "Wurde angeschrien", "Hat mich geschubst", "Beleidigung im Vorbeigehen",
		"Mehrere Personen beteiligt", "Aus dem Auto heraus",
	}
	mockBaseDate = time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC)
)

type genmockOptions struct {
	rows int
	seed uint64
	out  string
}

func newGenmockCmd() *cobra.Command {
	var opts genmockOptions

	cmd := &cobra.Command{
		Use:   "genmock",
		Short: "Write a deterministic mock feed",
		Long: `Generates a CSV feed with the sheet's columns around the map center. About
one row in five carries a coordinate that cannot be decoded (too short, missing
or without digits); the rest use the digit-only, dotted and comma notations
seen in real exports. The same seed always yields the same file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.rows < 1 {
				return errors.New("--rows must be at least 1")
			}

			toStdout := opts.out == "" || opts.out == "-"
			if toStdout {
				_, err := generateMock(cmd.OutOrStdout(), opts.rows, opts.seed, nil)
				return err
			}

			f, err := os.Create(opts.out)
			if err != nil {
				return fmt.Errorf("create %s: %w", opts.out, err)
			}
			defer f.Close()

			var onRow func()
			if isatty.IsTerminal(os.Stderr.Fd()) {
				bar := progressbar.NewOptions(opts.rows,
					progressbar.OptionSetDescription("Generating "+opts.out),
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
				onRow = func() { _ = bar.Add(1) }
			}

			malformed, err := generateMock(f, opts.rows, opts.seed, onRow)
			if err != nil {
				return err
			}
			cmd.Printf("wrote %d rows (%d malformed) to %s\n", opts.rows, malformed, opts.out)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.rows, "rows", 50, "number of data rows")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 1, "random seed")
	cmd.Flags().StringVar(&opts.out, "out", "-", "output file, - for stdout")
	return cmd
}

// generateMock writes a header plus rows data rows and returns how many rows
// were made unmappable on purpose. onRow, when set, is called after each row.
func generateMock(w io.Writer, rows int, seed uint64, onRow func()) (int, error) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	cw := csv.NewWriter(w)
	if err := cw.Write(domain.RequiredColumns); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	malformed := 0
	for i := range rows {
		lat := config.MapCenterLat + (rng.Float64()-0.5)*0.04
		lon := config.MapCenterLon + (rng.Float64()-0.5)*0.06
		latText, lonText := mockCoordinate(rng, lat), mockCoordinate(rng, lon)

		if rng.IntN(5) == 0 {
			malformed++
			latText, lonText = breakCoordinate(rng, latText, lonText)
		}

		record := []string{
			mockDate(rng, i),
			fmt.Sprintf("%s %d", mockStreets[rng.IntN(len(mockStreets))], 1+rng.IntN(120)),
			mockCategories[rng.IntN(len(mockCategories))],
			mockQuotes[rng.IntN(len(mockQuotes))],
			latText,
			lonText,
		}
		if err := cw.Write(record); err != nil {
			return 0, fmt.Errorf("write row %d: %w", i+1, err)
		}
		if onRow != nil {
			onRow()
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("flush csv: %w", err)
	}
	return malformed, nil
}

// mockCoordinate renders v in one of the notations that decode fine.
func mockCoordinate(rng *rand.Rand, v float64) string {
	s := fmt.Sprintf("%.7f", v)
	switch rng.IntN(3) {
	case 0:
		return strings.Replace(s, ".", "", 1)
	case 1:
		return s
	default:
		return strings.Replace(s, ".", ",", 1)
	}
}

// breakCoordinate spoils one or both coordinates so the row cannot decode.
func breakCoordinate(rng *rand.Rand, lat, lon string) (string, string) {
	switch rng.IntN(4) {
	case 0:
		return lat[:3], lon
	case 1:
		return lat, lon[:3]
	case 2:
		return "", lon
	default:
		return "k.A.", ""
	}
}

func mockDate(rng *rand.Rand, i int) string {
	d := mockBaseDate.AddDate(0, 0, i%60)
	switch rng.IntN(10) {
	case 0:
		return ""
	case 1:
		return d.Format("2.1.2006")
	case 2:
		return d.Format("2006-01-02")
	default:
		return d.Format(domain.DisplayDateLayout)
	}
}
