package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/incident-map-service/internal/adapter/sheet"
	"github.com/couchcryptid/incident-map-service/internal/domain"
	"github.com/spf13/cobra"
)

var errUnmappableRows = errors.New("feed has unmappable rows")

type checkOptions struct {
	format string
	strict bool
}

func newCheckCmd(logLevel *string) *cobra.Command {
	var opts checkOptions

	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Partition a feed export and report unmappable rows",
		Long: `Reads a CSV export of the sheet (or a JSON array of records), decodes every
row exactly like the map service and lists each row that cannot be placed on
the map together with the failing coordinate fields.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := cliLogger(cmd, *logLevel)

			records, err := loadRecords(cmd.Context(), args[0], opts.format)
			if err != nil {
				return err
			}
			logger.Debug("feed loaded", "path", args[0], "records", len(records))

			ds := domain.Assemble(records)
			writeReport(cmd.OutOrStdout(), args[0], ds)

			if opts.strict && len(ds.Unmappable) > 0 {
				return fmt.Errorf("%w: %d of %d", errUnmappableRows, len(ds.Unmappable), len(ds.Records))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", "", "input format: csv or json (default: by file extension)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "exit non-zero when any row is unmappable")
	return cmd
}

// loadRecords reads a feed file. An empty format is inferred from the
// extension, defaulting to CSV.
func loadRecords(ctx context.Context, path, format string) ([]domain.RawRecord, error) {
	if format == "" {
		format = "csv"
		if strings.EqualFold(filepath.Ext(path), ".json") {
			format = "json"
		}
	}

	switch strings.ToLower(format) {
	case "csv":
		return sheet.NewFileSource(path).Extract(ctx)
	case "json":
		return loadJSON(path)
	default:
		return nil, fmt.Errorf("unknown format %q: want csv or json", format)
	}
}

func loadJSON(path string) ([]domain.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var records []domain.RawRecord
	if err := json.NewDecoder(f).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	for i := range records {
		if records[i].Row == 0 {
			records[i].Row = i + 1
		}
	}
	return records, nil
}

func writeReport(w io.Writer, path string, ds domain.Dataset) {
	fmt.Fprintf(w, "=== Feed check: %s ===\n\n", path)
	fmt.Fprintf(w, "  %-12s %d\n", "Records:", len(ds.Records))
	fmt.Fprintf(w, "  %-12s %d\n", "Mappable:", len(ds.Mappable))
	fmt.Fprintf(w, "  %-12s %d\n", "Unmappable:", len(ds.Unmappable))

	if len(ds.Unmappable) == 0 {
		fmt.Fprintln(w, "\nAll rows can be placed on the map.")
		return
	}

	fmt.Fprintln(w, "\n--- Unmappable rows ---")
	for _, r := range ds.Unmappable {
		fmt.Fprintf(w, "  [row %d] %s\n", r.Row, r.Address)
		for _, reason := range r.Reasons() {
			fmt.Fprintf(w, "      %s\n", reason)
		}
	}
}
