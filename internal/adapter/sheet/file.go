package sheet

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/couchcryptid/incident-map-service/internal/domain"
)

// FileSource reads a CSV export from local disk, for offline runs and
// fixtures.
type FileSource struct {
	path string
}

// NewFileSource creates a source for the CSV file at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Extract reads and parses the whole file on every call.
func (f *FileSource) Extract(ctx context.Context) ([]domain.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("open feed: %w", err)
	}
	defer file.Close()

	records, err := ParseCSV(file)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.path, err)
	}
	return records, nil
}

// NewSource picks a FileSource for file:// URLs and an HTTP Client otherwise.
func NewSource(rawURL string, timeout time.Duration, logger *slog.Logger) (Extractor, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse feed url: %w", err)
	}
	switch u.Scheme {
	case "file":
		return NewFileSource(u.Path), nil
	case "http", "https":
		return NewClient(rawURL, timeout, logger), nil
	default:
		return nil, fmt.Errorf("unsupported feed url scheme %q", u.Scheme)
	}
}
