// Package asks loads booking asks from spreadsheet exports, YAML files and
// XLSX workbooks.
package asks

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/resy-asks/internal/domain/reservation"
)

// Source yields the current asks. Rows that cannot be parsed are logged and
// skipped; only a failure to read the source at all is returned.
type Source interface {
	Load(ctx context.Context) ([]reservation.Ask, error)
}

// Open picks a Source for location: http(s) URLs are read as TSV exports,
// .yaml/.yml and .xlsx files by extension, anything else as a TSV file.
func Open(location string, hc *http.Client, log zerolog.Logger) Source {
	now := time.Now
	switch {
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return &TSV{URL: location, hc: hc, log: log, now: now}
	}
	switch strings.ToLower(filepath.Ext(location)) {
	case ".yaml", ".yml":
		return &YAML{Path: location, log: log, now: now}
	case ".xlsx":
		return &XLSX{Path: location, log: log, now: now}
	default:
		return &TSV{Path: location, hc: hc, log: log, now: now}
	}
}

// Static is a fixed list of asks.
type Static []reservation.Ask

func (s Static) Load(context.Context) ([]reservation.Ask, error) {
	return append([]reservation.Ask(nil), s...), nil
}
