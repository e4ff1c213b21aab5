package asks

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/resy-asks/internal/dates"
	"github.com/example/resy-asks/internal/domain/reservation"
)

// TSV reads tab separated rows from a spreadsheet export URL or a local file.
type TSV struct {
	URL  string
	Path string

	hc  *http.Client
	log zerolog.Logger
	now func() time.Time
}

func NewTSVFile(path string, log zerolog.Logger) *TSV {
	return &TSV{Path: path, log: log, now: time.Now}
}

func NewTSVURL(url string, hc *http.Client, log zerolog.Logger) *TSV {
	return &TSV{URL: url, hc: hc, log: log, now: time.Now}
}

func (s *TSV) Load(ctx context.Context) ([]reservation.Ask, error) {
	rc, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return readTSV(rc, dates.Day(s.now()), s.log)
}

func (s *TSV) open(ctx context.Context) (io.ReadCloser, error) {
	if s.URL == "" {
		f, err := os.Open(s.Path)
		if err != nil {
			return nil, fmt.Errorf("open asks: %w", err)
		}
		return f, nil
	}

	hc := s.hc
	if hc == nil {
		hc = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}
	res, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch asks: %v", reservation.ErrTransport, err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		res.Body.Close()
		return nil, fmt.Errorf("%w: fetch asks: status=%d", reservation.ErrTransport, res.StatusCode)
	}
	return res.Body, nil
}

func readTSV(r io.Reader, today time.Time, log zerolog.Logger) ([]reservation.Ask, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var out []reservation.Ask
	for line := 1; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				log.Warn().Err(err).Int("line", line).Msg("skipping unreadable ask row")
				continue
			}
			return nil, fmt.Errorf("read asks: %w", err)
		}
		ask, err := parseRow(row, today)
		if err != nil {
			log.Warn().Err(err).Int("line", line).Strs("row", row).Msg("skipping ask row")
			continue
		}
		out = append(out, ask)
	}
	return out, nil
}
