package asks

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/example/resy-asks/internal/dates"
	"github.com/example/resy-asks/internal/domain/reservation"
)

// XLSX reads the first sheet of a workbook laid out like the TSV export.
// A leading header row is skipped.
type XLSX struct {
	Path string

	log zerolog.Logger
	now func() time.Time
}

func NewXLSX(path string, log zerolog.Logger) *XLSX {
	return &XLSX{Path: path, log: log, now: time.Now}
}

func (s *XLSX) Load(context.Context) ([]reservation.Ask, error) {
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open asks: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read asks sheet %s: %w", sheets[0], err)
	}
	return parseRows(rows, dates.Day(s.now()), s.log), nil
}

func parseRows(rows [][]string, today time.Time, log zerolog.Logger) []reservation.Ask {
	var out []reservation.Ask
	for i, row := range rows {
		if isBlank(row) {
			continue
		}
		if i == 0 && isHeader(row) {
			continue
		}
		// GetRows trims trailing empty cells.
		for len(row) < 4 {
			row = append(row, "")
		}
		ask, err := parseRow(row[:4], today)
		if err != nil {
			log.Warn().Err(err).Int("row", i+1).Msg("skipping ask row")
			continue
		}
		out = append(out, ask)
	}
	return out
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func isHeader(row []string) bool {
	if len(row) < 3 {
		return false
	}
	_, err := strconv.Atoi(strings.TrimSpace(row[2]))
	return err != nil
}
