package asks

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/example/resy-asks/internal/dates"
	"github.com/example/resy-asks/internal/domain/reservation"
)

// YAML reads asks from a file of the form
//
//	asks:
//	  - days: 2022-05-10 - 2022-05-12
//	    times: "18:00 - 21:00"
//	    seats: 2
//	    venues: [Dante, Carbone]
type YAML struct {
	Path string

	log zerolog.Logger
	now func() time.Time
}

func NewYAML(path string, log zerolog.Logger) *YAML {
	return &YAML{Path: path, log: log, now: time.Now}
}

type yamlFile struct {
	Asks []yamlAsk `yaml:"asks"`
}

type yamlAsk struct {
	Days   string   `yaml:"days"`
	Times  string   `yaml:"times"`
	Seats  string   `yaml:"seats"`
	Venues []string `yaml:"venues"`
}

func (s *YAML) Load(context.Context) ([]reservation.Ask, error) {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open asks: %w", err)
	}
	return parseYAML(b, dates.Day(s.now()), s.log)
}

func parseYAML(b []byte, today time.Time, log zerolog.Logger) ([]reservation.Ask, error) {
	var f yamlFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("%w: asks yaml: %v", reservation.ErrFormat, err)
	}
	out := make([]reservation.Ask, 0, len(f.Asks))
	for i, y := range f.Asks {
		var venues []string
		for _, v := range y.Venues {
			venues = append(venues, splitVenues(v)...)
		}
		ask, err := parseFields(y.Days, y.Times, y.Seats, venues, today)
		if err != nil {
			log.Warn().Err(err).Int("index", i).Msg("skipping ask entry")
			continue
		}
		out = append(out, ask)
	}
	return out, nil
}
