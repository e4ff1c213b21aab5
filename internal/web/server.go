// Package web serves health, metrics and pass history over HTTP.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/example/resy-asks/internal/contexts"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type PassHistory interface {
	RecentPasses(ctx context.Context, name string, limit int) ([]contexts.PassRun, error)
}

// Server wires the HTTP routes. DB and Passes are optional; without a
// database readiness always succeeds and pass history is not served.
type Server struct {
	DB     Pinger
	Passes PassHistory
	Log    zerolog.Logger
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.HandleFunc("/readyz", s.handleReady)
	mux.Handle("/metrics", promhttp.Handler())
	if s.Passes != nil {
		mux.HandleFunc("/passes", s.handlePasses)
	}
	return mux
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.DB != nil {
		if err := s.DB.Ping(r.Context()); err != nil {
			s.Log.Warn().Err(err).Msg("readiness check failed")
			http.Error(w, "db unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready\n"))
}

type passJSON struct {
	RunID         string    `json:"run_id"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
	Asks          int       `json:"asks"`
	Invalid       int       `json:"invalid"`
	Expired       int       `json:"expired"`
	Satisfied     int       `json:"satisfied"`
	Booked        int       `json:"booked"`
	BookingFailed int       `json:"booking_failed"`
	NoMatch       int       `json:"no_match"`
	FetchFailed   int       `json:"fetch_failed"`
	Error         *string   `json:"error,omitempty"`
}

func (s *Server) handlePasses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	name := r.URL.Query().Get("context")
	if name == "" {
		http.Error(w, "context is required", http.StatusBadRequest)
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			http.Error(w, "limit must be between 1 and 500", http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := s.Passes.RecentPasses(r.Context(), name, limit)
	if err != nil {
		s.Log.Error().Err(err).Str("context", name).Msg("loading pass history failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	out := make([]passJSON, 0, len(runs))
	for _, p := range runs {
		out = append(out, passJSON{
			RunID:         p.RunID.String(),
			StartedAt:     p.StartedAt,
			FinishedAt:    p.FinishedAt,
			Asks:          p.Asks,
			Invalid:       p.Invalid,
			Expired:       p.Expired,
			Satisfied:     p.Satisfied,
			Booked:        p.Booked,
			BookingFailed: p.BookingFailed,
			NoMatch:       p.NoMatch,
			FetchFailed:   p.FetchFailed,
			Error:         p.Error,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// Start serves h on addr until ctx is cancelled.
func Start(ctx context.Context, addr string, h http.Handler, log zerolog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Info().Str("addr", addr).Msg("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
