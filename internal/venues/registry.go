// Package venues caches venue-name to platform-id resolutions.
package venues

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/example/resy-asks/internal/domain/reservation"
	"github.com/example/resy-asks/internal/metrics"
)

const cachePrefix = "resyasks:venue:"

// Registry maps venue names to platform ids. Entries are written once on first
// successful resolution and never change afterwards; failures are not recorded.
// Resolution is serialized so a name is looked up by at most one caller at a time.
type Registry struct {
	lookup reservation.VenueLookup
	log    zerolog.Logger

	*table
}

// table is the state shared by a registry and all of its WithLookup views.
type table struct {
	resolveMu sync.Mutex

	mu    sync.RWMutex
	ids   map[string]string
	names map[string]string

	redis    *redis.Client
	cacheTTL time.Duration
}

func NewRegistry(lookup reservation.VenueLookup, log zerolog.Logger) *Registry {
	return &Registry{
		lookup: lookup,
		log:    log.With().Str("component", "venues").Logger(),
		table: &table{
			ids:   make(map[string]string),
			names: make(map[string]string),
		},
	}
}

// WithLookup returns a view that resolves unknown names through lookup
// (e.g. a client carrying one context's credentials) while sharing entries,
// locks and the Redis tier with r.
func (r *Registry) WithLookup(lookup reservation.VenueLookup) *Registry {
	return &Registry{lookup: lookup, log: r.log, table: r.table}
}

// UseRedisCache shares resolutions across processes. A ttl of zero keeps keys forever.
func (r *Registry) UseRedisCache(rdb *redis.Client, ttl time.Duration) {
	r.redis = rdb
	r.cacheTTL = ttl
}

// Seed records known resolutions without a lookup.
func (r *Registry) Seed(known map[string]string) {
	for name, id := range known {
		r.store(name, id)
	}
}

// ID returns the cached id for name.
func (r *Registry) ID(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.ids[name]
	return id, ok
}

// DisplayName returns the registered name for id, or id itself.
func (r *Registry) DisplayName(id string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if n, ok := r.names[id]; ok {
		return n
	}
	return id
}

// Names lists resolved venue names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.ids))
	for n := range r.ids {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Resolve ensures every name has been looked up once. Names that cannot be
// resolved are logged and left absent so a later call retries them.
func (r *Registry) Resolve(ctx context.Context, names []string) {
	for _, name := range names {
		if _, ok := r.ID(name); ok {
			continue
		}
		id, err := r.ResolveOne(ctx, name)
		if err != nil {
			r.log.Warn().Err(err).Str("venue", name).Msg("failed to resolve venue")
			continue
		}
		r.log.Info().Str("venue", name).Str("venue_id", id).Msg("resolved venue")
	}
}

// ResolveOne returns the id for name, consulting memory, then Redis, then the lookup.
func (r *Registry) ResolveOne(ctx context.Context, name string) (string, error) {
	if id, ok := r.ID(name); ok {
		return id, nil
	}

	r.resolveMu.Lock()
	defer r.resolveMu.Unlock()

	if id, ok := r.ID(name); ok {
		return id, nil
	}
	if id, ok := r.readCache(ctx, name); ok {
		r.store(name, id)
		return id, nil
	}
	if r.lookup == nil {
		return "", fmt.Errorf("%w: %s: no lookup configured", reservation.ErrVenueUnresolved, name)
	}
	id, err := r.lookup.ResolveVenueID(ctx, name)
	if err != nil {
		metrics.IncVenueResolution("failed")
		if errors.Is(err, reservation.ErrVenueUnresolved) {
			return "", err
		}
		return "", fmt.Errorf("%w: %s: %v", reservation.ErrVenueUnresolved, name, err)
	}
	if id == "" {
		metrics.IncVenueResolution("failed")
		return "", fmt.Errorf("%w: %s", reservation.ErrVenueUnresolved, name)
	}
	metrics.IncVenueResolution("resolved")
	r.store(name, id)
	r.writeCache(ctx, name, id)
	return id, nil
}

func (r *Registry) store(name, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ids[name]; ok {
		return
	}
	r.ids[name] = id
	if _, ok := r.names[id]; !ok {
		r.names[id] = name
	}
}

func (r *Registry) readCache(ctx context.Context, name string) (string, bool) {
	if r.redis == nil {
		return "", false
	}
	id, err := r.redis.Get(ctx, cachePrefix+name).Result()
	if err != nil || id == "" {
		return "", false
	}
	return id, true
}

func (r *Registry) writeCache(ctx context.Context, name, id string) {
	if r.redis == nil {
		return
	}
	if err := r.redis.Set(ctx, cachePrefix+name, id, r.cacheTTL).Err(); err != nil {
		r.log.Debug().Err(err).Str("venue", name).Msg("venue cache write failed")
	}
}
