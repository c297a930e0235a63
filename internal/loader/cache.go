package loader

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dvloznov/sales-dashboard/internal/domain"
	"github.com/dvloznov/sales-dashboard/internal/filter"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// LoadTimeout bounds a single read of a named source.
const LoadTimeout = 2 * time.Minute

// Entry is a loaded dataset together with the filter options computed for it.
// Entries are immutable once stored.
type Entry struct {
	ID       string         `json:"id"`
	Source   string         `json:"source"`
	Rows     int            `json:"rows"`
	Dropped  int            `json:"dropped"`
	LoadedAt time.Time      `json:"loaded_at"`
	Options  filter.Options `json:"options"`
	Table    *domain.Table  `json:"-"`
}

// Cache memoizes loaded tables by source identity for the process lifetime.
// Nothing is evicted. Concurrent loads of the same source share one read and
// failed loads are not stored.
type Cache struct {
	mu       sync.RWMutex
	entries  map[string]*Entry
	group    singleflight.Group
	resolver *Resolver
	log      zerolog.Logger
}

// NewCache creates an empty cache that opens sources through resolver.
func NewCache(resolver *Resolver, log zerolog.Logger) *Cache {
	if resolver == nil {
		resolver = &Resolver{}
	}
	return &Cache{
		entries:  make(map[string]*Entry),
		resolver: resolver,
		log:      log,
	}
}

// Load returns the dataset for a path, gs:// or bq:// source, reading it only
// the first time. The shared read is detached from ctx's cancellation, so one
// caller going away does not fail the others; it is bounded by LoadTimeout.
func (c *Cache) Load(ctx context.Context, source string) (*Entry, error) {
	id := SourceID(source)
	return c.load(id, func() (*domain.Table, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), LoadTimeout)
		defer cancel()
		return c.resolver.Open(loadCtx, source)
	}, source)
}

// LoadBytes returns the dataset for uploaded content, keyed by its hash.
func (c *Cache) LoadBytes(name string, data []byte) (*Entry, error) {
	id := ContentID(data)
	return c.load(id, func() (*domain.Table, error) {
		return Parse(bytes.NewReader(data))
	}, name)
}

// Get returns a previously loaded dataset by id.
func (c *Cache) Get(id string) (*Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[id]
	if !ok {
		return nil, fmt.Errorf("Get: %w: %s", ErrUnknownDataset, id)
	}
	return entry, nil
}

// List returns every loaded dataset ordered by load time.
func (c *Cache) List() []*Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*Entry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LoadedAt.Equal(out[j].LoadedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].LoadedAt.Before(out[j].LoadedAt)
	})
	return out
}

func (c *Cache) lookup(id string) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[id]
	return e, ok
}

func (c *Cache) load(id string, open func() (*domain.Table, error), source string) (*Entry, error) {
	if e, ok := c.lookup(id); ok {
		return e, nil
	}

	v, err, _ := c.group.Do(id, func() (interface{}, error) {
		if e, ok := c.lookup(id); ok {
			return e, nil
		}

		start := time.Now()
		table, err := open()
		if err != nil {
			return nil, err
		}

		entry := &Entry{
			ID:       id,
			Source:   source,
			Rows:     table.Len(),
			Dropped:  table.Dropped,
			LoadedAt: time.Now(),
			Options:  filter.OptionsOf(table),
			Table:    table,
		}

		c.mu.Lock()
		c.entries[id] = entry
		c.mu.Unlock()

		c.log.Info().
			Str("dataset_id", id).
			Str("source", source).
			Int("rows", entry.Rows).
			Int("dropped", entry.Dropped).
			Dur("duration", time.Since(start)).
			Msg("Dataset loaded")

		return entry, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Entry), nil
}
