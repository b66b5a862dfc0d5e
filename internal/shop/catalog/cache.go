// Package catalog keeps the in-memory mirror of the remote product catalog.
package catalog

import (
	"context"
	"iter"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	errx "github.com/shopfront-core/server/internal/core/error"
	"github.com/shopfront-core/server/internal/shop/model"
	"github.com/shopfront-core/server/internal/shop/observers"
	logx "github.com/shopfront-core/server/pkg/logger"
)

const (
	OpCreate  = "create"
	OpUpdate  = "update"
	OpDelete  = "delete"
	OpImage   = "upload_image"
	OpRestock = "restock"
)

// Cache maps product id to the last snapshot returned by the catalog service.
//
// Fetch replaces the whole content; the mutators reconcile a single entry with the
// server's answer. Restock is the only speculative write: the delta is applied
// locally and the next applied Fetch overrides it with the authoritative level.
type Cache struct {
	svc       model.CatalogService
	recorder  observers.Recorder
	report    func(error)
	sequenced bool

	// issued is the id handed to the most recent Fetch call.
	issued atomic.Uint64

	mu       sync.RWMutex
	products map[int64]model.Product
	order    []int64
	loaded   bool
	applied  uint64
	hooks    []func()
}

type Option func(*Cache)

// WithRecorder sets the metrics sink.
func WithRecorder(r observers.Recorder) Option {
	return func(c *Cache) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithErrorReporter sets the channel fetch failures are forwarded to.
func WithErrorReporter(fn func(error)) Option {
	return func(c *Cache) {
		if fn != nil {
			c.report = fn
		}
	}
}

// WithSequencedFetch toggles the request-id guard. When enabled, a response older than
// the last applied one is discarded so the most recent request wins. When disabled the
// cache reflects whichever response resolves last.
func WithSequencedFetch(enabled bool) Option {
	return func(c *Cache) {
		c.sequenced = enabled
	}
}

func New(svc model.CatalogService, opts ...Option) *Cache {
	c := &Cache{
		svc:       svc,
		recorder:  observers.NopRecorder{},
		report:    func(error) {},
		sequenced: true,
		products:  make(map[int64]model.Product),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnRefresh registers fn to run after every change applied to the cache.
// Hooks run outside the cache lock.
func (c *Cache) OnRefresh(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, fn)
}

func (c *Cache) notify() {
	c.mu.RLock()
	hooks := slices.Clone(c.hooks)
	c.mu.RUnlock()
	for _, fn := range hooks {
		fn()
	}
}

// Fetch reads the catalog scoped by categoryIDs and replaces the cache content.
// On failure the previous content is kept, the cache is still marked loaded and the
// error is forwarded to the reporter before being returned.
func (c *Cache) Fetch(ctx context.Context, categoryIDs []int64) error {
	seq := c.issued.Add(1)
	fetchID := uuid.NewString()
	start := time.Now()

	logx.Debug().
		Str("fetch_id", fetchID).
		Uint64("request_seq", seq).
		Ints64("categories", categoryIDs).
		Msg("fetching catalog")

	products, err := c.svc.ListProducts(ctx, categoryIDs)
	elapsed := time.Since(start)
	if err != nil {
		ferr := errx.FetchFailed(err)
		c.mu.Lock()
		c.loaded = true
		c.mu.Unlock()
		c.recorder.ObserveFetch(false, 0, elapsed)
		logx.Error().Err(err).
			Str("fetch_id", fetchID).
			Uint64("request_seq", seq).
			Ints64("categories", categoryIDs).
			Msg("failed to fetch products")
		c.report(ferr)
		return ferr
	}

	c.mu.Lock()
	if c.sequenced && seq < c.applied {
		applied := c.applied
		c.mu.Unlock()
		c.recorder.IncStaleFetch()
		logx.Debug().
			Str("fetch_id", fetchID).
			Uint64("request_seq", seq).
			Uint64("applied_seq", applied).
			Msg("discarding superseded catalog response")
		return nil
	}
	next := make(map[int64]model.Product, len(products))
	order := make([]int64, 0, len(products))
	for _, p := range products {
		if _, dup := next[p.ID]; !dup {
			order = append(order, p.ID)
		}
		next[p.ID] = p.Clone()
	}
	c.products = next
	c.order = order
	c.applied = seq
	c.loaded = true
	c.mu.Unlock()

	c.recorder.ObserveFetch(true, len(order), elapsed)
	logx.Info().
		Str("fetch_id", fetchID).
		Uint64("request_seq", seq).
		Int("products", len(order)).
		Dur("elapsed", elapsed).
		Msg("catalog refreshed")
	c.notify()
	return nil
}

// Loaded reports whether at least one fetch has completed, successfully or not.
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Len returns the number of cached products.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// Lookup returns the cached snapshot for id.
func (c *Cache) Lookup(id int64) (model.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[id]
	if !ok {
		return model.Product{}, false
	}
	return p.Clone(), true
}

// Get is Lookup with a NotFound error for absent ids.
func (c *Cache) Get(id int64) (model.Product, error) {
	p, ok := c.Lookup(id)
	if !ok {
		return model.Product{}, errx.NotFound("product")
	}
	return p, nil
}

// Stock returns the usable stock level of id: NotFound when it is not cached,
// InvalidQuantity when the product carries no numeric stock data.
func (c *Cache) Stock(id int64) (int, error) {
	p, ok := c.Lookup(id)
	if !ok {
		return 0, errx.NotFound("product")
	}
	q, ok := p.Available()
	if !ok {
		return 0, errx.InvalidQuantity(id)
	}
	return q, nil
}

// All yields the cached products in the order the service returned them.
// Entries removed while iterating are skipped.
func (c *Cache) All() iter.Seq[model.Product] {
	return func(yield func(model.Product) bool) {
		c.mu.RLock()
		ids := slices.Clone(c.order)
		c.mu.RUnlock()
		for _, id := range ids {
			p, ok := c.Lookup(id)
			if !ok {
				continue
			}
			if !yield(p) {
				return
			}
		}
	}
}

// Products collects All into a slice.
func (c *Cache) Products() []model.Product {
	return slices.Collect(c.All())
}

// LowStock lists products whose stock is at or below their restock threshold.
func (c *Cache) LowStock() []model.Product {
	var out []model.Product
	for p := range c.All() {
		if p.NeedsRestock() {
			out = append(out, p)
		}
	}
	return out
}
