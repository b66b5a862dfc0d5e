// Package cart keeps the shopping cart consistent with cached stock levels and with
// the persistent cart repository.
package cart

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	errx "github.com/shopfront-core/server/internal/core/error"
	"github.com/shopfront-core/server/internal/shop/model"
	"github.com/shopfront-core/server/internal/shop/observers"
	logx "github.com/shopfront-core/server/pkg/logger"
)

// Catalog is the read side of the catalog cache the reconciler clamps against.
type Catalog interface {
	Lookup(id int64) (model.Product, bool)
	Stock(id int64) (int, error)
}

type Option func(*Reconciler)

// WithRecorder sets the metrics sink.
func WithRecorder(r observers.Recorder) Option {
	return func(rc *Reconciler) {
		if r != nil {
			rc.recorder = r
		}
	}
}

// WithPersistTimeout bounds each background write to the repository.
func WithPersistTimeout(d time.Duration) Option {
	return func(rc *Reconciler) {
		rc.persistTimeout = d
	}
}

// Reconciler owns the cart lines. It never lets a line exceed the cached stock of its
// product and it is the only writer of the persisted cart.
//
// Until Init has read the repository once the reconciler is uninitialized: mutations
// apply in memory only, and the loaded lines replace them when Init succeeds.
type Reconciler struct {
	catalog        Catalog
	recorder       observers.Recorder
	persistTimeout time.Duration
	writer         *persister

	mu    sync.Mutex
	lines []model.CartLine
	ready bool
}

func New(catalog Catalog, repo model.CartRepository, opts ...Option) *Reconciler {
	rc := &Reconciler{
		catalog:        catalog,
		recorder:       observers.NopRecorder{},
		persistTimeout: 3 * time.Second,
		lines:          []model.CartLine{},
	}
	for _, opt := range opts {
		opt(rc)
	}
	rc.writer = newPersister(repo, rc.persistTimeout, rc.recorder)
	return rc
}

// Init loads the persisted cart and moves the reconciler to ready.
// Only the first successful call has an effect; a failed load leaves it uninitialized.
func (rc *Reconciler) Init(ctx context.Context) error {
	rc.mu.Lock()
	if rc.ready {
		rc.mu.Unlock()
		return nil
	}
	rc.mu.Unlock()

	stored, err := rc.writer.repo.Load(ctx)
	if err != nil {
		logx.Error().Err(err).Msg("failed to load persisted cart")
		return err
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.ready {
		return nil
	}
	rc.lines = sanitize(stored)
	rc.ready = true
	rc.recorder.SetCartQuantity(rc.quantityLocked())
	logx.Info().Int("lines", len(rc.lines)).Msg("cart restored")
	return nil
}

// sanitize drops stored lines that could never satisfy the quantity invariant and
// merges duplicates.
func sanitize(stored []model.CartLine) []model.CartLine {
	out := make([]model.CartLine, 0, len(stored))
	for _, l := range stored {
		if l.Quantity < 1 {
			continue
		}
		if i := slices.IndexFunc(out, func(o model.CartLine) bool { return o.ProductID == l.ProductID }); i >= 0 {
			out[i].Quantity += l.Quantity
			continue
		}
		out = append(out, l)
	}
	return out
}

// Ready reports whether the persisted cart has been loaded.
func (rc *Reconciler) Ready() bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.ready
}

// Lines returns a snapshot of the cart.
func (rc *Reconciler) Lines() []model.CartLine {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return model.CloneLines(rc.lines)
}

func (rc *Reconciler) index(id int64) int {
	return slices.IndexFunc(rc.lines, func(l model.CartLine) bool { return l.ProductID == id })
}

// stock resolves the usable stock level of id from the catalog.
func (rc *Reconciler) stock(id int64) (int, bool) {
	q, err := rc.catalog.Stock(id)
	if err != nil {
		logx.Debug().Err(err).
			Int64("product_id", id).
			Str("kind", string(errx.KindOf(err))).
			Msg("cart ignores product")
		return 0, false
	}
	return q, true
}

// AddToCart adds quantity units of productID, clamped to the cached stock.
// Unknown products and products without stock data are ignored.
func (rc *Reconciler) AddToCart(productID int64, quantity int) {
	available, ok := rc.stock(productID)
	if !ok {
		return
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()
	if i := rc.index(productID); i >= 0 {
		next := min(rc.lines[i].Quantity+quantity, available)
		if next < 1 {
			rc.lines = slices.Delete(rc.lines, i, i+1)
		} else {
			rc.lines[i].Quantity = next
		}
		rc.commitLocked()
		return
	}

	next := min(quantity, available)
	if next <= 0 {
		return
	}
	rc.lines = append(rc.lines, model.CartLine{ProductID: productID, Quantity: next})
	rc.commitLocked()
}

// UpdateQuantity moves an existing line by delta without going below one unit or above
// the cached stock. Use RemoveItem to drop a line.
func (rc *Reconciler) UpdateQuantity(productID int64, delta int) {
	available, ok := rc.stock(productID)
	if !ok {
		return
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()
	i := rc.index(productID)
	if i < 0 {
		return
	}
	next := min(max(1, rc.lines[i].Quantity+delta), available)
	if next < 1 {
		// Stock ran out since the line was added.
		rc.lines = slices.Delete(rc.lines, i, i+1)
	} else {
		rc.lines[i].Quantity = next
	}
	rc.commitLocked()
}

// RemoveItem deletes the line for productID if present.
func (rc *Reconciler) RemoveItem(productID int64) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	i := rc.index(productID)
	if i < 0 {
		return
	}
	rc.lines = slices.Delete(rc.lines, i, i+1)
	rc.commitLocked()
}

// ClearCart empties the cart.
func (rc *Reconciler) ClearCart() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.lines = []model.CartLine{}
	rc.commitLocked()
}

// Reconcile clamps every resolvable line to the current cached stock. Lines whose product
// ran out are dropped; lines whose product is not cached are left untouched.
func (rc *Reconciler) Reconcile() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	changed := false
	kept := rc.lines[:0]
	for _, l := range rc.lines {
		available, ok := rc.stock(l.ProductID)
		if ok && l.Quantity > available {
			changed = true
			if available < 1 {
				logx.Info().Int64("product_id", l.ProductID).Msg("removing cart line: out of stock")
				continue
			}
			logx.Info().
				Int64("product_id", l.ProductID).
				Int("from", l.Quantity).
				Int("to", available).
				Msg("clamping cart line to stock")
			l.Quantity = available
		}
		kept = append(kept, l)
	}
	rc.lines = kept
	if changed {
		rc.commitLocked()
	}
}

// commitLocked persists the current lines once the reconciler is ready.
func (rc *Reconciler) commitLocked() {
	rc.recorder.SetCartQuantity(rc.quantityLocked())
	if !rc.ready {
		return
	}
	rc.writer.save(model.CloneLines(rc.lines))
}

// CartAmount is the sum of price*quantity over resolvable lines, rounded to two places.
func (rc *Reconciler) CartAmount() decimal.Decimal {
	rc.mu.Lock()
	lines := model.CloneLines(rc.lines)
	rc.mu.Unlock()

	total := decimal.Zero
	for _, l := range lines {
		p, ok := rc.catalog.Lookup(l.ProductID)
		if !ok {
			continue
		}
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total.Round(2)
}

// CartQuantity is the sum of line quantities, or 0 before Init.
func (rc *Reconciler) CartQuantity() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if !rc.ready {
		return 0
	}
	return rc.quantityLocked()
}

func (rc *Reconciler) quantityLocked() int {
	n := 0
	for _, l := range rc.lines {
		n += l.Quantity
	}
	return n
}

// Flush waits until queued cart writes have reached the repository.
func (rc *Reconciler) Flush(ctx context.Context) error {
	return rc.writer.wait(ctx)
}

// Close flushes pending writes and stops the background writer.
func (rc *Reconciler) Close(ctx context.Context) error {
	return rc.writer.close(ctx)
}
