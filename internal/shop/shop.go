// Package shop wires the catalog cache, the cart reconciler and the category filter
// into the storefront data layer.
package shop

import (
	"context"
	"errors"
	"time"

	"github.com/shopfront-core/server/internal/shop/cart"
	"github.com/shopfront-core/server/internal/shop/catalog"
	"github.com/shopfront-core/server/internal/shop/category"
	"github.com/shopfront-core/server/internal/shop/model"
	"github.com/shopfront-core/server/internal/shop/observers"
	logx "github.com/shopfront-core/server/pkg/logger"
)

const defaultErrorBuffer = 16

// Config holds everything needed to assemble a Shop.
type Config struct {
	Catalog        model.CatalogService
	CartRepo       model.CartRepository
	Recorder       observers.Recorder
	SequencedFetch bool
	PersistTimeout time.Duration
	ErrorBuffer    int
}

// Shop is the storefront data layer: catalog mirror, cart and category selection.
type Shop struct {
	catalog *catalog.Cache
	cart    *cart.Reconciler
	filter  *category.Filter
	errs    chan error
}

func New(cfg Config) (*Shop, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("catalog service is required")
	}
	if cfg.CartRepo == nil {
		return nil, errors.New("cart repository is required")
	}
	if cfg.Recorder == nil {
		cfg.Recorder = observers.NopRecorder{}
	}
	if cfg.ErrorBuffer <= 0 {
		cfg.ErrorBuffer = defaultErrorBuffer
	}

	s := &Shop{errs: make(chan error, cfg.ErrorBuffer)}
	s.catalog = catalog.New(cfg.Catalog,
		catalog.WithRecorder(cfg.Recorder),
		catalog.WithSequencedFetch(cfg.SequencedFetch),
		catalog.WithErrorReporter(s.reportError),
	)

	cartOpts := []cart.Option{cart.WithRecorder(cfg.Recorder)}
	if cfg.PersistTimeout > 0 {
		cartOpts = append(cartOpts, cart.WithPersistTimeout(cfg.PersistTimeout))
	}
	s.cart = cart.New(s.catalog, cfg.CartRepo, cartOpts...)
	s.filter = category.NewFilter(s.catalog)

	// Every catalog change re-validates the cart against the new stock levels.
	s.catalog.OnRefresh(s.cart.Reconcile)
	return s, nil
}

// reportError forwards an absorbed failure without ever blocking the caller.
func (s *Shop) reportError(err error) {
	select {
	case s.errs <- err:
	default:
		logx.Warn().Err(err).Msg("error channel full, dropping report")
	}
}

// Init restores the persisted cart, then loads the unfiltered catalog.
// A catalog failure is reported on Errors and does not fail Init. A cart store failure
// is returned after the catalog load: the cart keeps working in memory, unpersisted,
// and Init may be called again to restore it.
func (s *Shop) Init(ctx context.Context) error {
	cartErr := s.cart.Init(ctx)
	_ = s.filter.Refresh(ctx)
	return cartErr
}

// Errors delivers absorbed catalog fetch failures for display.
func (s *Shop) Errors() <-chan error {
	return s.errs
}

func (s *Shop) Catalog() *catalog.Cache {
	return s.catalog
}

func (s *Shop) Cart() *cart.Reconciler {
	return s.cart
}

func (s *Shop) Filter() *category.Filter {
	return s.filter
}

// Close flushes the cart to the repository and stops background work.
func (s *Shop) Close(ctx context.Context) error {
	return s.cart.Close(ctx)
}
