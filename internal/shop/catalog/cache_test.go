package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/shopfront-core/server/internal/core/error"
	"github.com/shopfront-core/server/internal/shop/model"
	"github.com/shopfront-core/server/internal/shop/shoptest"
)

func ids(products []model.Product) []int64 {
	out := make([]int64, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestFetchReplacesContent(t *testing.T) {
	svc := shoptest.NewCatalog(
		shoptest.Product(3, "1.00", 4),
		shoptest.Product(1, "2.00", 1),
	)
	c := New(svc)
	assert.False(t, c.Loaded())

	require.NoError(t, c.Fetch(context.Background(), nil))
	assert.True(t, c.Loaded())
	assert.Equal(t, []int64{3, 1}, ids(c.Products()))

	svc.SetProducts(shoptest.Product(7, "5.00", 2))
	require.NoError(t, c.Fetch(context.Background(), nil))
	assert.Equal(t, []int64{7}, ids(c.Products()))
	_, ok := c.Lookup(3)
	assert.False(t, ok, "fetch must replace, not merge")
}

func TestFetchFailureKeepsContentAndReports(t *testing.T) {
	svc := shoptest.NewCatalog(shoptest.Product(1, "2.00", 1))
	var reported []error
	c := New(svc, WithErrorReporter(func(err error) { reported = append(reported, err) }))
	require.NoError(t, c.Fetch(context.Background(), nil))

	svc.Err = shoptest.ErrUnavailable
	err := c.Fetch(context.Background(), []int64{2})
	require.Error(t, err)
	assert.Equal(t, errx.KindFetchFailure, errx.KindOf(err))
	assert.ErrorIs(t, err, shoptest.ErrUnavailable)
	require.Len(t, reported, 1)
	assert.True(t, c.Loaded())
	assert.Equal(t, []int64{1}, ids(c.Products()))
}

func TestFetchFailureOnColdCacheStillMarksLoaded(t *testing.T) {
	svc := shoptest.NewCatalog()
	svc.Err = shoptest.ErrUnavailable
	c := New(svc)
	require.Error(t, c.Fetch(context.Background(), nil))
	assert.True(t, c.Loaded())
	assert.Zero(t, c.Len())
}

func TestLookupReturnsIndependentCopy(t *testing.T) {
	c := New(shoptest.NewCatalog(shoptest.Product(1, "2.00", 3, "Anime")))
	require.NoError(t, c.Fetch(context.Background(), nil))

	p, ok := c.Lookup(1)
	require.True(t, ok)
	*p.Quantity = 99
	p.Categories[0] = "changed"

	again, _ := c.Lookup(1)
	assert.Equal(t, 3, *again.Quantity)
	assert.Equal(t, []string{"Anime"}, again.Categories)
}

func TestGetNotFound(t *testing.T) {
	c := New(shoptest.NewCatalog())
	_, err := c.Get(42)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errx.ErrNotFound))
	assert.Equal(t, errx.KindNotFound, errx.KindOf(err))
}

func TestAllStopsEarly(t *testing.T) {
	c := New(shoptest.NewCatalog(
		shoptest.Product(1, "1.00", 1),
		shoptest.Product(2, "1.00", 1),
		shoptest.Product(3, "1.00", 1),
	))
	require.NoError(t, c.Fetch(context.Background(), nil))
	var seen []int64
	for p := range c.All() {
		seen = append(seen, p.ID)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []int64{1, 2}, seen)
}

func TestLowStock(t *testing.T) {
	noStock := shoptest.Product(3, "1.00", 0)
	noStock.Quantity = nil
	c := New(shoptest.NewCatalog(
		shoptest.Product(1, "1.00", 5), // at threshold
		shoptest.Product(2, "1.00", 6),
		noStock,
	))
	require.NoError(t, c.Fetch(context.Background(), nil))
	assert.Equal(t, []int64{1}, ids(c.LowStock()))
}

func TestRefreshHooksRunAfterFetchAndMutations(t *testing.T) {
	svc := shoptest.NewCatalog(shoptest.Product(1, "1.00", 5))
	c := New(svc)
	calls := 0
	c.OnRefresh(func() {
		calls++
		// Hooks run outside the lock and may read the cache.
		_, _ = c.Lookup(1)
	})

	ctx := context.Background()
	require.NoError(t, c.Fetch(ctx, nil))
	require.NoError(t, c.Restock(ctx, 1, 2))
	require.NoError(t, c.Delete(ctx, 1))
	assert.Equal(t, 3, calls)

	svc.Err = shoptest.ErrUnavailable
	_ = c.Fetch(ctx, nil)
	assert.Equal(t, 3, calls, "failed fetch must not trigger reconciliation")
}

func TestCreateAppendsServerRepresentation(t *testing.T) {
	svc := shoptest.NewCatalog(shoptest.Product(1, "1.00", 5))
	c := New(svc)
	ctx := context.Background()
	require.NoError(t, c.Fetch(ctx, nil))

	name := "Poster"
	price := decimal.RequireFromString("12.50")
	qty := 4
	p, err := c.Create(ctx, model.ProductInput{Name: &name, Price: &price, Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, p.ID}, ids(c.Products()))

	got, ok := c.Lookup(p.ID)
	require.True(t, ok)
	assert.Equal(t, "Poster", got.Name)
	assert.True(t, price.Equal(got.Price))
}

func TestUpdateReplacesSingleEntry(t *testing.T) {
	svc := shoptest.NewCatalog(shoptest.Product(1, "1.00", 5), shoptest.Product(2, "3.00", 5))
	c := New(svc)
	ctx := context.Background()
	require.NoError(t, c.Fetch(ctx, nil))

	qty := 9
	_, err := c.Update(ctx, 2, model.ProductInput{Quantity: &qty})
	require.NoError(t, err)

	got, _ := c.Lookup(2)
	assert.Equal(t, 9, *got.Quantity)
	assert.Equal(t, []string{"list", "update"}, svc.Calls(), "update must not refetch")
}

func TestUpdateOfUncachedProductLeavesCacheAlone(t *testing.T) {
	svc := shoptest.NewCatalog(shoptest.Product(1, "1.00", 5), shoptest.Product(2, "3.00", 5))
	svc.ListFunc = func(context.Context, []int64) ([]model.Product, error) {
		return []model.Product{shoptest.Product(1, "1.00", 5)}, nil
	}
	c := New(svc)
	ctx := context.Background()
	require.NoError(t, c.Fetch(ctx, []int64{1}))

	qty := 1
	_, err := c.Update(ctx, 2, model.ProductInput{Quantity: &qty})
	require.NoError(t, err)
	_, ok := c.Lookup(2)
	assert.False(t, ok)
}

func TestUploadImage(t *testing.T) {
	svc := shoptest.NewCatalog(shoptest.Product(1, "1.00", 5))
	c := New(svc)
	ctx := context.Background()
	require.NoError(t, c.Fetch(ctx, nil))

	_, err := c.UploadImage(ctx, 1, model.ImageUpload{Filename: "a.png", Content: []byte("abc")})
	require.NoError(t, err)
	got, _ := c.Lookup(1)
	assert.Equal(t, "data:image/png;base64,abc", got.Image)
}

func TestMutationFailureKeepsLastKnownGoodState(t *testing.T) {
	svc := shoptest.NewCatalog(shoptest.Product(1, "1.00", 5))
	c := New(svc)
	ctx := context.Background()
	require.NoError(t, c.Fetch(ctx, nil))
	svc.Err = shoptest.ErrUnavailable

	qty := 1
	_, err := c.Update(ctx, 1, model.ProductInput{Quantity: &qty})
	assert.ErrorIs(t, err, shoptest.ErrUnavailable)
	assert.ErrorIs(t, c.Delete(ctx, 1), shoptest.ErrUnavailable)
	assert.ErrorIs(t, c.Restock(ctx, 1, 10), shoptest.ErrUnavailable)

	got, ok := c.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, 5, *got.Quantity)
}

func TestRestockIsOptimisticUntilNextFetch(t *testing.T) {
	svc := shoptest.NewCatalog(shoptest.Product(4, "1.00", 5))
	c := New(svc)
	ctx := context.Background()
	require.NoError(t, c.Fetch(ctx, nil))

	require.NoError(t, c.Restock(ctx, 4, 10))
	got, _ := c.Lookup(4)
	assert.Equal(t, 15, *got.Quantity)
	assert.Equal(t, 10, svc.Restocks[4])

	// The fake server never applied the restock: the next fetch wins.
	require.NoError(t, c.Fetch(ctx, nil))
	got, _ = c.Lookup(4)
	assert.Equal(t, 5, *got.Quantity)
}

func TestRestockWithoutStockDataStaysInvalid(t *testing.T) {
	p := shoptest.Product(4, "1.00", 0)
	p.Quantity = nil
	c := New(shoptest.NewCatalog(p))
	ctx := context.Background()
	require.NoError(t, c.Fetch(ctx, nil))
	require.NoError(t, c.Restock(ctx, 4, 3))
	got, _ := c.Lookup(4)
	_, ok := got.Available()
	assert.False(t, ok)
}

func TestNegativeRestockFloorsAtZero(t *testing.T) {
	c := New(shoptest.NewCatalog(shoptest.Product(4, "1.00", 3)))
	ctx := context.Background()
	require.NoError(t, c.Fetch(ctx, nil))

	require.NoError(t, c.Restock(ctx, 4, -10))
	got, _ := c.Lookup(4)
	q, ok := got.Available()
	assert.True(t, ok)
	assert.Zero(t, q)
}

func TestStock(t *testing.T) {
	noData := shoptest.Product(2, "1.00", 0)
	noData.Quantity = nil
	c := New(shoptest.NewCatalog(shoptest.Product(1, "1.00", 7), noData))
	require.NoError(t, c.Fetch(context.Background(), nil))

	q, err := c.Stock(1)
	require.NoError(t, err)
	assert.Equal(t, 7, q)

	_, err = c.Stock(2)
	assert.Equal(t, errx.KindInvalidQuantity, errx.KindOf(err))
	assert.ErrorIs(t, err, errx.ErrInvalidQuantity)

	_, err = c.Stock(9)
	assert.Equal(t, errx.KindNotFound, errx.KindOf(err))
}
