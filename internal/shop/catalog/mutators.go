package catalog

import (
	"context"
	"slices"

	"github.com/shopfront-core/server/internal/shop/model"
	logx "github.com/shopfront-core/server/pkg/logger"
)

func (c *Cache) observe(op string, id int64, err error) {
	c.recorder.ObserveMutation(op, err == nil)
	if err != nil {
		logx.Error().Err(err).Str("op", op).Int64("product_id", id).Msg("catalog mutation failed")
	}
}

// Create adds a product remotely and appends the server's representation to the cache.
func (c *Cache) Create(ctx context.Context, in model.ProductInput) (model.Product, error) {
	p, err := c.svc.CreateProduct(ctx, in)
	c.observe(OpCreate, 0, err)
	if err != nil {
		return model.Product{}, err
	}
	c.mu.Lock()
	if _, ok := c.products[p.ID]; !ok {
		c.order = append(c.order, p.ID)
	}
	c.products[p.ID] = p.Clone()
	c.mu.Unlock()
	c.notify()
	return p, nil
}

// Update patches a product remotely and replaces its cached entry with the answer.
func (c *Cache) Update(ctx context.Context, id int64, in model.ProductInput) (model.Product, error) {
	p, err := c.svc.UpdateProduct(ctx, id, in)
	c.observe(OpUpdate, id, err)
	if err != nil {
		return model.Product{}, err
	}
	c.replace(p)
	return p, nil
}

// UploadImage sends a new product image and replaces the cached entry with the answer.
func (c *Cache) UploadImage(ctx context.Context, id int64, img model.ImageUpload) (model.Product, error) {
	p, err := c.svc.UploadImage(ctx, id, img)
	c.observe(OpImage, id, err)
	if err != nil {
		return model.Product{}, err
	}
	c.replace(p)
	return p, nil
}

// replace swaps an existing entry. Products outside the current filter stay uncached.
func (c *Cache) replace(p model.Product) {
	c.mu.Lock()
	_, ok := c.products[p.ID]
	if ok {
		c.products[p.ID] = p.Clone()
	}
	c.mu.Unlock()
	if ok {
		c.notify()
	}
}

// Delete removes a product remotely, then from the cache.
func (c *Cache) Delete(ctx context.Context, id int64) error {
	err := c.svc.DeleteProduct(ctx, id)
	c.observe(OpDelete, id, err)
	if err != nil {
		return err
	}
	c.mu.Lock()
	_, ok := c.products[id]
	if ok {
		delete(c.products, id)
		c.order = slices.DeleteFunc(c.order, func(v int64) bool { return v == id })
	}
	c.mu.Unlock()
	if ok {
		c.notify()
	}
	return nil
}

// Restock adds delta units remotely and optimistically bumps the cached quantity.
// The local value may drift from the server total until the next applied Fetch; it never
// drops below zero.
func (c *Cache) Restock(ctx context.Context, id int64, delta int) error {
	err := c.svc.RestockProduct(ctx, id, delta)
	c.observe(OpRestock, id, err)
	if err != nil {
		return err
	}
	c.mu.Lock()
	p, ok := c.products[id]
	changed := ok && p.Quantity != nil
	if changed {
		q := max(*p.Quantity+delta, 0)
		p.Quantity = &q
		c.products[id] = p
	}
	c.mu.Unlock()
	if changed {
		logx.Debug().Int64("product_id", id).Int("delta", delta).Msg("applied optimistic restock")
		c.notify()
	}
	return nil
}
