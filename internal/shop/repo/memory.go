package repo

import (
	"context"
	"sync"

	"github.com/shopfront-core/server/internal/shop/model"
)

// MemoryCartRepository keeps the cart in process memory. Err, when set, fails every call.
type MemoryCartRepository struct {
	mu     sync.Mutex
	lines  []model.CartLine
	stored bool
	saves  int
	Err    error
}

func NewMemoryCartRepository(initial ...model.CartLine) *MemoryCartRepository {
	r := &MemoryCartRepository{}
	if len(initial) > 0 {
		r.lines = model.CloneLines(initial)
		r.stored = true
	}
	return r
}

func (r *MemoryCartRepository) Load(ctx context.Context) ([]model.CartLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	if !r.stored {
		return []model.CartLine{}, nil
	}
	return model.CloneLines(r.lines), nil
}

func (r *MemoryCartRepository) Save(ctx context.Context, lines []model.CartLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.lines = model.CloneLines(lines)
	r.stored = true
	r.saves++
	return nil
}

// Saves counts successful writes.
func (r *MemoryCartRepository) Saves() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

// SetErr switches failure injection on or off.
func (r *MemoryCartRepository) SetErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Err = err
}

var _ model.CartRepository = (*MemoryCartRepository)(nil)
