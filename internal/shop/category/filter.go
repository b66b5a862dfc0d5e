// Package category tracks the active category selection of the storefront.
package category

import (
	"context"
	"slices"
	"sync"
)

// Fetcher refreshes the catalog for a category selection.
type Fetcher interface {
	Fetch(ctx context.Context, categoryIDs []int64) error
}

// Filter holds the selected category ids. An empty selection means no filter.
type Filter struct {
	fetcher Fetcher

	mu       sync.RWMutex
	selected []int64
}

func NewFilter(fetcher Fetcher) *Filter {
	return &Filter{fetcher: fetcher, selected: []int64{}}
}

// SetSelection replaces the selection and refetches the catalog scoped to it.
// Calls are not coalesced: each one issues its own fetch.
func (f *Filter) SetSelection(ctx context.Context, ids []int64) error {
	norm := normalize(ids)
	f.mu.Lock()
	f.selected = norm
	f.mu.Unlock()
	return f.fetcher.Fetch(ctx, slices.Clone(norm))
}

// Selection returns the active category ids in ascending order.
func (f *Filter) Selection() []int64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.selected)
}

// Refresh refetches the catalog for the current selection.
func (f *Filter) Refresh(ctx context.Context) error {
	return f.fetcher.Fetch(ctx, f.Selection())
}

func normalize(ids []int64) []int64 {
	out := slices.Clone(ids)
	if out == nil {
		return []int64{}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
