package model

import "context"

// CartLine is one product-id/quantity pair in the shopping cart.
type CartLine struct {
	ProductID int64 `json:"id"`
	Quantity  int   `json:"quantity"`
}

// CartRepository is the durable store holding the serialized cart across sessions.
type CartRepository interface {
	// Load returns the previously stored lines, or an empty slice when nothing was stored.
	Load(ctx context.Context) ([]CartLine, error)

	// Save overwrites the stored cart with lines.
	Save(ctx context.Context, lines []CartLine) error
}

// CloneLines returns a copy of lines that never aliases the input.
func CloneLines(lines []CartLine) []CartLine {
	out := make([]CartLine, len(lines))
	copy(out, lines)
	return out
}
