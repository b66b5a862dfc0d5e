package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shopfront-core/server/internal/shop/model"
)

// envelope is the {"data": ...} wrapper every API response uses.
type envelope[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type productRows struct {
	Rows []productRecord `json:"rows"`
}

type categoryRecord struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type productRecord struct {
	ID             int64            `json:"id"`
	SKU            string           `json:"sku"`
	Name           string           `json:"name"`
	Price          decimal.Decimal  `json:"price"`
	Threshold      int              `json:"threshold"`
	Quantity       stockLevel       `json:"quantity"`
	Description    string           `json:"description"`
	Category       []categoryRecord `json:"category"`
	Image          string           `json:"image"`
	ImageExtension string           `json:"image_extension"`
}

// stockLevel accepts only JSON numbers; anything else decodes to "no stock data".
type stockLevel struct {
	value *int
}

func (s *stockLevel) UnmarshalJSON(b []byte) error {
	s.value = nil
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] == '"' || bytes.Equal(b, []byte("null")) {
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return nil
	}
	v, err := n.Int64()
	if err != nil {
		f, ferr := n.Float64()
		if ferr != nil || f != float64(int64(f)) {
			return nil
		}
		v = int64(f)
	}
	q := int(v)
	s.value = &q
	return nil
}

func (r productRecord) toModel() model.Product {
	cats := make([]string, 0, len(r.Category))
	for _, c := range r.Category {
		cats = append(cats, c.Name)
	}
	p := model.Product{
		ID:          r.ID,
		SKU:         r.SKU,
		Name:        r.Name,
		Price:       r.Price,
		Quantity:    r.Quantity.value,
		Threshold:   r.Threshold,
		Description: r.Description,
		Categories:  cats,
	}
	if r.Image != "" {
		p.Image = fmt.Sprintf("data:image/%s;base64,%s", r.ImageExtension, r.Image)
	}
	return p
}

type restockRequest struct {
	Quantity int `json:"quantity"`
}

type loginResponse struct {
	Token string `json:"token"`
}
