package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
	"github.com/shopspring/decimal"
)

// ===================================
// Cart Tools
// ===================================

type CartLineView struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price,omitempty"`
	Subtotal  string `json:"subtotal,omitempty"`
	Available bool   `json:"available"`
}

type CartView struct {
	Lines    []CartLineView `json:"lines"`
	Quantity int            `json:"quantity"`
	Amount   string         `json:"amount"`
}

type AddToCartInput struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity,omitempty"`
}

type UpdateCartQuantityInput struct {
	ProductID int64 `json:"product_id"`
	Delta     int   `json:"delta"`
}

type RemoveFromCartInput struct {
	ProductID int64 `json:"product_id"`
}

type ViewCartInput struct{}

func viewCart(catalog Catalog, cart Cart) *CartView {
	view := &CartView{
		Lines:    []CartLineView{},
		Quantity: cart.CartQuantity(),
		Amount:   cart.CartAmount().StringFixed(2),
	}
	for _, l := range cart.Lines() {
		lv := CartLineView{ProductID: l.ProductID, Quantity: l.Quantity}
		if p, ok := catalog.Lookup(l.ProductID); ok {
			lv.Name = p.Name
			lv.UnitPrice = p.Price.StringFixed(2)
			lv.Subtotal = p.Price.Mul(decimal.NewFromInt(int64(l.Quantity))).StringFixed(2)
			lv.Available = true
		}
		view.Lines = append(view.Lines, lv)
	}
	return view
}

var productIDParam = &schema.ParameterInfo{
	Type:     "integer",
	Desc:     "Product id obtained from search_product results.",
	Required: true,
}

func createAddToCartTool(catalog Catalog, cart Cart) tool.InvokableTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: "add_to_cart",
			Desc: "Add units of a product to the shopping cart. The quantity is capped at the available stock. Fails for products that are not in the catalog or have no stock data. Returns the resulting cart.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"product_id": productIDParam,
				"quantity": {
					Type: "integer",
					Desc: "Units to add (default: 1)",
				},
			}),
		},
		func(ctx context.Context, in *AddToCartInput) (*CartView, error) {
			if in.ProductID == 0 {
				return nil, fmt.Errorf("product_id is required")
			}
			if _, err := catalog.Stock(in.ProductID); err != nil {
				return nil, fmt.Errorf("product %d: %w", in.ProductID, err)
			}
			qty := in.Quantity
			if qty == 0 {
				qty = 1
			}
			cart.AddToCart(in.ProductID, qty)
			return viewCart(catalog, cart), nil
		},
	)
}

func createUpdateCartQuantityTool(catalog Catalog, cart Cart) tool.InvokableTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: "update_cart_quantity",
			Desc: "Change the quantity of a product already in the cart by a positive or negative delta. The quantity never drops below 1 or exceeds stock; use remove_from_cart to drop a line.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"product_id": productIDParam,
				"delta": {
					Type:     "integer",
					Desc:     "Units to add (positive) or take away (negative).",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *UpdateCartQuantityInput) (*CartView, error) {
			if in.ProductID == 0 {
				return nil, fmt.Errorf("product_id is required")
			}
			cart.UpdateQuantity(in.ProductID, in.Delta)
			return viewCart(catalog, cart), nil
		},
	)
}

func createRemoveFromCartTool(catalog Catalog, cart Cart) tool.InvokableTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: "remove_from_cart",
			Desc: "Remove a product line from the shopping cart.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"product_id": productIDParam,
			}),
		},
		func(ctx context.Context, in *RemoveFromCartInput) (*CartView, error) {
			cart.RemoveItem(in.ProductID)
			return viewCart(catalog, cart), nil
		},
	)
}

func createViewCartTool(catalog Catalog, cart Cart) tool.InvokableTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name:        "view_cart",
			Desc:        "Show the shopping cart lines, total quantity and amount.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
		},
		func(ctx context.Context, _ *ViewCartInput) (*CartView, error) {
			return viewCart(catalog, cart), nil
		},
	)
}
