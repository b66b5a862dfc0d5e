// Package tools exposes catalog and cart operations as Eino invokable tools so a
// shopping assistant can drive the storefront.
package tools

import (
	"iter"

	"github.com/cloudwego/eino/components/tool"
	"github.com/shopspring/decimal"

	"github.com/shopfront-core/server/internal/shop"
	"github.com/shopfront-core/server/internal/shop/model"
)

// Catalog is the read side of the catalog cache used by the tools.
type Catalog interface {
	All() iter.Seq[model.Product]
	Lookup(id int64) (model.Product, bool)
	Get(id int64) (model.Product, error)
	Stock(id int64) (int, error)
}

// Cart is the command and query side of the cart used by the tools.
type Cart interface {
	AddToCart(productID int64, quantity int)
	UpdateQuantity(productID int64, delta int)
	RemoveItem(productID int64)
	Lines() []model.CartLine
	CartAmount() decimal.Decimal
	CartQuantity() int
}

// GetShopTools returns every tool bound to s.
func GetShopTools(s *shop.Shop) []tool.BaseTool {
	return NewTools(s.Catalog(), s.Cart())
}

func NewTools(catalog Catalog, cart Cart) []tool.BaseTool {
	return []tool.BaseTool{
		createSearchProductTool(catalog),
		createGetProductDetailsTool(catalog),
		createAddToCartTool(catalog, cart),
		createUpdateCartQuantityTool(catalog, cart),
		createRemoveFromCartTool(catalog, cart),
		createViewCartTool(catalog, cart),
	}
}
