package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/shopfront-core/server/internal/shop/model"
)

// ===================================
// Search Product Tool
// ===================================

const (
	defaultMaxResults = 10
	maxMaxResults     = 20
)

type SearchProductInput struct {
	Query      string `json:"query"`
	Category   string `json:"category,omitempty"`
	MaxResults int    `json:"max_results,omitempty"`
}

type ProductSummary struct {
	ID       int64    `json:"id"`
	SKU      string   `json:"sku"`
	Name     string   `json:"name"`
	Price    string   `json:"price"`
	Category []string `json:"category"`
	InStock  bool     `json:"in_stock"`
}

type SearchProductOutput struct {
	Products []ProductSummary `json:"products"`
	Total    int              `json:"total"`
}

func summarize(p model.Product) ProductSummary {
	q, ok := p.Available()
	return ProductSummary{
		ID:       p.ID,
		SKU:      p.SKU,
		Name:     p.Name,
		Price:    p.Price.StringFixed(2),
		Category: p.Categories,
		InStock:  ok && q > 0,
	}
}

func matches(p model.Product, query string) bool {
	if strings.Contains(strings.ToLower(p.Name), query) ||
		strings.Contains(strings.ToLower(p.SKU), query) ||
		strings.Contains(strings.ToLower(p.Description), query) {
		return true
	}
	for _, c := range p.Categories {
		if strings.Contains(strings.ToLower(c), query) {
			return true
		}
	}
	return false
}

func createSearchProductTool(catalog Catalog) tool.InvokableTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: "search_product",
			Desc: "Search the storefront catalog currently loaded for this session. Matches name, SKU, description and category names. Returns product ids, prices and availability; use the ids with get_product_details or add_to_cart.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {
					Type:     "string",
					Desc:     "Search keywords, e.g. a product name, SKU or category.",
					Required: true,
				},
				"category": {
					Type: "string",
					Desc: "Optional exact category name to restrict results to.",
				},
				"max_results": {
					Type: "number",
					Desc: "Maximum number of products to return (default: 10, max: 20)",
				},
			}),
		},
		func(ctx context.Context, in *SearchProductInput) (*SearchProductOutput, error) {
			if strings.TrimSpace(in.Query) == "" {
				return nil, fmt.Errorf("query is required")
			}
			limit := in.MaxResults
			if limit <= 0 {
				limit = defaultMaxResults
			}
			limit = min(limit, maxMaxResults)

			query := strings.ToLower(strings.TrimSpace(in.Query))
			out := &SearchProductOutput{Products: []ProductSummary{}}
			for p := range catalog.All() {
				if in.Category != "" && !p.HasCategory(in.Category) {
					continue
				}
				if !matches(p, query) {
					continue
				}
				out.Products = append(out.Products, summarize(p))
				if len(out.Products) == limit {
					break
				}
			}
			out.Total = len(out.Products)
			return out, nil
		},
	)
}
