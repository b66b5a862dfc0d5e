package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
)

type GetProductDetailsInput struct {
	ProductID int64 `json:"product_id"`
}

type GetProductDetailsOutput struct {
	ProductSummary
	Description  string `json:"description"`
	Available    *int   `json:"available"`
	NeedsRestock bool   `json:"needs_restock"`
}

func createGetProductDetailsTool(catalog Catalog) tool.InvokableTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: "get_product_details",
			Desc: "Get full details of one product from the loaded catalog: description, price, categories and the available stock level.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"product_id": {
					Type:     "integer",
					Desc:     "Product id obtained from search_product results.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *GetProductDetailsInput) (*GetProductDetailsOutput, error) {
			if in.ProductID == 0 {
				return nil, fmt.Errorf("product_id is required")
			}
			p, err := catalog.Get(in.ProductID)
			if err != nil {
				return nil, fmt.Errorf("product %d: %w", in.ProductID, err)
			}
			return &GetProductDetailsOutput{
				ProductSummary: summarize(p),
				Description:    p.Description,
				Available:      p.Quantity,
				NeedsRestock:   p.NeedsRestock(),
			}, nil
		},
	)
}
