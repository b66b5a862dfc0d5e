package model

import "context"

// CatalogService is the remote source of truth for products and stock.
type CatalogService interface {
	ListProducts(ctx context.Context, categoryIDs []int64) ([]Product, error)
	CreateProduct(ctx context.Context, in ProductInput) (Product, error)
	UpdateProduct(ctx context.Context, id int64, in ProductInput) (Product, error)
	UploadImage(ctx context.Context, id int64, img ImageUpload) (Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	RestockProduct(ctx context.Context, id int64, delta int) error
}

// TokenSource yields the admin token attached to mutating calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenRepository stores the token issued by the login endpoint.
type TokenRepository interface {
	TokenSource
	SaveToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// StaticToken is a TokenSource returning a fixed token.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	return string(t), nil
}
