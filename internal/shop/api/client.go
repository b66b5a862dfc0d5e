// Package api is the HTTP client for the remote catalog service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	errx "github.com/shopfront-core/server/internal/core/error"
	"github.com/shopfront-core/server/internal/shop/model"
	logx "github.com/shopfront-core/server/pkg/logger"
)

const maxErrorBody = 4 << 10

// Client talks to the storefront REST API.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  model.TokenSource
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTokenSource sets where admin tokens are read from.
func WithTokenSource(ts model.TokenSource) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

func NewClient(cfg model.APIConfig, opts ...Option) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("api url is required")
	}
	timeout := 10 * time.Second
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid API_TIMEOUT %q: %w", cfg.Timeout, err)
		}
		timeout = d
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
	if cfg.Token != "" {
		c.tokens = model.StaticToken(cfg.Token)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListProducts fetches the catalog, scoped to categoryIDs when non-empty.
func (c *Client) ListProducts(ctx context.Context, categoryIDs []int64) ([]model.Product, error) {
	path := "/product?"
	if len(categoryIDs) > 0 {
		ids := make([]string, len(categoryIDs))
		for i, id := range categoryIDs {
			ids[i] = strconv.FormatInt(id, 10)
		}
		path += "&category_id=[" + strings.Join(ids, ",") + "]"
	}
	var out envelope[productRows]
	if err := c.do(ctx, http.MethodGet, path, nil, "", false, &out); err != nil {
		return nil, err
	}
	products := make([]model.Product, 0, len(out.Data.Rows))
	for _, r := range out.Data.Rows {
		products = append(products, r.toModel())
	}
	return products, nil
}

func (c *Client) CreateProduct(ctx context.Context, in model.ProductInput) (model.Product, error) {
	return c.sendProduct(ctx, http.MethodPost, "/product", in)
}

func (c *Client) UpdateProduct(ctx context.Context, id int64, in model.ProductInput) (model.Product, error) {
	return c.sendProduct(ctx, http.MethodPatch, fmt.Sprintf("/product/%d", id), in)
}

func (c *Client) sendProduct(ctx context.Context, method, path string, in model.ProductInput) (model.Product, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return model.Product{}, fmt.Errorf("marshal product: %w", err)
	}
	var out envelope[productRecord]
	if err := c.do(ctx, method, path, bytes.NewReader(body), "application/json", true, &out); err != nil {
		return model.Product{}, err
	}
	return out.Data.toModel(), nil
}

// UploadImage sends img as the multipart "image" field.
func (c *Client) UploadImage(ctx context.Context, id int64, img model.ImageUpload) (model.Product, error) {
	if len(img.Content) == 0 {
		return model.Product{}, errx.InvalidInput(errors.New("image content is empty"))
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	name := img.Filename
	if name == "" {
		name = "image"
	}
	part, err := mw.CreateFormFile("image", name)
	if err != nil {
		return model.Product{}, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(img.Content); err != nil {
		return model.Product{}, fmt.Errorf("write form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return model.Product{}, fmt.Errorf("close multipart writer: %w", err)
	}
	var out envelope[productRecord]
	path := fmt.Sprintf("/product/%d/image", id)
	if err := c.do(ctx, http.MethodPatch, path, &buf, mw.FormDataContentType(), true, &out); err != nil {
		return model.Product{}, err
	}
	return out.Data.toModel(), nil
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/product/%d", id), nil, "", true, nil)
}

// RestockProduct adds delta units. The API does not return the new total.
func (c *Client) RestockProduct(ctx context.Context, id int64, delta int) error {
	body, err := json.Marshal(restockRequest{Quantity: delta})
	if err != nil {
		return fmt.Errorf("marshal restock: %w", err)
	}
	path := fmt.Sprintf("/product/%d/restock", id)
	return c.do(ctx, http.MethodPatch, path, bytes.NewReader(body), "application/json", true, nil)
}

// Login exchanges admin credentials for a token. When the token source is a
// TokenRepository the token is stored there for later mutations.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (string, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return "", fmt.Errorf("marshal credentials: %w", err)
	}
	var out envelope[loginResponse]
	if err := c.do(ctx, http.MethodPost, "/employee/login", bytes.NewReader(body), "application/json", false, &out); err != nil {
		return "", err
	}
	if out.Data.Token == "" {
		return "", errx.Unauthorized(errors.New("login response carried no token"))
	}
	if repo, ok := c.tokens.(model.TokenRepository); ok {
		if err := repo.SaveToken(ctx, out.Data.Token); err != nil {
			return "", err
		}
	}
	return out.Data.Token, nil
}

func (c *Client) token(ctx context.Context) (string, error) {
	if c.tokens == nil {
		return "", errx.Unauthorized(errors.New("no token source configured"))
	}
	tok, err := c.tokens.Token(ctx)
	if err != nil {
		return "", errx.Unauthorized(err)
	}
	if tok == "" {
		return "", errx.Unauthorized(errors.New("no admin token"))
	}
	return tok, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, auth bool, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if auth {
		tok, err := c.token(ctx)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errx.FetchFailed(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := remoteMessage(raw)
		logx.Warn().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("remote_message", msg).
			Msg("api request rejected")
		return errx.FromStatus(resp.StatusCode, msg)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errx.FetchFailed(fmt.Errorf("decode %s %s: %w", method, path, err))
	}
	return nil
}

func remoteMessage(raw []byte) string {
	var env envelope[json.RawMessage]
	if err := json.Unmarshal(raw, &env); err == nil {
		if env.Message != "" {
			return env.Message
		}
		if env.Error != "" {
			return env.Error
		}
	}
	return strings.TrimSpace(string(raw))
}

var _ model.CatalogService = (*Client)(nil)
