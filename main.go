package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shopfront-core/server/internal/core"
	"github.com/shopfront-core/server/internal/shop"
	"github.com/shopfront-core/server/internal/shop/api"
	"github.com/shopfront-core/server/internal/shop/model"
	"github.com/shopfront-core/server/internal/shop/observers"
	"github.com/shopfront-core/server/internal/shop/repo"
	"github.com/shopfront-core/server/internal/shop/tools"
	logx "github.com/shopfront-core/server/pkg/logger"
	pkgredis "github.com/shopfront-core/server/pkg/redis"
)

// AppConfig defines all configurable parameters of the storefront data layer,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment core.Environment `envconfig:"ENVIRONMENT" default:"development"`

	// Infrastructure
	Redis pkgredis.Config

	// Remote catalog API
	API model.APIConfig

	// Admin login, optional
	AdminEmail    string `envconfig:"ADMIN_EMAIL"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`

	Cart    model.CartConfig
	Catalog model.CatalogConfig
	Metrics model.MetricsConfig
}

func main() {
	ctx := context.Background()
	// Load .env file
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Load structured config from env
	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}
	logx.Init(logx.LoggerOpts{Environment: envCfg.Environment})

	rdb, err := envCfg.Redis.New(ctx)
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to initialise redis client")
	}
	defer rdb.Close()

	sessionID := envCfg.Cart.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	cartTTL, err := time.ParseDuration(envCfg.Cart.TTL)
	if err != nil {
		logx.Fatal().Err(err).Str("value", envCfg.Cart.TTL).Msg("invalid CART_TTL")
	}
	persistTimeout, err := time.ParseDuration(envCfg.Cart.PersistTimeout)
	if err != nil {
		logx.Fatal().Err(err).Str("value", envCfg.Cart.PersistTimeout).Msg("invalid CART_PERSIST_TIMEOUT")
	}

	var clientOpts []api.Option
	if envCfg.API.Token == "" {
		clientOpts = append(clientOpts, api.WithTokenSource(repo.NewRedisTokenRepository(rdb, sessionID, cartTTL)))
	}
	client, err := api.NewClient(envCfg.API, clientOpts...)
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to build api client")
	}
	if envCfg.AdminEmail != "" {
		if _, err := client.Login(ctx, model.Credentials{Email: envCfg.AdminEmail, Password: envCfg.AdminPassword}); err != nil {
			logx.Warn().Err(err).Str("email", envCfg.AdminEmail).Msg("admin login failed")
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	recorder := observers.NewPrometheusRecorder(reg)
	if envCfg.Metrics.Addr != "" {
		go serveMetrics(envCfg.Metrics.Addr, reg)
	}

	s, err := shop.New(shop.Config{
		Catalog:        client,
		CartRepo:       repo.NewRedisCartRepository(rdb, sessionID, cartTTL),
		Recorder:       recorder,
		SequencedFetch: envCfg.Catalog.SequencedFetch,
		PersistTimeout: persistTimeout,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to build shop")
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Close(closeCtx); err != nil {
			logx.Warn().Err(err).Msg("cart flush on shutdown failed")
		}
	}()

	if err := s.Init(ctx); err != nil {
		logx.Warn().Err(err).Msg("cart store unavailable, continuing with an unsaved cart")
	}
	drainErrors(s)

	fmt.Printf("Session %s: %d products loaded\n", sessionID, s.Catalog().Len())
	for p := range s.Catalog().All() {
		q, ok := p.Available()
		stock := "n/a"
		if ok {
			stock = fmt.Sprint(q)
		}
		fmt.Printf("  #%d %-30s %10s  stock=%s\n", p.ID, p.Name, p.Price.StringFixed(2), stock)
	}
	for _, p := range s.Catalog().LowStock() {
		fmt.Printf("  low stock: #%d %s (threshold %d)\n", p.ID, p.Name, p.Threshold)
	}

	dispatcher, err := tools.NewDispatcher(ctx, tools.GetShopTools(s))
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to register tools")
	}
	cart, err := dispatcher.Invoke(ctx, "view_cart", "{}")
	if err != nil {
		logx.Error().Err(err).Msg("view_cart failed")
		return
	}
	fmt.Printf("Cart: %s\n", cart)
}

func drainErrors(s *shop.Shop) {
	for {
		select {
		case err := <-s.Errors():
			fmt.Printf("catalog unavailable: %v\n", err)
		default:
			return
		}
	}
}

func serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	logx.Info().Str("addr", addr).Msg("serving metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logx.Error().Err(err).Msg("metrics server stopped")
	}
}
