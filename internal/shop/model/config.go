package model

// ================ Config ================
type APIConfig struct {
	URL     string `envconfig:"API_URL" required:"true"`
	Timeout string `envconfig:"API_TIMEOUT" default:"10s"`
	Token   string `envconfig:"API_TOKEN"`
}

type CartConfig struct {
	SessionID      string `envconfig:"CART_SESSION_ID"`
	TTL            string `envconfig:"CART_TTL" default:"720h"`
	PersistTimeout string `envconfig:"CART_PERSIST_TIMEOUT" default:"3s"`
}

type CatalogConfig struct {
	SequencedFetch bool `envconfig:"CATALOG_SEQUENCED_FETCH" default:"true"`
}

type MetricsConfig struct {
	Addr string `envconfig:"METRICS_ADDR"`
}
