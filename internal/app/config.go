package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"

	"github.com/xenking/storefront-sim/internal/domain/order"
)

const defaultAddr = "0.0.0.0:8080"

// Config holds the complete application configuration, loadable from
// environment variables (SHOP_ prefix), flags, or YAML config files.
type Config struct {
	Addr      string   `default:"0.0.0.0:8080" usage:"API server listen address"`
	SeedFiles []string `usage:"Gzipped JSON-lines seed files loaded at startup" flag:"seed-files"`
	Catalog   CatalogConfig
	Orders    OrdersConfig
	Recommend RecommendConfig
	RateLimit RateLimitConfig
	Graceful  GracefulConfig
}

// CatalogConfig holds catalog defaults.
type CatalogConfig struct {
	LowStockThreshold int `default:"10" usage:"Low stock threshold for products that do not set one" flag:"low-stock-threshold"`
}

// OrdersConfig controls order ID issuance.
type OrdersConfig struct {
	FirstSequence int64 `default:"1000" usage:"Order sequence start, at least 1000; the first order is ORD<start+1>" flag:"first-sequence"`
}

// RecommendConfig controls recommendation defaults.
type RecommendConfig struct {
	DefaultLimit int `default:"5" usage:"Recommendations returned when no limit is given" flag:"recommend-limit"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window, 0 disables"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables and YAML config
// files, then applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	return loadConfig(aconfig.Config{
		EnvPrefix: "SHOP",
		Files:     []string{"config.yaml", "/etc/storefront/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
}

func loadConfig(ac aconfig.Config) (*Config, error) {
	var cfg Config
	if err := aconfig.LoaderFor(&cfg, ac).Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyPlatformDefaults maps the platform-provided PORT onto Addr unless an
// address was configured explicitly.
func (c *Config) applyPlatformDefaults() {
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}

func (c *Config) validate() error {
	switch {
	case c.Catalog.LowStockThreshold < 0:
		return errors.New("catalog low stock threshold must not be negative")
	case c.Orders.FirstSequence < order.DefaultFirstSequence:
		return errors.Errorf("order first sequence must be at least %d", order.DefaultFirstSequence)
	case c.Recommend.DefaultLimit < 0:
		return errors.New("recommend default limit must not be negative")
	case c.RateLimit.Max > 0 && c.RateLimit.Window <= 0:
		return errors.New("rate limit window must be positive")
	}
	return nil
}
