package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"

	"storefront-catalog-service/internal/catalog"
)

// Item source kinds.
const (
	SourcePostgres = "postgres"
	SourceFile     = "file"
)

// Config holds the application's configuration values.
// Tags like `envconfig:"APP_ENV"` specify the environment variable name.
// `default:""` provides a default value if the env var is not set.
type Config struct {
	AppEnv     string `envconfig:"APP_ENV" default:"development"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	HttpServer ServerConfig
	GrpcServer GrpcServerConfig
	ItemSource string `envconfig:"ITEM_SOURCE" default:"file" validate:"oneof=postgres file"`
	ItemFile   string `envconfig:"ITEM_FILE" default:"items.yaml"`
	Postgres   PostgresConfig
	Catalog    CatalogConfig
	Loader     LoaderConfig
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"30m" validate:"gt=0"`
}

// ServerConfig holds HTTP server-specific configurations.
type ServerConfig struct {
	Port         string        `envconfig:"HTTP_SERVER_PORT" default:"8080"`
	TimeoutRead  time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_READ" default:"15s"`
	TimeoutWrite time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_WRITE" default:"15s"`
	TimeoutIdle  time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_IDLE" default:"60s"`
}

// GrpcServerConfig holds gRPC server-specific configurations.
type GrpcServerConfig struct {
	Port string `envconfig:"GRPC_SERVER_PORT" default:"9090"`
}

// PostgresConfig holds PostgreSQL database connection details.
// The fields are only required when ITEM_SOURCE is postgres.
type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST"`
	Port     string `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER"`
	Password string `envconfig:"POSTGRES_PASSWORD"`
	DBName   string `envconfig:"POSTGRES_DBNAME"`
}

// DSN constructs the Data Source Name string for connecting to PostgreSQL.
func (pc *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		pc.Host, pc.Port, pc.User, pc.Password, pc.DBName)
}

// CatalogConfig selects the catalog variant and overrides its settings.
// Zero values keep the variant's defaults.
type CatalogConfig struct {
	Variant          string  `envconfig:"CATALOG_VARIANT" default:"digital" validate:"oneof=digital physical"`
	PageSize         int     `envconfig:"CATALOG_PAGE_SIZE" validate:"gte=0,lte=100"`
	PriceMaxFallback float64 `envconfig:"CATALOG_PRICE_MAX_FALLBACK" validate:"gte=0"`
	Shuffle          *bool   `envconfig:"CATALOG_SHUFFLE"`
	ShuffleSeed      uint64  `envconfig:"CATALOG_SHUFFLE_SEED"`
	Window           string  `envconfig:"CATALOG_WINDOW" validate:"omitempty,oneof=narrow compact"`
	VisibleWindow    int     `envconfig:"CATALOG_VISIBLE_WINDOW" validate:"gte=0,lte=25"`
}

// LoaderConfig controls fetching the item collection.
type LoaderConfig struct {
	Retries    int           `envconfig:"LOADER_RETRIES" default:"2" validate:"gte=0,lte=10"`
	RetryDelay time.Duration `envconfig:"LOADER_RETRY_DELAY" default:"2s"`
}

// EngineOptions resolves the catalog variant and overrides into engine options.
func (c CatalogConfig) EngineOptions() catalog.Options {
	opts := catalog.DigitalVariant()
	if c.Variant == "physical" {
		opts = catalog.PhysicalVariant()
	}
	if c.PageSize > 0 {
		opts.PageSize = c.PageSize
	}
	if c.PriceMaxFallback > 0 {
		opts.PriceMaxFallback = c.PriceMaxFallback
	}
	if c.Shuffle != nil {
		opts.ShuffleOnLoad = *c.Shuffle
	}
	opts.ShuffleSeed = c.ShuffleSeed
	switch c.Window {
	case "narrow":
		opts.Window = catalog.NarrowWindow
	case "compact":
		opts.Window = catalog.CompactWindow
	}
	if c.VisibleWindow > 0 {
		opts.Window.Size = c.VisibleWindow
	}
	return opts
}

// Load initializes the configuration from environment variables.
// It should be called once during application startup.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and cross-field requirements.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	switch c.ItemSource {
	case SourcePostgres:
		pg := c.Postgres
		if pg.Host == "" || pg.User == "" || pg.Password == "" || pg.DBName == "" {
			return errors.New("invalid configuration: POSTGRES_HOST, POSTGRES_USER, POSTGRES_PASSWORD and POSTGRES_DBNAME are required when ITEM_SOURCE=postgres")
		}
	case SourceFile:
		if c.ItemFile == "" {
			return errors.New("invalid configuration: ITEM_FILE is required when ITEM_SOURCE=file")
		}
	}
	return nil
}
