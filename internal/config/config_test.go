package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-catalog-service/internal/catalog"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "8080", cfg.HttpServer.Port)
	assert.Equal(t, 15*time.Second, cfg.HttpServer.TimeoutRead)
	assert.Equal(t, "9090", cfg.GrpcServer.Port)
	assert.Equal(t, SourceFile, cfg.ItemSource)
	assert.Equal(t, "digital", cfg.Catalog.Variant)
	assert.Equal(t, 2, cfg.Loader.Retries)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Nil(t, cfg.Catalog.Shuffle)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("ITEM_SOURCE", "postgres")
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_USER", "shop")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DBNAME", "catalog")
	t.Setenv("CATALOG_VARIANT", "physical")
	t.Setenv("CATALOG_SHUFFLE", "true")
	t.Setenv("CATALOG_SHUFFLE_SEED", "42")
	t.Setenv("HTTP_SERVER_PORT", "9999")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.HttpServer.Port)
	assert.Equal(t, "host=db port=5432 user=shop password=secret dbname=catalog sslmode=disable", cfg.Postgres.DSN())

	opts := cfg.Catalog.EngineOptions()
	assert.True(t, opts.ShuffleOnLoad)
	assert.Equal(t, uint64(42), opts.ShuffleSeed)
	assert.Equal(t, float64(catalog.PhysicalPriceMaxFallback), opts.PriceMaxFallback)
}

func TestLoad_PostgresRequiresCredentials(t *testing.T) {
	t.Setenv("ITEM_SOURCE", "postgres")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_HOST")
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := map[string][2]string{
		"unknown source":  {"ITEM_SOURCE", "s3"},
		"unknown variant": {"CATALOG_VARIANT", "vintage"},
		"unknown window":  {"CATALOG_WINDOW", "wide"},
		"bad log level":   {"LOG_LEVEL", "loud"},
		"page size":       {"CATALOG_PAGE_SIZE", "1000"},
	}
	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestCatalogConfig_EngineOptions(t *testing.T) {
	noShuffle := false
	c := CatalogConfig{
		Variant:          "digital",
		PageSize:         24,
		PriceMaxFallback: 5000,
		Shuffle:          &noShuffle,
		Window:           "compact",
		VisibleWindow:    4,
	}
	opts := c.EngineOptions()

	assert.Equal(t, 24, opts.PageSize)
	assert.Equal(t, 5000.0, opts.PriceMaxFallback)
	assert.False(t, opts.ShuffleOnLoad)
	assert.Equal(t, catalog.WindowOptions{Size: 4}, opts.Window)

	assert.Equal(t, catalog.DigitalVariant(), CatalogConfig{Variant: "digital"}.EngineOptions())
	assert.Equal(t, catalog.PhysicalVariant(), CatalogConfig{Variant: "physical"}.EngineOptions())
}
