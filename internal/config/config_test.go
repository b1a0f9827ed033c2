package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"ADDR", "API_BASE", "CATALOGUE_BACKEND", "CACHE_TTL_S", "RATE_LIMIT_ENABLED", "GEOIP_READER", "TLS_ENABLE"} {
		t.Setenv(k, "")
	}
	c := Load()
	assert.Equal(t, ":8080", c.Addr)
	assert.Equal(t, "/rest", c.APIBase)
	assert.Equal(t, "file", c.CatalogueBackend)
	assert.Equal(t, "geoip2", c.GeoIPReader)
	assert.Equal(t, 300*time.Second, c.CacheTTL)
	assert.False(t, c.RateLimitEnabled)
	assert.False(t, c.TLSEnable)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("API_BASE", "api/v2/")
	t.Setenv("CATALOGUE_BACKEND", "Postgres")
	t.Setenv("CACHE_TTL_S", "bogus")
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_QPS", "7")
	t.Setenv("ADMIN_TOKEN_MD5", "ABCDEF")
	t.Setenv("GEOIP_FALLBACK_DB_PATH", "/var/lib/geoip/dbip-city.mmdb")

	c := Load()
	assert.Equal(t, "/api/v2", c.APIBase)
	assert.Equal(t, "postgres", c.CatalogueBackend)
	assert.Equal(t, 300*time.Second, c.CacheTTL)
	assert.True(t, c.RateLimitEnabled)
	assert.Equal(t, 7, c.RateLimitQPS)
	assert.Equal(t, "abcdef", c.AdminTokenMD5)
	assert.Equal(t, "/var/lib/geoip/dbip-city.mmdb", c.GeoIPFallbackPath)
}
