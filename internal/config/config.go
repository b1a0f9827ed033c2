// 包 config：从环境变量（可选 .env）读取服务配置，集中默认值
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config：服务运行所需的全部配置项
type Config struct {
	Addr    string
	APIBase string

	CatalogueBackend string // file | postgres
	CatalogueDir     string
	I18nBackend      string // file | postgres
	I18nDir          string

	BoundariesFile    string
	GeoIPPath         string
	GeoIPReader       string // geoip2 | mmdb
	// 主库查不到时依次尝试的通用 mmdb 库
	GeoIPFallbackPath string

	EPPOBaseURL   string
	EPPOAuthToken string

	AdminTokenMD5  string
	AdminJWTSecret string

	CacheTTL         time.Duration
	RateLimitEnabled bool
	RateLimitQPS     int

	TLSEnable   bool
	TLSCertPath string
	TLSKeyPath  string
}

// LoadDotenv：依次加载 .env 与 data/env/.env；文件缺失时忽略
func LoadDotenv() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
}

// Load：读取环境变量构建配置
// 约束：API_BASE 统一为以 / 开头、不以 / 结尾；后端名称统一小写
func Load() Config {
	c := Config{
		Addr:              getenv("ADDR", ":8080"),
		APIBase:           normalizeBase(getenv("API_BASE", "/rest")),
		CatalogueBackend:  strings.ToLower(getenv("CATALOGUE_BACKEND", "file")),
		CatalogueDir:      getenv("DSS_LIST_FILES_PATH", filepath.Join("data", "dss")),
		I18nBackend:       strings.ToLower(getenv("I18N_BACKEND", "file")),
		I18nDir:           getenv("I18N_DIR", filepath.Join("data", "i18n")),
		BoundariesFile:    getenv("COUNTRY_BOUNDARIES_FILE", filepath.Join("data", "geo", "countries.geojson")),
		GeoIPPath:         os.Getenv("GEOIP_DB_PATH"),
		GeoIPReader:       strings.ToLower(getenv("GEOIP_READER", "geoip2")),
		GeoIPFallbackPath: os.Getenv("GEOIP_FALLBACK_DB_PATH"),
		EPPOBaseURL:       getenv("EPPO_BASE_URL", "https://data.eppo.int/api/rest/1.0"),
		EPPOAuthToken:     os.Getenv("EPPO_AUTHTOKEN"),
		AdminTokenMD5:     strings.ToLower(os.Getenv("ADMIN_TOKEN_MD5")),
		AdminJWTSecret:    os.Getenv("ADMIN_JWT_SECRET"),
		CacheTTL:          time.Duration(getenvInt("CACHE_TTL_S", 300)) * time.Second,
		RateLimitEnabled:  getenvBool("RATE_LIMIT_ENABLED", false),
		RateLimitQPS:      getenvInt("RATE_LIMIT_QPS", 50),
		TLSEnable:         getenvBool("TLS_ENABLE", false),
		TLSCertPath:       getenv("TLS_CERT_PATH", filepath.Join("data", "certs", "server.crt")),
		TLSKeyPath:        getenv("TLS_KEY_PATH", filepath.Join("data", "certs", "server.key")),
	}
	return c
}

func normalizeBase(s string) string {
	s = strings.TrimRight(strings.TrimSpace(s), "/")
	if s == "" {
		return ""
	}
	if !strings.HasPrefix(s, "/") {
		s = "/" + s
	}
	return s
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func getenvBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
