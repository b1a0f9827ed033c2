// 程序入口：仅负责读取配置、初始化依赖并启动服务；API 注册在 internal/api 以便扩展
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dss-api/internal/api"
	"dss-api/internal/auth"
	"dss-api/internal/config"
	"dss-api/internal/eppo"
	"dss-api/internal/geoip"
	"dss-api/internal/i18n"
	"dss-api/internal/logger"
	"dss-api/internal/metrics"
	"dss-api/internal/middleware"
	"dss-api/internal/migrate"
	"dss-api/internal/query"
	"dss-api/internal/spatial"
	"dss-api/internal/store"
	"dss-api/internal/utils"

	_ "go.uber.org/automaxprocs"
)

func main() {
	config.LoadDotenv()
	l := logger.Setup()
	l.Debug("log_init_ok")
	cfg := config.Load()
	l.Debug("config_api_base", "base", cfg.APIBase)

	// 数据库仅在任一后端为 postgres 时打开
	var db *sql.DB
	if cfg.CatalogueBackend == "postgres" || cfg.I18nBackend == "postgres" {
		var err error
		db, err = utils.OpenPostgresFromEnv()
		if err != nil {
			l.Error("db_open_error", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			l.Error("db_ping_error", "err", err)
		} else {
			l.Info("db_ping_ok")
		}
		if err := migrate.EnsureSchema(db); err != nil {
			l.Error("schema_error", "err", err)
			os.Exit(1)
		}
	}

	var catalogue store.Catalogue
	switch cfg.CatalogueBackend {
	case "postgres":
		catalogue = store.AttachDB(db)
	default:
		catalogue = store.NewFileStore(cfg.CatalogueDir)
		l.Debug("config_catalogue_dir", "dir", cfg.CatalogueDir)
	}

	var src i18n.Source = i18n.PropertiesSource{Dir: cfg.I18nDir}
	var sink api.BundleWriter
	if cfg.I18nBackend == "postgres" {
		pg := i18n.PostgresSource{DB: db}
		src, sink = pg, pg
	}
	bundles := i18n.NewCache(src)

	bounds := spatial.NewCountryBoundaries(cfg.BoundariesFile)
	// 后台预热边界索引，首个位置查询不必等待加载
	go func() {
		if err := bounds.Refresh(); err != nil {
			l.Error("boundary_warmup_error", "file", cfg.BoundariesFile, "err", err)
			return
		}
		l.Info("boundary_ready", "countries", bounds.Codes())
	}()
	matcher := spatial.NewMatcher(bounds)

	// 定位库可热替换：管理端刷新时按同样的来源重新打开
	locator := &geoip.Dynamic{
		Open: func() (geoip.Locator, error) {
			return geoip.OpenChain(
				geoip.Source{Path: cfg.GeoIPPath, Kind: cfg.GeoIPReader},
				geoip.Source{Path: cfg.GeoIPFallbackPath, Kind: "mmdb"},
			)
		},
		CloseDelay: 30 * time.Second,
	}
	if err := locator.Reload(); err == nil {
		l.Info("geoip_ready", "path", cfg.GeoIPPath, "reader", cfg.GeoIPReader, "fallback", cfg.GeoIPFallbackPath)
	} else {
		l.Info("geoip_disabled", "reason", err)
	}

	var namer api.PrefNamer
	if cfg.EPPOAuthToken != "" {
		namer = eppo.New(cfg.EPPOBaseURL, cfg.EPPOAuthToken)
	} else {
		l.Info("eppo_disabled", "reason", "no_auth_token")
	}

	rc := utils.OpenRedisFromEnv()
	if rc == nil {
		l.Info("redis_disabled")
	} else if err := rc.Ping(context.Background()).Err(); err != nil {
		l.Error("redis_ping_error", "err", err)
		rc = nil
	} else {
		l.Info("redis_ping_ok")
	}

	svc := &api.Service{
		Catalogue:  catalogue,
		Engine:     &query.Engine{Matcher: matcher},
		Translator: &i18n.Translator{Cache: bundles},
		Bundles:    bundles,
		BundleSink: sink,
		Boundaries: bounds,
		Matcher:    matcher,
		Locator:    locator,
		GeoIP:      locator,
		EPPO:       namer,
		Auth:       auth.New(cfg.AdminTokenMD5, cfg.AdminJWTSecret),
		Cache:      api.NewResponseCache(rc, cfg.CacheTTL),
	}
	if cfg.AdminTokenMD5 == "" && cfg.AdminJWTSecret == "" {
		l.Warn("admin_auth_unconfigured")
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.APIBase+"/metrics", metrics.Handler())
	mux.Handle(cfg.APIBase+"/", http.StripPrefix(cfg.APIBase, api.BuildRoutes(svc)))

	handler := middleware.Wrap(mux, cfg.RateLimitEnabled, cfg.RateLimitQPS)
	handler = logger.AccessMiddleware(l)(handler)
	s := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		var err error
		if cfg.TLSEnable {
			if err := utils.EnsureSelfSignedCert(cfg.TLSCertPath, cfg.TLSKeyPath, "dss-api.local"); err != nil {
				l.Error("tls_cert_error", "err", err)
			}
			l.Info("listening_tls", "addr", cfg.Addr, "cert", cfg.TLSCertPath)
			err = s.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath)
		} else {
			l.Info("listening", "addr", cfg.Addr)
			err = s.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("server_error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	l.Info("shutdown_begin")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		l.Error("shutdown_error", "err", err)
	}
	if rc != nil {
		_ = rc.Close()
	}
	l.Info("shutdown_done")
}
