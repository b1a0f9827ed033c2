// 包 api：集中注册 HTTP API 路由；处理器只做参数解析与响应编码，查询语义在 query/i18n/spatial 中
package api

import (
	"context"
	"net/http"

	"dss-api/internal/auth"
	"dss-api/internal/geoip"
	"dss-api/internal/i18n"
	"dss-api/internal/metrics"
	"dss-api/internal/query"
	"dss-api/internal/store"

	"github.com/go-chi/chi/v5"
)

// PrefNamer：EPPO 名称查询方
type PrefNamer interface {
	PrefNames(ctx context.Context, codes []string) (map[string]string, error)
}

// Refresher：可重建的边界数据
type Refresher interface {
	Refresh() error
}

// Reloader：可重新打开的外部数据（定位库）
type Reloader interface {
	Reload() error
}

// BundleWriter：支持写入翻译包的来源（数据库后端）
type BundleWriter interface {
	Upsert(ctx context.Context, dssID, locale string, entries map[string]string) error
}

// 文档注释：API 依赖集合
// 背景：由主入口组装；可选依赖（Locator/EPPO/Bundles 写入/Redis）缺失时对应路由返回 503 或退化为不缓存。
type Service struct {
	Catalogue  store.Catalogue
	Engine     *query.Engine
	Translator *i18n.Translator
	Bundles    *i18n.Cache
	BundleSink BundleWriter
	Boundaries Refresher
	Matcher    interface{ Reset() }
	Locator    geoip.Locator
	GeoIP      Reloader
	EPPO       PrefNamer
	Auth       *auth.Authenticator
	Cache      *ResponseCache
}

func count(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metrics.RequestsTotal.WithLabelValues(route).Inc()
		h(w, r)
	}
}

// 构建并返回 API 路由：主入口挂载到 API_BASE 前缀下
func BuildRoutes(s *Service) http.Handler {
	if s.Engine == nil {
		s.Engine = &query.Engine{}
	}
	c := s.Cache
	r := chi.NewRouter()

	r.Get("/dss", count("dss_list", c.Wrap(s.listDSS)))
	r.Get("/dss/{dssID}", count("dss_get", c.Wrap(s.getDSS)))
	r.Get("/model/{dssID}/{modelID}", count("model_get", c.Wrap(s.getModel)))
	r.Get("/dss/crop/{cropCode}", count("dss_crop", c.Wrap(s.listByCrop)))
	r.Get("/dss/crops/{cropCodes}", count("dss_crops", c.Wrap(s.listByCrops)))
	r.Get("/dss/pest/{pestCode}", count("dss_pest", c.Wrap(s.listByPest)))
	r.Get("/dss/pests/{pestCodes}", count("dss_pests", c.Wrap(s.listByPests)))
	r.Get("/dss/crop/{cropCode}/pest/{pestCode}", count("dss_crop_pest", c.Wrap(s.listByCropAndPest)))
	r.Post("/dss/location", count("dss_location", s.listByLocation))
	r.Get("/dss/location/point", count("dss_location_point", c.Wrap(s.listByPoint)))
	r.Get("/dss/location/ip", count("dss_location_ip", s.listByIP))
	r.Get("/crop", count("crop_list", c.Wrap(s.listCrops)))
	r.Get("/pest", count("pest_list", c.Wrap(s.listPests)))
	r.Get("/risk_maps/list", count("risk_maps_list", c.Wrap(s.listRiskMaps)))
	r.Get("/eppo/names", count("eppo_names", s.eppoNames))
	r.Post("/schema/dss/yaml/validate", count("schema_validate", s.validateYAML))

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.Auth.Require)
		r.Get("/heartbeat", count("admin_heartbeat", s.heartbeat))
		r.Post("/dss/add", count("admin_dss_add", s.addDSS))
		r.Get("/dss/{dssID}/i18n/csv", count("admin_i18n_csv", s.i18nCSV))
		r.Get("/dss/{dssID}/i18n/csv/platform_validated/{platformValidated}", count("admin_i18n_csv", s.i18nCSV))
		r.Post("/dss/{dssID}/i18n/{locale}", count("admin_i18n_upload", s.uploadBundle))
		r.Post("/refresh", count("admin_refresh", s.refresh))
	})
	return r
}
