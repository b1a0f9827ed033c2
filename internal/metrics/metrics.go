package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dss_requests_total",
		Help: "Total number of catalogue requests by route",
	}, []string{"route"})
	QueryDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dss_query_duration_ms",
		Help:    "Catalogue query duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	})
	ResultModels = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dss_query_result_models",
		Help:    "Number of models returned per query",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
	})
	EmptyResultsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dss_empty_results_total",
		Help: "Total number of queries returning no DSS",
	})
	TranslationErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dss_translation_errors_total",
		Help: "Total DSS translations that reported malformed input schemas",
	})
	BundleCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dss_i18n_cache_hits_total",
		Help: "Total i18n bundle cache hits",
	})
	BundleCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dss_i18n_cache_misses_total",
		Help: "Total i18n bundle cache misses",
	})
	BoundaryRefreshTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dss_boundary_refresh_total",
		Help: "Country boundary loads by status",
	}, []string{"status"})
	SpatialErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dss_spatial_errors_total",
		Help: "Total malformed custom geometries met while resolving validity",
	})
	RedisHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dss_redis_hits_total",
		Help: "Total redis response cache hits",
	})
	RedisMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dss_redis_misses_total",
		Help: "Total redis response cache misses",
	})
	EPPORequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dss_eppo_requests_total",
		Help: "Total EPPO REST requests",
	})
	EPPOFailTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dss_eppo_fail_total",
		Help: "Total EPPO REST failures",
	})
	EPPODurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dss_eppo_duration_ms",
		Help:    "EPPO REST call duration in milliseconds",
		Buckets: []float64{10, 20, 50, 100, 200, 500, 1000, 2000, 5000},
	})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(QueryDurationMs)
	prometheus.MustRegister(ResultModels)
	prometheus.MustRegister(EmptyResultsTotal)
	prometheus.MustRegister(TranslationErrorsTotal)
	prometheus.MustRegister(BundleCacheHitsTotal)
	prometheus.MustRegister(BundleCacheMissesTotal)
	prometheus.MustRegister(BoundaryRefreshTotal)
	prometheus.MustRegister(SpatialErrorsTotal)
	prometheus.MustRegister(RedisHitsTotal)
	prometheus.MustRegister(RedisMissesTotal)
	prometheus.MustRegister(EPPORequestsTotal)
	prometheus.MustRegister(EPPOFailTotal)
	prometheus.MustRegister(EPPODurationMs)
}

// 文档注释：返回 Prometheus 指标处理器
// 背景：在主入口挂载到 <API_BASE>/metrics。
func Handler() http.Handler { return promhttp.Handler() }
