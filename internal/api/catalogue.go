package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dss-api/internal/catalog"
	"dss-api/internal/geoip"
	"dss-api/internal/logger"
	"dss-api/internal/metrics"
	"dss-api/internal/query"
	"dss-api/internal/spatial"
	"dss-api/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/paulmach/orb"
)

const maxBodyBytes = 10 << 20

// 文档注释：解析列表接口的公共查询参数
// 约束：platformValidated 只接受可解析的布尔值；executionType 原样传入，由引擎忽略未知值。
func commonPredicates(r *http.Request) (query.Predicates, string, error) {
	var p query.Predicates
	q := r.URL.Query()
	if v := strings.TrimSpace(q.Get("platformValidated")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return p, "", fmt.Errorf("invalid platformValidated %q", v)
		}
		p.PlatformValidated = query.Bool(b)
	}
	if v := strings.TrimSpace(q.Get("executionType")); v != "" {
		p.ExecutionType = query.String(strings.ToUpper(v))
	}
	return p, strings.TrimSpace(q.Get("language")), nil
}

func splitCodes(s string) []string {
	var out []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// 文档注释：执行一次目录查询
// 背景：读取全部记录，按谓词过滤后再翻译，翻译只作用于保留下来的 DSS。
func (s *Service) search(ctx context.Context, p query.Predicates, lang string) ([]catalog.DSS, error) {
	begin := time.Now()
	all, err := s.Catalogue.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	res := s.Engine.Query(all, p)
	res = s.Translator.TranslateAll(ctx, res, lang)
	models := 0
	for _, d := range res {
		models += len(d.Models)
	}
	metrics.QueryDurationMs.Observe(float64(time.Since(begin).Milliseconds()))
	metrics.ResultModels.Observe(float64(models))
	if len(res) == 0 {
		metrics.EmptyResultsTotal.Inc()
	}
	logger.FromContext(ctx).Debug("dss_query", "dss", len(res), "models", models, "language", lang)
	return res, nil
}

func (s *Service) respondQuery(w http.ResponseWriter, r *http.Request, p query.Predicates, lang string) {
	res, err := s.search(r.Context(), p, lang)
	if err != nil {
		logger.FromContext(r.Context()).Error("catalogue_error", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// withPredicates：解析公共参数后交给 fill 补充路由特有谓词
func (s *Service) withPredicates(fill func(r *http.Request, p *query.Predicates)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, lang, err := commonPredicates(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if fill != nil {
			fill(r, &p)
		}
		s.respondQuery(w, r, p, lang)
	}
}

func (s *Service) listDSS(w http.ResponseWriter, r *http.Request) {
	s.withPredicates(nil)(w, r)
}

func (s *Service) listByCrop(w http.ResponseWriter, r *http.Request) {
	s.withPredicates(func(r *http.Request, p *query.Predicates) {
		p.CropCodes = []string{chi.URLParam(r, "cropCode")}
	})(w, r)
}

func (s *Service) listByCrops(w http.ResponseWriter, r *http.Request) {
	s.withPredicates(func(r *http.Request, p *query.Predicates) {
		p.CropCodes = splitCodes(chi.URLParam(r, "cropCodes"))
	})(w, r)
}

func (s *Service) listByPest(w http.ResponseWriter, r *http.Request) {
	s.withPredicates(func(r *http.Request, p *query.Predicates) {
		p.PestCodes = []string{chi.URLParam(r, "pestCode")}
	})(w, r)
}

func (s *Service) listByPests(w http.ResponseWriter, r *http.Request) {
	s.withPredicates(func(r *http.Request, p *query.Predicates) {
		p.PestCodes = splitCodes(chi.URLParam(r, "pestCodes"))
	})(w, r)
}

func (s *Service) listByCropAndPest(w http.ResponseWriter, r *http.Request) {
	s.withPredicates(func(r *http.Request, p *query.Predicates) {
		p.CropCodes = []string{chi.URLParam(r, "cropCode")}
		p.PestCodes = []string{chi.URLParam(r, "pestCode")}
	})(w, r)
}

func (s *Service) getDSS(w http.ResponseWriter, r *http.Request) {
	p, lang, err := commonPredicates(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := chi.URLParam(r, "dssID")
	res, err := s.search(r.Context(), p, lang)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	d, ok := query.FindDSS(res, id)
	if !ok {
		writeError(w, http.StatusNotFound, "Could not find DSS with id "+id)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Service) getModel(w http.ResponseWriter, r *http.Request) {
	p, lang, err := commonPredicates(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	dssID, modelID := chi.URLParam(r, "dssID"), chi.URLParam(r, "modelID")
	res, err := s.search(r.Context(), p, lang)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if _, ok := query.FindDSS(res, dssID); !ok {
		writeError(w, http.StatusNotFound, "Could not find DSS with id "+dssID)
		return
	}
	m, ok := query.FindModel(res, dssID, modelID)
	if !ok {
		writeError(w, http.StatusNotFound, "Could not find DSS Model with id "+modelID+" in DSS with id "+dssID)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// 文档注释：按提交的 GeoJSON 查询
// 约束：无法解析返回 400；可解析但不含几何时返回空列表。
func (s *Service) listByLocation(w http.ResponseWriter, r *http.Request) {
	p, lang, err := commonPredicates(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	b, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	gs, err := spatial.ParseGeoJSON(b)
	if err != nil {
		if errors.Is(err, spatial.ErrEmptyGeometry) {
			writeJSON(w, http.StatusOK, []catalog.DSS{})
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p.Location = orb.Collection(gs)
	s.respondQuery(w, r, p, lang)
}

func (s *Service) listByPoint(w http.ResponseWriter, r *http.Request) {
	p, lang, err := commonPredicates(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	lat, err1 := strconv.ParseFloat(r.URL.Query().Get("latitude"), 64)
	lon, err2 := strconv.ParseFloat(r.URL.Query().Get("longitude"), 64)
	if err1 != nil || err2 != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		writeError(w, http.StatusBadRequest, "latitude and longitude must be valid WGS84 decimal degrees")
		return
	}
	p.Location = spatial.NewPoint(lat, lon)
	s.respondQuery(w, r, p, lang)
}

func (s *Service) listByIP(w http.ResponseWriter, r *http.Request) {
	p, lang, err := commonPredicates(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if s.Locator == nil {
		writeError(w, http.StatusServiceUnavailable, "IP geolocation is not configured")
		return
	}
	ip := clientIP(r)
	lat, lon, err := s.Locator.Locate(ip)
	switch {
	case err == nil:
	case errors.Is(err, geoip.ErrInvalidIP):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, geoip.ErrNoDatabase):
		writeError(w, http.StatusServiceUnavailable, "IP geolocation is not configured")
		return
	default:
		logger.FromContext(r.Context()).Info("geoip_lookup_miss", "ip", ip, "err", err)
		writeError(w, http.StatusNotFound, "Could not locate IP address "+ip)
		return
	}
	logger.FromContext(r.Context()).Debug("geoip_located", "ip", ip, "lat", lat, "lon", lon)
	p.Location = spatial.NewPoint(lat, lon)
	s.respondQuery(w, r, p, lang)
}

func (s *Service) listCrops(w http.ResponseWriter, r *http.Request) {
	s.listCodes(w, r, query.Crops)
}

func (s *Service) listPests(w http.ResponseWriter, r *http.Request) {
	s.listCodes(w, r, query.Pests)
}

// listRiskMaps：风险地图提供方及其 WMS 地图列表，原样返回目录内容
func (s *Service) listRiskMaps(w http.ResponseWriter, r *http.Request) {
	rm, err := s.Catalogue.RiskMaps(r.Context())
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "No risk maps are configured")
		return
	case err != nil:
		logger.FromContext(r.Context()).Error("risk_maps_error", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rm)
}

func (s *Service) listCodes(w http.ResponseWriter, r *http.Request, pick func([]catalog.DSS) []string) {
	p, _, err := commonPredicates(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.search(r.Context(), p, "")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, pick(res))
}

func (s *Service) eppoNames(w http.ResponseWriter, r *http.Request) {
	if s.EPPO == nil {
		writeError(w, http.StatusServiceUnavailable, "EPPO lookup is not configured")
		return
	}
	codes := splitCodes(r.URL.Query().Get("codes"))
	names, err := s.EPPO.PrefNames(r.Context(), codes)
	if err != nil {
		logger.FromContext(r.Context()).Error("eppo_error", "err", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, names)
}

type validationResult struct {
	IsValid      bool   `json:"isValid"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// validateYAML：校验提交的 DSS YAML，不写入存储
func (s *Service) validateYAML(w http.ResponseWriter, r *http.Request) {
	b, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := decodeAndValidate(b); err != nil {
		writeJSON(w, http.StatusOK, validationResult{IsValid: false, ErrorMessage: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, validationResult{IsValid: true})
}

func decodeAndValidate(b []byte) (catalog.DSS, error) {
	d, err := catalog.DecodeYAML(b)
	if err != nil {
		return d, err
	}
	return d, catalog.Validate(d)
}
