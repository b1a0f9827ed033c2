package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"dss-api/internal/catalog"
	"dss-api/internal/i18n"
	"dss-api/internal/logger"
	"dss-api/internal/query"
	"dss-api/internal/store"

	"github.com/go-chi/chi/v5"
)

func (s *Service) heartbeat(w http.ResponseWriter, r *http.Request) {
	writeBody(w, http.StatusOK, "text/plain; charset=utf-8", []byte("Alive and well"))
}

// 文档注释：新增或升级 DSS
// 背景：请求体为 YAML；校验失败 400，同 id 同版本 409；成功后返回写入的 YAML。
// 约束：只有 dryRun=true 才视为演练；非演练成功后清空响应缓存。
func (s *Service) addDSS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	b, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	d, err := decodeAndValidate(b)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	dryRun := r.URL.Query().Get("dryRun") == "true"
	res, err := s.Catalogue.Add(ctx, d, dryRun)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			writeError(w, http.StatusConflict, fmt.Sprintf("The DSS %s already exists in the given version (%s). We won't overwrite it. Please check your input data.", d.Name, d.Version))
			return
		}
		logger.FromContext(ctx).Error("dss_add_error", "dss", d.ID, "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	logger.FromContext(ctx).Info("dss_add", "dss", d.ID, "version", d.Version, "dry_run", dryRun, "archived", res.Archived)
	if !dryRun {
		if _, err := s.Cache.Flush(ctx); err != nil {
			logger.FromContext(ctx).Warn("response_cache_flush_error", "err", err)
		}
	}
	out, err := catalog.EncodeYAML(res.DSS)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeBody(w, http.StatusOK, "application/x-yaml; charset=utf-8", out)
}

// 文档注释：导出翻译模板 CSV
// 约束：使用未翻译的目录记录；带 platform_validated 时只导出对应验证状态的模型。
func (s *Service) i18nCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "dssID")
	var p query.Predicates
	if v := chi.URLParam(r, "platformValidated"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid platformValidated "+strconv.Quote(v))
			return
		}
		p.PlatformValidated = query.Bool(b)
	}
	res, err := s.search(ctx, p, "")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	d, ok := query.FindDSS(res, id)
	if !ok {
		writeError(w, http.StatusNotFound, "A DSS with id="+id+" was not found.")
		return
	}
	rows, err := i18n.TranslatableKeys(d)
	if err != nil {
		logger.FromContext(ctx).Warn("i18n_keys_partial", "dss", id, "err", err)
	}
	var buf bytes.Buffer
	if err := i18n.WriteCSV(&buf, rows); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("content-disposition", `attachment; filename="`+d.FileName()+`.csv"`)
	writeBody(w, http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// 文档注释：上传翻译包（.properties 格式）
// 约束：仅数据库后端支持写入，文件后端返回 501；写入后失效翻译缓存与响应缓存。
func (s *Service) uploadBundle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.BundleSink == nil {
		writeError(w, http.StatusNotImplemented, "translation upload requires the postgres i18n backend")
		return
	}
	id := chi.URLParam(r, "dssID")
	// 按查找时的写法保存，nb-NO 与 nb_NO 落到同一个包
	chain := i18n.LocaleChain(chi.URLParam(r, "locale"))
	if len(chain) == 0 {
		writeError(w, http.StatusBadRequest, "cannot upload translations for the default locale")
		return
	}
	locale := chain[0]
	entries, err := i18n.ParseProperties(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.BundleSink.Upsert(ctx, id, locale, entries); err != nil {
		logger.FromContext(ctx).Error("i18n_upload_error", "dss", id, "locale", locale, "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.Bundles.Invalidate()
	if _, err := s.Cache.Flush(ctx); err != nil {
		logger.FromContext(ctx).Warn("response_cache_flush_error", "err", err)
	}
	logger.FromContext(ctx).Info("i18n_uploaded", "dss", id, "locale", locale, "keys", len(entries))
	writeJSON(w, http.StatusOK, map[string]int{"keys": len(entries)})
}

// 文档注释：刷新派生数据
// 背景：重建国家边界、重新打开定位库、清空有效范围缓存、翻译缓存与响应缓存。
// 约束：边界重建失败时保留旧边界并返回 500；定位库是可选依赖，重开失败只记录日志并沿用旧库。
func (s *Service) refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var refreshErr error
	if s.Boundaries != nil {
		refreshErr = s.Boundaries.Refresh()
	}
	if s.Matcher != nil {
		s.Matcher.Reset()
	}
	geoipOK := true
	if s.GeoIP != nil {
		if err := s.GeoIP.Reload(); err != nil {
			geoipOK = false
			logger.FromContext(ctx).Error("geoip_reload_error", "err", err)
		}
	}
	s.Bundles.Invalidate()
	flushed, err := s.Cache.Flush(ctx)
	if err != nil {
		logger.FromContext(ctx).Warn("response_cache_flush_error", "err", err)
	}
	logger.FromContext(ctx).Info("admin_refresh", "boundaries_ok", refreshErr == nil, "geoip_ok", geoipOK, "flushed", flushed)
	if refreshErr != nil {
		writeError(w, http.StatusInternalServerError, refreshErr.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
