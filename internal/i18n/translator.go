package i18n

import (
	"context"

	"dss-api/internal/catalog"
	"dss-api/internal/logger"
	"dss-api/internal/metrics"

	"golang.org/x/sync/errgroup"
)

// Translator：把缓存与解析器组合为请求级翻译入口
type Translator struct {
	Cache *Cache
}

// 文档注释：翻译单个 DSS
// 背景：翻译失败不影响请求；包读取错误时返回默认语言副本，schema 错误仅记录日志。
func (t *Translator) Translate(ctx context.Context, dss catalog.DSS, locale string) catalog.DSS {
	if t == nil || t.Cache == nil || IsDefaultLocale(locale) {
		return dss
	}
	b, err := t.Cache.Bundle(ctx, dss.ID, locale)
	if err != nil {
		logger.L().Warn("i18n_bundle_unavailable", "dss", dss.ID, "locale", locale, "err", err)
		return dss
	}
	if b.Empty() {
		return dss
	}
	out, err := ResolveLocale(dss, locale, b)
	if err != nil {
		metrics.TranslationErrorsTotal.Inc()
		logger.L().Warn("i18n_translate_partial", "dss", dss.ID, "locale", locale, "err", err)
	}
	return out
}

// 文档注释：并发翻译整个目录
// 约束：输出顺序与输入一致；并发度受限以免同时打开过多来源连接。
func (t *Translator) TranslateAll(ctx context.Context, list []catalog.DSS, locale string) []catalog.DSS {
	if t == nil || t.Cache == nil || IsDefaultLocale(locale) {
		return list
	}
	out := make([]catalog.DSS, len(list))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i := range list {
		i := i
		g.Go(func() error {
			out[i] = t.Translate(gctx, list[i], locale)
			return nil
		})
	}
	_ = g.Wait()
	return out
}
