package i18n

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"dss-api/internal/logger"
	"dss-api/internal/metrics"

	"golang.org/x/sync/singleflight"
)

// 文档注释：翻译包缓存
// 背景：按 (DSS, locale) 首次使用时加载，之后在并发查询间只读共享；读路径通过 atomic 指针无锁读取快照。
// 约束：仅在管理端显式刷新时失效（Invalidate）；未找到的包同样缓存为空包，避免反复探测来源。
type Cache struct {
	src   Source
	snap  atomic.Pointer[map[string]*Bundle]
	gen   atomic.Uint64
	mu    sync.Mutex
	group singleflight.Group
}

func NewCache(src Source) *Cache {
	c := &Cache{src: src}
	empty := map[string]*Bundle{}
	c.snap.Store(&empty)
	return c
}

// 文档注释：获取翻译包（按回退链）
// 背景：nb_NO 未找到时回退到 nb；全部缺失返回空包。
// 返回：默认语言返回 nil；来源读取出错时返回错误且不缓存。
func (c *Cache) Bundle(ctx context.Context, dssID, locale string) (*Bundle, error) {
	chain := LocaleChain(locale)
	if len(chain) == 0 {
		return nil, nil
	}
	key := dssID + "|" + chain[0]
	if b, ok := (*c.snap.Load())[key]; ok {
		metrics.BundleCacheHitsTotal.Inc()
		return b, nil
	}
	metrics.BundleCacheMissesTotal.Inc()
	gen := c.gen.Load()
	v, err, _ := c.group.Do(key, func() (any, error) {
		return c.load(ctx, dssID, chain)
	})
	if err != nil {
		return nil, err
	}
	b := v.(*Bundle)
	c.store(key, b, gen)
	return b, nil
}

func (c *Cache) load(ctx context.Context, dssID string, chain []string) (*Bundle, error) {
	for _, loc := range chain {
		m, err := c.src.Load(ctx, dssID, loc)
		if errors.Is(err, ErrBundleNotFound) {
			continue
		}
		if err != nil {
			logger.L().Warn("i18n_bundle_load_error", "dss", dssID, "locale", loc, "err", err)
			return nil, err
		}
		logger.L().Debug("i18n_bundle_loaded", "dss", dssID, "locale", loc, "keys", len(m))
		return &Bundle{DSSID: dssID, Locale: loc, Entries: m}, nil
	}
	logger.L().Debug("i18n_bundle_missing", "dss", dssID, "locale", chain[0])
	return &Bundle{DSSID: dssID, Locale: chain[0]}, nil
}

// store：写时复制；期间发生 Invalidate 则丢弃结果
func (c *Cache) store(key string, b *Bundle, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen.Load() != gen {
		return
	}
	old := *c.snap.Load()
	next := make(map[string]*Bundle, len(old)+1)
	for k, v := range old {
		next[k] = v
	}
	next[key] = b
	c.snap.Store(&next)
}

// Invalidate：清空全部翻译包，下次访问重新加载
func (c *Cache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen.Add(1)
	empty := map[string]*Bundle{}
	c.snap.Store(&empty)
	logger.L().Info("i18n_cache_invalidated")
}

// Len：当前缓存的包数量
func (c *Cache) Len() int { return len(*c.snap.Load()) }
