package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"dss-api/internal/logger"
	"dss-api/internal/metrics"

	"github.com/redis/go-redis/v9"
)

const cachePrefix = "dss:resp:"

// 文档注释：Redis 读穿响应缓存
// 背景：目录查询结果只在管理端新增或刷新时变化，GET 列表结果按 路径+规范化查询串 缓存。
// 约束：rc 为 nil 时不缓存；Redis 错误只记录日志，不影响响应；只缓存 200 响应。
type ResponseCache struct {
	rc  *redis.Client
	ttl time.Duration
}

func NewResponseCache(rc *redis.Client, ttl time.Duration) *ResponseCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ResponseCache{rc: rc, ttl: ttl}
}

func cacheKey(r *http.Request) string {
	return cachePrefix + r.URL.Path + "?" + r.URL.Query().Encode()
}

type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (c *captureWriter) WriteHeader(code int) {
	c.status = code
	c.ResponseWriter.WriteHeader(code)
}

func (c *captureWriter) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.buf.Write(b)
	return c.ResponseWriter.Write(b)
}

// Wrap：包装可缓存的 GET 处理器
func (c *ResponseCache) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c == nil || c.rc == nil || r.Method != http.MethodGet {
			next(w, r)
			return
		}
		ctx := r.Context()
		key := cacheKey(r)
		b, err := c.rc.Get(ctx, key).Bytes()
		if err == nil {
			metrics.RedisHitsTotal.Inc()
			w.Header().Set("x-cache", "HIT")
			writeBody(w, http.StatusOK, "application/json; charset=utf-8", b)
			return
		}
		if !errors.Is(err, redis.Nil) {
			logger.FromContext(ctx).Warn("redis_get_error", "key", key, "err", err)
		}
		metrics.RedisMissesTotal.Inc()
		cw := &captureWriter{ResponseWriter: w}
		next(cw, r)
		if cw.status == http.StatusOK {
			if err := c.rc.Set(ctx, key, cw.buf.Bytes(), c.ttl).Err(); err != nil {
				logger.FromContext(ctx).Warn("redis_set_error", "key", key, "err", err)
			}
		}
	}
}

// Flush：删除全部响应缓存键，返回删除数量
func (c *ResponseCache) Flush(ctx context.Context) (int, error) {
	if c == nil || c.rc == nil {
		return 0, nil
	}
	var cursor uint64
	n := 0
	for {
		keys, next, err := c.rc.Scan(ctx, cursor, cachePrefix+"*", 200).Result()
		if err != nil {
			return n, err
		}
		if len(keys) > 0 {
			if err := c.rc.Del(ctx, keys...).Err(); err != nil {
				return n, err
			}
			n += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	logger.L().Info("response_cache_flushed", "keys", n)
	return n, nil
}
