// 包 middleware：入口限流与异常恢复
package middleware

import (
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"dss-api/internal/logger"
)

// 文档注释：令牌桶限流（每秒）
// 背景：目录查询涉及全量过滤与翻译，流量峰值时在入口限速，避免缓存与数据库被过载。
// 约束：不做排队，超出配额直接返回 429；每个自然秒补满一次。
type TokenBucket struct {
	capacity int
	tokens   int
	lastSec  int64
	now      func() time.Time
	mu       sync.Mutex
}

func NewTokenBucket(qps int) *TokenBucket {
	if qps <= 0 {
		qps = 50
	}
	return &TokenBucket{capacity: qps, tokens: qps, lastSec: time.Now().Unix(), now: time.Now}
}

func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	nowSec := tb.now().Unix()
	if tb.lastSec != nowSec {
		tb.lastSec = nowSec
		tb.tokens = tb.capacity
	}
	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// Wrap：组装入口中间件；enabled=false 时只做异常恢复
func Wrap(next http.Handler, enabled bool, qps int) http.Handler {
	h := Recover(next)
	if !enabled {
		return h
	}
	tb := NewTokenBucket(qps)
	logger.L().Info("rate_limit_enabled", "qps", tb.capacity)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !tb.Allow() {
			logger.FromContext(r.Context()).Debug("rate_limited", "path", r.URL.Path)
			writeError(w, http.StatusTooManyRequests, "Too many requests")
			return
		}
		h.ServeHTTP(w, r)
	})
}

// Recover：处理器 panic 时记录堆栈并返回 500
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				logger.FromContext(r.Context()).Error("handler_panic", "path", r.URL.Path, "panic", v, "stack", string(debug.Stack()))
				writeError(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(`{"errorMessage":"` + msg + `"}`))
}
