// 包 utils：PostgreSQL / Redis 连接与证书工具，统一环境变量读取
package utils

import (
	"database/sql"
	"net/url"
	"os"
	"strconv"

	_ "github.com/lib/pq"
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// BuildPostgresDSNFromEnv：由 PG_* 环境变量拼接 DSN；PG_DSN 显式给出时直接使用
// 约束：用户名与密码做 URL 转义，避免特殊字符破坏 DSN
func BuildPostgresDSNFromEnv() string {
	if dsn := os.Getenv("PG_DSN"); dsn != "" {
		return dsn
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   getenv("PG_HOST", "localhost") + ":" + getenv("PG_PORT", "5432"),
		Path:   "/" + getenv("PG_DB", "dss"),
	}
	if pass := os.Getenv("PG_PASSWORD"); pass != "" {
		u.User = url.UserPassword(getenv("PG_USER", "postgres"), pass)
	} else {
		u.User = url.User(getenv("PG_USER", "postgres"))
	}
	q := url.Values{}
	q.Set("sslmode", getenv("PG_SSLMODE", "disable"))
	u.RawQuery = q.Encode()
	return u.String()
}

// OpenPostgresFromEnv：打开连接并按 PG_MAX_OPEN_CONNS / PG_MAX_IDLE_CONNS 配置连接池
func OpenPostgresFromEnv() (*sql.DB, error) {
	db, err := sql.Open("postgres", BuildPostgresDSNFromEnv())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(getenvInt("PG_MAX_OPEN_CONNS", 20))
	db.SetMaxIdleConns(getenvInt("PG_MAX_IDLE_CONNS", 10))
	return db, nil
}
