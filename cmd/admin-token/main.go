// 运维工具：用 ADMIN_JWT_SECRET 签发管理员 JWT，输出到标准输出
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"dss-api/internal/auth"
	"dss-api/internal/config"
	"dss-api/internal/logger"
)

func issue(w io.Writer, secret, subject string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive, got %s", ttl)
	}
	tok, err := auth.New("", secret).Issue(subject, ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, tok)
	return err
}

func main() {
	config.LoadDotenv()
	cfg := config.Load()
	subject := flag.String("sub", "ops", "token subject")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()
	l := logger.Setup()

	if err := issue(os.Stdout, cfg.AdminJWTSecret, *subject, *ttl); err != nil {
		l.Error("token_issue_error", "err", err)
		os.Exit(1)
	}
	l.Info("token_issued", "sub", *subject, "ttl", ttl.String())
}
