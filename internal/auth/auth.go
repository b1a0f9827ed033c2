// 包 auth：管理端鉴权，支持 MD5 令牌头与 HS256 JWT 两种方式
package auth

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"dss-api/internal/logger"

	"github.com/golang-jwt/jwt/v5"
)

// TokenHeader：管理端明文令牌请求头，服务端只保存其 MD5
const TokenHeader = "ipmdss_admin_token"

const adminRole = "admin"

var ErrUnauthorized = errors.New("unauthorized")

// Claims：管理端 JWT 载荷
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator：TokenMD5 与 JWTSecret 均为空时拒绝全部管理端请求
type Authenticator struct {
	TokenMD5  string
	JWTSecret []byte
}

func New(tokenMD5, jwtSecret string) *Authenticator {
	a := &Authenticator{TokenMD5: strings.ToLower(strings.TrimSpace(tokenMD5))}
	if jwtSecret != "" {
		a.JWTSecret = []byte(jwtSecret)
	}
	return a
}

// Authorized：任一方式通过即视为管理员
func (a *Authenticator) Authorized(r *http.Request) bool {
	if a == nil {
		return false
	}
	if t := r.Header.Get(TokenHeader); t != "" && a.TokenMD5 != "" {
		sum := md5.Sum([]byte(t))
		if subtle.ConstantTimeCompare([]byte(hex.EncodeToString(sum[:])), []byte(a.TokenMD5)) == 1 {
			return true
		}
	}
	if h := r.Header.Get("Authorization"); len(a.JWTSecret) > 0 && strings.HasPrefix(h, "Bearer ") {
		err := a.verify(strings.TrimPrefix(h, "Bearer "))
		if err == nil {
			return true
		}
		logger.FromContext(r.Context()).Debug("admin_jwt_rejected", "err", err)
	}
	return false
}

func (a *Authenticator) verify(tokenString string) error {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return a.JWTSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return err
	}
	if claims.Role != adminRole {
		return ErrUnauthorized
	}
	return nil
}

// Issue：签发管理员 JWT，供运维脚本使用
func (a *Authenticator) Issue(subject string, ttl time.Duration) (string, error) {
	if len(a.JWTSecret) == 0 {
		return "", errors.New("jwt secret not configured")
	}
	now := time.Now()
	claims := Claims{
		Role: adminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.JWTSecret)
}

// Require：包装管理端路由，未通过鉴权返回 401
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Authorized(r) {
			logger.FromContext(r.Context()).Info("admin_unauthorized", "path", r.URL.Path)
			w.Header().Set("content-type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"errorMessage":"Unauthorized"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
