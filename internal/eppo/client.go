// 包 eppo：调用 EPPO 数据服务，把 EPPO 代码解析为首选名称
package eppo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dss-api/internal/logger"
	"dss-api/internal/metrics"

	"github.com/hashicorp/go-retryablehttp"
)

const prefNamesPath = "/tools/codes2prefnames"

var ErrNoToken = errors.New("eppo auth token not configured")

// Client：带重试的 EPPO 客户端；BaseURL 形如 https://data.eppo.int/api/rest/1.0
type Client struct {
	BaseURL   string
	AuthToken string
	http      *retryablehttp.Client
}

// New：构建客户端；重试 3 次，单次请求超时 5 秒
func New(baseURL, token string) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.HTTPClient.Timeout = 5 * time.Second
	rc.Logger = logger.L()
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), AuthToken: token, http: rc}
}

type prefNamesResponse struct {
	Response string `json:"response"`
}

// 文档注释：批量查询首选名称
// 背景：上游以 "CODE;Name|CODE;Name" 的单字符串返回结果，这里解析为 map。
// 约束：空代码列表直接返回空 map；格式异常的片段跳过。
func (c *Client) PrefNames(ctx context.Context, codes []string) (map[string]string, error) {
	out := map[string]string{}
	if len(codes) == 0 {
		return out, nil
	}
	if c.AuthToken == "" {
		return nil, ErrNoToken
	}
	start := time.Now()
	metrics.EPPORequestsTotal.Inc()
	form := url.Values{}
	form.Set("authtoken", c.AuthToken)
	form.Set("intext", strings.Join(codes, "|"))
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+prefNamesPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("content-type", "application/x-www-form-urlencoded")
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.EPPOFailTotal.Inc()
		return nil, fmt.Errorf("eppo request: %w", err)
	}
	defer resp.Body.Close()
	metrics.EPPODurationMs.Observe(float64(time.Since(start).Milliseconds()))
	if resp.StatusCode >= 300 {
		metrics.EPPOFailTotal.Inc()
		return nil, fmt.Errorf("eppo status %d", resp.StatusCode)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	var pr prefNamesResponse
	if err := json.Unmarshal(b, &pr); err != nil {
		metrics.EPPOFailTotal.Inc()
		return nil, fmt.Errorf("eppo decode: %w", err)
	}
	for _, part := range strings.Split(pr.Response, "|") {
		code, name, ok := strings.Cut(part, ";")
		if !ok || strings.TrimSpace(code) == "" {
			continue
		}
		out[strings.TrimSpace(code)] = strings.TrimSpace(name)
	}
	logger.FromContext(ctx).Debug("eppo_pref_names", "requested", len(codes), "resolved", len(out))
	return out, nil
}
