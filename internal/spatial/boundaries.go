package spatial

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"dss-api/internal/logger"
	"dss-api/internal/metrics"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// BoundaryProvider：国家代码到边界几何；未知代码不返回任何几何
type BoundaryProvider interface {
	BoundariesFor(codes []string) []orb.Geometry
}

// 国家代码属性名，依次尝试
var countryCodeProps = []string{"ISO_A3", "ADM0_A3", "iso_a3"}

// Natural Earth 对未分配 ISO 代码的地区使用 -99
const unassignedCode = "-99"

// countryIndex：加载结果快照，只读共享
type countryIndex struct {
	byCode map[string][]orb.Geometry
}

// 文档注释：国家边界提供者
// 背景：边界文件体积大，首次使用时才解析；解析结果以 atomic 指针发布，查询路径无锁读取。
// 约束：只在 Refresh 时重建；加载失败时发布空索引并记录错误，直到下次 Refresh。
type CountryBoundaries struct {
	read func() ([]byte, error)
	idx  atomic.Pointer[countryIndex]
	mu   sync.Mutex
}

// NewCountryBoundaries：从 GeoJSON FeatureCollection 文件加载
func NewCountryBoundaries(path string) *CountryBoundaries {
	return &CountryBoundaries{read: func() ([]byte, error) { return os.ReadFile(path) }}
}

// NewCountryBoundariesFromBytes：使用内存中的文档，便于测试与嵌入
func NewCountryBoundariesFromBytes(b []byte) *CountryBoundaries {
	return &CountryBoundaries{read: func() ([]byte, error) { return b, nil }}
}

// BoundariesFor：合并给定代码的边界，重复代码只计一次
func (c *CountryBoundaries) BoundariesFor(codes []string) []orb.Geometry {
	if len(codes) == 0 {
		return nil
	}
	idx := c.ensure()
	var out []orb.Geometry
	seen := make(map[string]bool, len(codes))
	for _, code := range codes {
		if seen[code] {
			continue
		}
		seen[code] = true
		gs, ok := idx.byCode[code]
		if !ok {
			logger.L().Debug("boundary_unknown_code", "code", code)
			continue
		}
		out = append(out, gs...)
	}
	return out
}

// Codes：已加载的国家代码数量
func (c *CountryBoundaries) Codes() int { return len(c.ensure().byCode) }

func (c *CountryBoundaries) ensure() *countryIndex {
	if idx := c.idx.Load(); idx != nil {
		return idx
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if idx := c.idx.Load(); idx != nil {
		return idx
	}
	idx, err := c.build()
	if err != nil {
		logger.L().Error("boundary_load_error", "err", err)
		idx = &countryIndex{byCode: map[string][]orb.Geometry{}}
	}
	c.idx.Store(idx)
	return idx
}

// 文档注释：显式重建边界索引
// 背景：管理端刷新时调用；重建成功后原子切换，失败时保留旧快照。
func (c *CountryBoundaries) Refresh() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx, err := c.build()
	if err != nil {
		logger.L().Error("boundary_refresh_error", "err", err)
		return err
	}
	c.idx.Store(idx)
	return nil
}

func (c *CountryBoundaries) build() (*countryIndex, error) {
	begin := time.Now()
	b, err := c.read()
	if err != nil {
		metrics.BoundaryRefreshTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("read country boundaries: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(b)
	if err != nil {
		metrics.BoundaryRefreshTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("parse country boundaries: %w", err)
	}
	byCode := make(map[string][]orb.Geometry, len(fc.Features))
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		code := ""
		for _, p := range countryCodeProps {
			if code = f.Properties.MustString(p, ""); code != "" && code != unassignedCode {
				break
			}
			code = ""
		}
		if code == "" {
			continue
		}
		byCode[code] = appendGeometry(byCode[code], f.Geometry)
	}
	metrics.BoundaryRefreshTotal.WithLabelValues("ok").Inc()
	logger.L().Info("boundary_loaded", "countries", len(byCode), "duration_ms", time.Since(begin).Milliseconds())
	return &countryIndex{byCode: byCode}, nil
}
