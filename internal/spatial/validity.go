package spatial

import (
	"fmt"
	"strings"
	"sync"

	"dss-api/internal/catalog"
	"dss-api/internal/logger"
	"dss-api/internal/metrics"

	"github.com/paulmach/orb"
)

// Validity：模型有效范围；Global 为真时 Geometries 不参与判定
type Validity struct {
	Global     bool
	Geometries []orb.Geometry
}

// Intersects：任一查询几何与任一有效几何相交即为真；空查询恒为假
func (v Validity) Intersects(query orb.Geometry) bool {
	if IsEmpty(query) {
		return false
	}
	if v.Global {
		return true
	}
	for _, g := range v.Geometries {
		if Intersects(query, g) {
			return true
		}
	}
	return false
}

// Resolver：把 valid_spatial 描述转换为几何集合
type Resolver struct {
	Boundaries BoundaryProvider
}

// 文档注释：解析模型有效范围
// 背景：覆盖标签通常在加载时确定，未判定的记录现场判定；全球覆盖直接短路，不解析国家与几何文档。
// 约束：国家边界与自定义几何取并集；未知国家代码不贡献几何。
// 返回：自定义几何无法解析时仍返回国家部分，并附带错误。
func (r *Resolver) Resolve(vs catalog.ValidSpatial) (Validity, error) {
	switch catalog.CoverageOf(vs) {
	case catalog.CoverageGlobal:
		return Validity{Global: true}, nil
	case catalog.CoverageUnset:
		return Validity{}, nil
	}
	var v Validity
	if r.Boundaries != nil && len(vs.Countries) > 0 {
		v.Geometries = append(v.Geometries, r.Boundaries.BoundariesFor(vs.Countries)...)
	}
	if catalog.IsBlankDocument(vs.GeoJSON) {
		return v, nil
	}
	gs, err := ParseGeoJSON([]byte(vs.GeoJSON))
	if err != nil {
		return v, fmt.Errorf("valid_spatial geoJSON: %w", err)
	}
	v.Geometries = append(v.Geometries, gs...)
	return v, nil
}

// 文档注释：位置匹配器
// 背景：对外提供 MatchesLocation；解析结果按描述内容缓存，边界刷新时清空。
type Matcher struct {
	Resolver *Resolver
	cache    *validityCache
}

func NewMatcher(b BoundaryProvider) *Matcher {
	return &Matcher{Resolver: &Resolver{Boundaries: b}, cache: newValidityCache()}
}

// 文档注释：模型是否在查询位置有效
// 约束：空查询返回假；全球覆盖对任意非空查询返回真且不做几何计算；未声明范围返回假。
// 单个模型的几何错误只记录日志，按已解析部分判定。
func (m *Matcher) MatchesLocation(model catalog.Model, query orb.Geometry) bool {
	if IsEmpty(query) {
		return false
	}
	switch catalog.CoverageOf(model.ValidSpatial) {
	case catalog.CoverageGlobal:
		return true
	case catalog.CoverageUnset:
		return false
	}
	return m.validity(model).Intersects(query)
}

func (m *Matcher) validity(model catalog.Model) Validity {
	key := strings.Join(model.ValidSpatial.Countries, ",") + "\x00" + model.ValidSpatial.GeoJSON
	var tbl *sync.Map
	if m.cache != nil {
		tbl = m.cache.table()
		if v, ok := tbl.Load(key); ok {
			return v.(Validity)
		}
	}
	v, err := m.Resolver.Resolve(model.ValidSpatial)
	if err != nil {
		metrics.SpatialErrorsTotal.Inc()
		logger.L().Warn("spatial_resolve_error", "model", model.ID, "err", err)
	}
	if tbl != nil {
		// Reset 之后这张表已被丢弃，写入不可见
		tbl.Store(key, v)
	}
	return v
}

// Reset：清空已解析的有效范围，边界重建后调用
func (m *Matcher) Reset() {
	if m.cache != nil {
		m.cache.Purge()
	}
}
