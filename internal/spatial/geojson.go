// 包 spatial：模型空间有效性的解析与判定（国家边界、自定义几何、全球覆盖）
package spatial

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ErrEmptyGeometry：文档可解析但不含任何几何
var ErrEmptyGeometry = errors.New("geojson contains no geometry")

// NewPoint：由纬度/经度构造点；orb 坐标顺序为 [lon, lat]
func NewPoint(lat, lon float64) orb.Point { return orb.Point{lon, lat} }

// 文档注释：解析 GeoJSON 文档为几何列表
// 背景：客户端提交与模型自定义几何都可能是 FeatureCollection、Feature 或裸几何。
// 约束：集合类几何（GeometryCollection）展开为各成员；无几何的 Feature 忽略。
// 返回：解析失败或结果为空时返回错误。
func ParseGeoJSON(b []byte) ([]orb.Geometry, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return nil, fmt.Errorf("geojson: %w", err)
	}
	var out []orb.Geometry
	switch head.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(b)
		if err != nil {
			return nil, fmt.Errorf("geojson feature collection: %w", err)
		}
		for _, f := range fc.Features {
			if f != nil && f.Geometry != nil {
				out = appendGeometry(out, f.Geometry)
			}
		}
	case "Feature":
		f, err := geojson.UnmarshalFeature(b)
		if err != nil {
			return nil, fmt.Errorf("geojson feature: %w", err)
		}
		if f.Geometry != nil {
			out = appendGeometry(out, f.Geometry)
		}
	case "":
		return nil, errors.New("geojson: missing type")
	default:
		g, err := geojson.UnmarshalGeometry(b)
		if err != nil {
			return nil, fmt.Errorf("geojson geometry: %w", err)
		}
		if g.Geometry() != nil {
			out = appendGeometry(out, g.Geometry())
		}
	}
	if len(out) == 0 {
		return nil, ErrEmptyGeometry
	}
	return out, nil
}

func appendGeometry(out []orb.Geometry, g orb.Geometry) []orb.Geometry {
	if c, ok := g.(orb.Collection); ok {
		for _, x := range c {
			out = appendGeometry(out, x)
		}
		return out
	}
	return append(out, g)
}

// IsEmpty：nil、空集合或无坐标的几何视为空查询
func IsEmpty(g orb.Geometry) bool {
	if g == nil {
		return true
	}
	switch x := g.(type) {
	case orb.Collection:
		for _, c := range x {
			if !IsEmpty(c) {
				return false
			}
		}
		return true
	case orb.MultiPoint:
		return len(x) == 0
	case orb.LineString:
		return len(x) == 0
	case orb.MultiLineString:
		return len(x) == 0
	case orb.Ring:
		return len(x) == 0
	case orb.Polygon:
		return len(x) == 0 || len(x[0]) == 0
	case orb.MultiPolygon:
		return len(x) == 0
	}
	return false
}
