package spatial

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// 文档注释：二维相交判定
// 背景：查询几何与模型有效范围之间只需回答“是否有公共点”；边界接触计为相交。
// 约束：先做包围盒过滤，再按点/线/面两两组合精确判定；坐标视为平面经纬度，不做球面修正。
func Intersects(a, b orb.Geometry) bool {
	if IsEmpty(a) || IsEmpty(b) {
		return false
	}
	if !a.Bound().Intersects(b.Bound()) {
		return false
	}
	pa := primitives(nil, a)
	pb := primitives(nil, b)
	for _, x := range pa {
		xb := x.Bound()
		for _, y := range pb {
			if !xb.Intersects(y.Bound()) {
				continue
			}
			if intersectPrimitive(x, y) {
				return true
			}
		}
	}
	return false
}

// primitives：拆解为点、线、面三类基本几何
func primitives(out []orb.Geometry, g orb.Geometry) []orb.Geometry {
	switch x := g.(type) {
	case orb.Point:
		out = append(out, x)
	case orb.MultiPoint:
		for _, p := range x {
			out = append(out, p)
		}
	case orb.LineString:
		if len(x) > 0 {
			out = append(out, x)
		}
	case orb.MultiLineString:
		for _, l := range x {
			if len(l) > 0 {
				out = append(out, l)
			}
		}
	case orb.Ring:
		if len(x) > 0 {
			out = append(out, orb.Polygon{x})
		}
	case orb.Polygon:
		if len(x) > 0 && len(x[0]) > 0 {
			out = append(out, x)
		}
	case orb.MultiPolygon:
		for _, p := range x {
			out = primitives(out, p)
		}
	case orb.Collection:
		for _, c := range x {
			out = primitives(out, c)
		}
	case orb.Bound:
		out = append(out, x.ToPolygon())
	}
	return out
}

func intersectPrimitive(a, b orb.Geometry) bool {
	switch x := a.(type) {
	case orb.Point:
		switch y := b.(type) {
		case orb.Point:
			return x.Equal(y)
		case orb.LineString:
			return pointOnLine(x, y)
		case orb.Polygon:
			return pointInPolygon(x, y)
		}
	case orb.LineString:
		switch y := b.(type) {
		case orb.Point:
			return pointOnLine(y, x)
		case orb.LineString:
			return linesCross(x, y)
		case orb.Polygon:
			return lineTouchesPolygon(x, y)
		}
	case orb.Polygon:
		switch y := b.(type) {
		case orb.Point:
			return pointInPolygon(y, x)
		case orb.LineString:
			return lineTouchesPolygon(y, x)
		case orb.Polygon:
			return polygonsTouch(x, y)
		}
	}
	return false
}

// pointInPolygon：落在任一环边界上即视为相交，否则按外环内且不在洞内判定
func pointInPolygon(p orb.Point, poly orb.Polygon) bool {
	for _, r := range poly {
		if pointOnLine(p, orb.LineString(r)) {
			return true
		}
	}
	return planar.PolygonContains(poly, p)
}

func pointOnLine(p orb.Point, l orb.LineString) bool {
	if len(l) == 1 {
		return p.Equal(l[0])
	}
	for i := 0; i+1 < len(l); i++ {
		if orientation(l[i], l[i+1], p) == 0 && onSegment(l[i], l[i+1], p) {
			return true
		}
	}
	return false
}

func linesCross(a, b orb.LineString) bool {
	if len(a) == 1 {
		return pointOnLine(a[0], b)
	}
	if len(b) == 1 {
		return pointOnLine(b[0], a)
	}
	for i := 0; i+1 < len(a); i++ {
		for j := 0; j+1 < len(b); j++ {
			if segmentsIntersect(a[i], a[i+1], b[j], b[j+1]) {
				return true
			}
		}
	}
	return false
}

func lineTouchesPolygon(l orb.LineString, poly orb.Polygon) bool {
	for _, p := range l {
		if pointInPolygon(p, poly) {
			return true
		}
	}
	for _, r := range poly {
		if linesCross(l, orb.LineString(r)) {
			return true
		}
	}
	return false
}

// polygonsTouch：边相交，或一方顶点落在另一方内部（包含关系）
func polygonsTouch(a, b orb.Polygon) bool {
	for _, ra := range a {
		for _, rb := range b {
			if linesCross(orb.LineString(ra), orb.LineString(rb)) {
				return true
			}
		}
	}
	for _, r := range a {
		for _, p := range r {
			if pointInPolygon(p, b) {
				return true
			}
		}
	}
	for _, r := range b {
		for _, p := range r {
			if pointInPolygon(p, a) {
				return true
			}
		}
	}
	return false
}

// 线段相交：标准方向测试，共线时检查投影重叠
func segmentsIntersect(p1, p2, q1, q2 orb.Point) bool {
	o1 := orientation(p1, p2, q1)
	o2 := orientation(p1, p2, q2)
	o3 := orientation(q1, q2, p1)
	o4 := orientation(q1, q2, p2)
	if o1 != o2 && o3 != o4 {
		return true
	}
	if o1 == 0 && onSegment(p1, p2, q1) {
		return true
	}
	if o2 == 0 && onSegment(p1, p2, q2) {
		return true
	}
	if o3 == 0 && onSegment(q1, q2, p1) {
		return true
	}
	if o4 == 0 && onSegment(q1, q2, p2) {
		return true
	}
	return false
}

const epsilon = 1e-12

// orientation：0 共线，1 顺时针，2 逆时针
func orientation(a, b, c orb.Point) int {
	v := (b[1]-a[1])*(c[0]-b[0]) - (b[0]-a[0])*(c[1]-b[1])
	if v > epsilon {
		return 1
	}
	if v < -epsilon {
		return 2
	}
	return 0
}

// onSegment：已知共线时，c 是否落在 ab 的包围盒内
func onSegment(a, b, c orb.Point) bool {
	return c[0] <= max(a[0], b[0])+epsilon && c[0] >= min(a[0], b[0])-epsilon &&
		c[1] <= max(a[1], b[1])+epsilon && c[1] >= min(a[1], b[1])-epsilon
}
