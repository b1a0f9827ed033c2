package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// 全球覆盖标记：GeoJSON 中 type 为 Sphere 的节点
const SphereType = "Sphere"

// 文档注释：补齐缺省值并推导空间覆盖标签
// 背景：下游代码可无条件遍历列表字段；platform_validated 缺省即 false（零值）。
// 约束：返回新值，不修改入参共享的切片。
func Normalize(d DSS) DSS {
	out := d.Clone()
	if out.Languages == nil {
		out.Languages = []string{}
	}
	if out.Models == nil {
		out.Models = []Model{}
	}
	for i := range out.Models {
		m := &out.Models[i]
		if m.Crops == nil {
			m.Crops = []string{}
		}
		if m.Pests == nil {
			m.Pests = []string{}
		}
		if m.Authors == nil {
			m.Authors = []Author{}
		}
		c := &m.Execution.InputSchemaCategories
		if c.Hidden == nil {
			c.Hidden = []string{}
		}
		if c.Internal == nil {
			c.Internal = []string{}
		}
		if c.Triggered == nil {
			c.Triggered = []string{}
		}
		if c.UserInit == nil {
			c.UserInit = []string{}
		}
		if c.System == nil {
			c.System = []string{}
		}
		if m.ValidSpatial.Countries == nil {
			m.ValidSpatial.Countries = []string{}
		}
		m.ValidSpatial.Coverage = ClassifyCoverage(m.ValidSpatial)
	}
	return out
}

// ClassifyCoverage：根据国家列表与 GeoJSON 文本判定覆盖类别
// 约束：非空但无法解析的 GeoJSON 视为区域型，解析错误留给空间解析阶段上报
func ClassifyCoverage(vs ValidSpatial) Coverage {
	if !IsBlankDocument(vs.GeoJSON) {
		var doc any
		if err := json.Unmarshal([]byte(vs.GeoJSON), &doc); err == nil && hasSphere(doc) {
			return CoverageGlobal
		}
		return CoverageRegional
	}
	if len(vs.Countries) > 0 {
		return CoverageRegional
	}
	return CoverageUnset
}

// CoverageOf：返回已判定的标签；未经 Normalize 的记录在此现场判定
func CoverageOf(vs ValidSpatial) Coverage {
	if vs.Coverage != CoverageUnclassified {
		return vs.Coverage
	}
	return ClassifyCoverage(vs)
}

// IsBlankDocument：空串、空白、null、{} 与 [] 都视为未声明
func IsBlankDocument(s string) bool {
	t := strings.TrimSpace(s)
	if t == "" || t == "null" {
		return true
	}
	var doc any
	if err := json.Unmarshal([]byte(t), &doc); err != nil {
		return false
	}
	switch x := doc.(type) {
	case nil:
		return true
	case map[string]any:
		return len(x) == 0
	case []any:
		return len(x) == 0
	}
	return false
}

func hasSphere(v any) bool {
	switch x := v.(type) {
	case map[string]any:
		if t, ok := x["type"].(string); ok && t == SphereType {
			return true
		}
		for _, k := range []string{"features", "geometries", "geometry"} {
			if c, ok := x[k]; ok && hasSphere(c) {
				return true
			}
		}
	case []any:
		for _, it := range x {
			if hasSphere(it) {
				return true
			}
		}
	}
	return false
}

// Key：翻译键前缀 <id>.<version 中 . 替换为 _>
func (d DSS) Key() string {
	return d.ID + "." + strings.ReplaceAll(d.Version, ".", "_")
}

// FileName：存储文件基名，id 与 version 中的 . 均替换为 _
func (d DSS) FileName() string {
	return strings.ReplaceAll(d.ID, ".", "_") + "_" + strings.ReplaceAll(d.Version, ".", "_")
}

// Model：按 id 精确查找模型
func (d DSS) Model(id string) (Model, bool) {
	for _, m := range d.Models {
		if m.ID == id {
			return m, true
		}
	}
	return Model{}, false
}

// 文档注释：深拷贝 DSS
// 背景：存储层记录可能被缓存并被并发查询共享；翻译与过滤均在副本上进行。
func (d DSS) Clone() DSS {
	out := d
	out.Languages = cloneStrings(d.Languages)
	if d.Models != nil {
		out.Models = make([]Model, len(d.Models))
		for i, m := range d.Models {
			out.Models[i] = m.Clone()
		}
	}
	return out
}

func (m Model) Clone() Model {
	out := m
	out.Crops = cloneStrings(m.Crops)
	out.Pests = cloneStrings(m.Pests)
	if m.Authors != nil {
		out.Authors = append([]Author{}, m.Authors...)
	}
	c := m.Execution.InputSchemaCategories
	out.Execution.InputSchemaCategories = InputSchemaCategories{
		Hidden:    cloneStrings(c.Hidden),
		Internal:  cloneStrings(c.Internal),
		Triggered: cloneStrings(c.Triggered),
		UserInit:  cloneStrings(c.UserInit),
		System:    cloneStrings(c.System),
	}
	out.ValidSpatial.Countries = cloneStrings(m.ValidSpatial.Countries)
	if m.Input != nil {
		in := *m.Input
		if in.Weather != nil {
			in.Weather = append([]WeatherInput{}, in.Weather...)
		}
		if in.FieldObservation != nil {
			fo := FieldObservation{Species: cloneStrings(in.FieldObservation.Species)}
			in.FieldObservation = &fo
		}
		out.Input = &in
	}
	if m.Output != nil {
		o := *m.Output
		if o.WarningStatusInterpretation != nil {
			o.WarningStatusInterpretation = append([]WarningStatus{}, o.WarningStatusInterpretation...)
		}
		if o.ChartGroups != nil {
			o.ChartGroups = make([]ChartGroup, len(m.Output.ChartGroups))
			for i, cg := range m.Output.ChartGroups {
				cg.ResultParameterIDs = cloneStrings(cg.ResultParameterIDs)
				o.ChartGroups[i] = cg
			}
		}
		if o.ResultParameters != nil {
			o.ResultParameters = append([]ResultParameter{}, o.ResultParameters...)
		}
		out.Output = &o
	}
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string{}, s...)
}

// 文档注释：管理端新增 DSS 时的结构校验
// 返回：全部问题以 errors.Join 合并；无问题返回 nil。
func Validate(d DSS) error {
	var errs []error
	if strings.TrimSpace(d.ID) == "" {
		errs = append(errs, errors.New("dss id is required"))
	}
	if strings.TrimSpace(d.Version) == "" {
		errs = append(errs, errors.New("dss version is required"))
	}
	if strings.TrimSpace(d.Name) == "" {
		errs = append(errs, errors.New("dss name is required"))
	}
	seen := make(map[string]bool, len(d.Models))
	for i, m := range d.Models {
		if m.ID == "" {
			errs = append(errs, fmt.Errorf("model #%d: id is required", i))
			continue
		}
		if seen[m.ID] {
			errs = append(errs, fmt.Errorf("model %s: duplicate id", m.ID))
		}
		seen[m.ID] = true
		if !IsValidExecutionType(m.Execution.Type) {
			errs = append(errs, fmt.Errorf("model %s: unknown execution type %q", m.ID, m.Execution.Type))
		}
		if strings.TrimSpace(m.Execution.InputSchema) != "" && !json.Valid([]byte(m.Execution.InputSchema)) {
			errs = append(errs, fmt.Errorf("model %s: input_schema is not valid JSON", m.ID))
		}
	}
	return errors.Join(errs...)
}
