package i18n

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"dss-api/internal/catalog"
	"dss-api/internal/jsontree"
)

// schema 中可翻译叶子的末段键
var schemaTextKeys = map[string]bool{
	"title":       true,
	"description": true,
	"infoText":    true,
}

// 文档注释：对 DSS 应用语言覆盖，返回新的记录
// 背景：覆盖而非替换；键缺失或值为空白时保留默认语言文本。overlay 为 nil 或默认语言时为恒等变换。
// 约束：入参记录不被修改；某个模型的 input_schema 无法解析时该模型 schema 保持原文，
// 其他字段与其余模型照常翻译。
// 返回：各模型的 schema 错误以 errors.Join 合并返回，记录本身始终可用。
func ResolveLocale(dss catalog.DSS, locale string, ov Overlay) (catalog.DSS, error) {
	out := dss.Clone()
	if ov == nil || IsDefaultLocale(locale) {
		return out, nil
	}
	tr := func(key, def string) string {
		if v, ok := ov.Get(locale, key); ok && strings.TrimSpace(v) != "" {
			return v
		}
		return def
	}
	base := dss.Key()
	out.Name = tr(base+".name", out.Name)

	var errs []error
	for i := range out.Models {
		m := &out.Models[i]
		mp := modelPath(base, m.ID)
		m.Name = tr(mp+".name", m.Name)
		m.Purpose = tr(mp+".purpose", m.Purpose)
		m.Description = tr(mp+".description", m.Description)
		if o := m.Output; o != nil {
			o.ChartHeading = tr(mp+".output.chart_heading", o.ChartHeading)
			for j := range o.WarningStatusInterpretation {
				w := &o.WarningStatusInterpretation[j]
				wp := mp + ".output.warning_status_interpretation." + strconv.Itoa(j)
				w.Explanation = tr(wp+".explanation", w.Explanation)
				w.RecommendedAction = tr(wp+".recommended_action", w.RecommendedAction)
			}
			for j := range o.ChartGroups {
				cg := &o.ChartGroups[j]
				if strings.TrimSpace(cg.ID) == "" {
					continue
				}
				cg.Title = tr(mp+".output.chart_groups."+cg.ID+".title", cg.Title)
			}
			for j := range o.ResultParameters {
				rp := &o.ResultParameters[j]
				if strings.TrimSpace(rp.ID) == "" {
					continue
				}
				rpp := mp + ".output.result_parameters." + rp.ID
				rp.Title = tr(rpp+".title", rp.Title)
				rp.Description = tr(rpp+".description", rp.Description)
			}
		}
		schema, err := translateSchema(m.Execution.InputSchema, mp+".execution.input_schema.", tr)
		if err != nil {
			errs = append(errs, fmt.Errorf("model %s: %w", m.ID, err))
			continue
		}
		m.Execution.InputSchema = schema
	}
	return out, errors.Join(errs...)
}

// translateSchema：展开 schema，按前缀+路径查找译文后重建；无改动时原样返回文本
func translateSchema(src, prefix string, tr func(key, def string) string) (string, error) {
	if strings.TrimSpace(src) == "" {
		return src, nil
	}
	doc, err := jsontree.Parse(src)
	if err != nil {
		return src, fmt.Errorf("input_schema: %w", err)
	}
	leaves := jsontree.Flatten(doc)
	changed := false
	for i, l := range leaves {
		s, ok := l.Value.(string)
		if !ok || !schemaTextKeys[l.Path.Last()] {
			continue
		}
		if v := tr(prefix+l.Path.Dotted(), s); v != s {
			leaves[i].Value = v
			changed = true
		}
	}
	if !changed {
		return src, nil
	}
	rebuilt, err := jsontree.Unflatten(leaves)
	if err != nil {
		return src, fmt.Errorf("input_schema: %w", err)
	}
	return jsontree.Encode(rebuilt)
}

func modelPath(base, modelID string) string { return base + ".models." + modelID }
