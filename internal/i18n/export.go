package i18n

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"dss-api/internal/catalog"
	"dss-api/internal/jsontree"
)

// KeyValue：翻译模板中的一行
type KeyValue struct {
	Key   string
	Value string
}

// 文档注释：列出 DSS 全部可翻译键及其默认文本
// 背景：为译者生成起始模板；键语法与 ResolveLocale 使用的完全一致。
// 约束：input_schema 无法解析的模型跳过 schema 部分并返回错误，其余键照常输出；结果按键排序。
func TranslatableKeys(dss catalog.DSS) ([]KeyValue, error) {
	props := map[string]string{}
	base := dss.Key()
	props[base+".name"] = dss.Name
	var firstErr error
	for _, m := range dss.Models {
		mp := modelPath(base, m.ID)
		props[mp+".name"] = m.Name
		props[mp+".purpose"] = m.Purpose
		props[mp+".description"] = m.Description
		if o := m.Output; o != nil {
			props[mp+".output.chart_heading"] = o.ChartHeading
			for i, w := range o.WarningStatusInterpretation {
				wp := mp + ".output.warning_status_interpretation." + strconv.Itoa(i)
				props[wp+".explanation"] = w.Explanation
				props[wp+".recommended_action"] = w.RecommendedAction
			}
			for _, cg := range o.ChartGroups {
				if strings.TrimSpace(cg.ID) != "" {
					props[mp+".output.chart_groups."+cg.ID+".title"] = cg.Title
				}
			}
			for _, rp := range o.ResultParameters {
				if strings.TrimSpace(rp.ID) != "" {
					props[mp+".output.result_parameters."+rp.ID+".title"] = rp.Title
					props[mp+".output.result_parameters."+rp.ID+".description"] = rp.Description
				}
			}
		}
		if strings.TrimSpace(m.Execution.InputSchema) == "" {
			continue
		}
		doc, err := jsontree.Parse(m.Execution.InputSchema)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("model %s: input_schema: %w", m.ID, err)
			}
			continue
		}
		for _, l := range jsontree.Flatten(doc) {
			if s, ok := l.Value.(string); ok && schemaTextKeys[l.Path.Last()] {
				props[mp+".execution.input_schema."+l.Path.Dotted()] = s
			}
		}
	}
	out := make([]KeyValue, 0, len(props))
	for k, v := range props {
		out = append(out, KeyValue{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, firstErr
}

// WriteCSV：分号分隔，所有字段加双引号，首行为 "KEY";"default"
func WriteCSV(w io.Writer, rows []KeyValue) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(`"KEY";"default"` + "\n"); err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := bw.WriteString(quote(r.Key) + ";" + quote(r.Value) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func quote(s string) string { return `"` + strings.ReplaceAll(s, `"`, `""`) + `"` }
