// 包 query：按作物、害虫、验证标记、执行类型与位置组合过滤 DSS 目录
package query

import (
	"dss-api/internal/catalog"

	"github.com/paulmach/orb"
)

// 文档注释：查询谓词集合
// 背景：每个谓词独立可选，nil 表示未启用（而非“匹配为空”）；启用的谓词按逻辑与组合。
// 约束：CropCodes/PestCodes 为空切片同样视为未启用；ExecutionType 不在已识别集合内时忽略。
type Predicates struct {
	PlatformValidated *bool
	ExecutionType     *string
	CropCodes         []string
	PestCodes         []string
	Location          orb.Geometry
}

// LocationMatcher：位置谓词的判定方，由 spatial.Matcher 实现
type LocationMatcher interface {
	MatchesLocation(model catalog.Model, query orb.Geometry) bool
}

// Engine：查询引擎；Matcher 为 nil 时位置谓词不匹配任何模型
type Engine struct {
	Matcher LocationMatcher
}

// 文档注释：执行查询
// 背景：逐模型求值；保留下来的模型替换 DSS 的模型列表，模型为空的 DSS 整体丢弃。
// 约束：输出顺序与输入一致；输入记录不被修改，输出 DSS 持有新的模型切片。
func (e *Engine) Query(list []catalog.DSS, p Predicates) []catalog.DSS {
	out := make([]catalog.DSS, 0, len(list))
	for _, d := range list {
		var kept []catalog.Model
		for _, m := range d.Models {
			if e.matches(m, p) {
				kept = append(kept, m)
			}
		}
		if len(kept) == 0 {
			continue
		}
		d.Models = kept
		out = append(out, d)
	}
	return out
}

func (e *Engine) matches(m catalog.Model, p Predicates) bool {
	if p.PlatformValidated != nil && m.PlatformValidated != *p.PlatformValidated {
		return false
	}
	if p.ExecutionType != nil && catalog.IsValidExecutionType(*p.ExecutionType) && m.Execution.Type != *p.ExecutionType {
		return false
	}
	if len(p.CropCodes) > 0 && !containsAny(m.Crops, p.CropCodes) {
		return false
	}
	if len(p.PestCodes) > 0 && !containsAny(m.Pests, p.PestCodes) {
		return false
	}
	if p.Location != nil {
		if e.Matcher == nil || !e.Matcher.MatchesLocation(m, p.Location) {
			return false
		}
	}
	return true
}

// containsAny：两个代码集合是否有交集（精确匹配，区分大小写）
func containsAny(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

// Bool / String：构造可选谓词值
func Bool(v bool) *bool { return &v }

func String(v string) *string { return &v }
