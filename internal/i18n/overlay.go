// 包 i18n：按语言覆盖 DSS 目录文本，并负责翻译包的加载与缓存
package i18n

import "strings"

// Overlay：翻译查找；键不存在返回 false，空白值与不存在同样保留默认文本
type Overlay interface {
	Get(locale, key string) (string, bool)
}

// OverlayFunc：函数适配为 Overlay
type OverlayFunc func(locale, key string) (string, bool)

func (f OverlayFunc) Get(locale, key string) (string, bool) { return f(locale, key) }

// 文档注释：单个 (DSS, locale) 的翻译包
// 背景：由 Cache 按回退链选定后交给解析器；Get 不再区分 locale。
// 约束：Entries 构建后只读，可在并发查询间共享。
type Bundle struct {
	DSSID   string
	Locale  string
	Entries map[string]string
}

func (b *Bundle) Get(_ string, key string) (string, bool) {
	if b == nil || b.Entries == nil {
		return "", false
	}
	v, ok := b.Entries[key]
	return v, ok
}

// Empty：包内无任何键（含未找到的情况）
func (b *Bundle) Empty() bool { return b == nil || len(b.Entries) == 0 }

// IsDefaultLocale：空串与 default 表示不做覆盖
func IsDefaultLocale(locale string) bool {
	l := strings.TrimSpace(locale)
	return l == "" || strings.EqualFold(l, "default")
}

// 文档注释：语言回退链
// 背景：nb-NO 与 nb_NO 视为同一写法；先找完整区域，再找语言本身。
// 返回：由具体到宽泛的候选列表；默认语言返回空列表。
func LocaleChain(locale string) []string {
	if IsDefaultLocale(locale) {
		return nil
	}
	l := strings.ReplaceAll(strings.TrimSpace(locale), "-", "_")
	out := []string{l}
	for {
		i := strings.LastIndex(l, "_")
		if i <= 0 {
			break
		}
		l = l[:i]
		out = append(out, l)
	}
	return out
}
