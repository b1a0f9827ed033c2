package i18n

import (
	"fmt"
	"io"

	"github.com/magiconair/properties"
)

// 文档注释：解析 .properties 翻译文件
// 背景：译者沿用既有的 properties 格式交付，文件按 UTF-8 读取。
// 约束：#/! 注释、续行、=/: 与空白分隔、\uXXXX 转义由 properties 库处理；关闭 ${} 展开，
// 译文中的占位符原样保留；重复键以后出现者为准。
func ParseProperties(r io.Reader) (map[string]string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	l := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := l.LoadBytes(b)
	if err != nil {
		return nil, fmt.Errorf("parse properties: %w", err)
	}
	return p.Map(), nil
}
