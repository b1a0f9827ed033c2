package spatial

import (
	"sync"
	"sync/atomic"
)

// 文档注释：有效范围缓存
// 背景：同一模型的自定义几何在每次位置查询中都要解析；以描述内容为键缓存解析结果。
// 约束：键空间受目录规模约束，不做淘汰；边界刷新时整体替换为新表，读路径无锁。
// 写入只进入解析开始时取得的那张表，刷新前开始的解析不会污染新表。
type validityCache struct {
	m atomic.Pointer[sync.Map]
}

func newValidityCache() *validityCache {
	c := &validityCache{}
	c.m.Store(&sync.Map{})
	return c
}

// table：当前表；解析前取得，结果只写回同一张表
func (c *validityCache) table() *sync.Map { return c.m.Load() }

func (c *validityCache) Purge() { c.m.Store(&sync.Map{}) }

func (c *validityCache) Len() int {
	n := 0
	c.m.Load().Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
