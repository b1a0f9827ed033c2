// 包 store：DSS 目录的存储层，提供文件目录与 PostgreSQL 两种实现
package store

import (
	"context"
	"errors"

	"dss-api/internal/catalog"
)

var (
	// ErrConflict：相同 (id, version) 的记录已存在
	ErrConflict = errors.New("dss with same id and version already exists")
	// ErrNotFound：风险地图目录尚未配置
	ErrNotFound = errors.New("risk maps not configured")
)

// 文档注释：目录存储接口
// 背景：查询引擎只读全部记录，不在存储层过滤；新增与归档只走管理端写路径。
// 约束：ListAll 返回的记录已规范化，顺序稳定；实现方负责写路径与并发读之间的互斥。
type Catalogue interface {
	ListAll(ctx context.Context) ([]catalog.DSS, error)
	Add(ctx context.Context, d catalog.DSS, dryRun bool) (AddResult, error)
	RiskMaps(ctx context.Context) (catalog.RiskMaps, error)
}

// AddResult：新增结果；Archived 为被替换的旧版本（可能为空）
type AddResult struct {
	DSS      catalog.DSS
	Archived []string
	DryRun   bool
}
