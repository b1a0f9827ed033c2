// 包 migrate：启动时执行内嵌的 goose 迁移，创建目录与翻译表
package migrate

import (
	"database/sql"
	"embed"

	"dss-api/internal/logger"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// 背景：首次运行自动创建 _dss_records 与 _dss_i18n，后续版本通过新增迁移文件演进
// 约束：迁移幂等，重复执行只记录当前版本
func EnsureSchema(db *sql.DB) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return err
	}
	v, err := goose.GetDBVersion(db)
	if err != nil {
		return err
	}
	logger.L().Debug("schema_done", "version", v)
	return nil
}
