package i18n

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"dss-api/internal/logger"

	_ "github.com/lib/pq"
)

// ErrBundleNotFound：指定 (DSS, locale) 没有翻译包，调用方按默认语言处理
var ErrBundleNotFound = errors.New("i18n bundle not found")

// Source：翻译包来源
type Source interface {
	Load(ctx context.Context, dssID, locale string) (map[string]string, error)
}

// 文档注释：目录型翻译来源
// 背景：文件命名 <dssId>_<locale>.properties，放在目录文件旁的 i18n 子目录。
type PropertiesSource struct {
	Dir string
}

func (s PropertiesSource) Load(_ context.Context, dssID, locale string) (map[string]string, error) {
	fp := filepath.Join(s.Dir, dssID+"_"+locale+".properties")
	f, err := os.Open(fp)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrBundleNotFound
		}
		return nil, err
	}
	defer f.Close()
	m, err := ParseProperties(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fp, err)
	}
	logger.L().Debug("i18n_properties_loaded", "file", fp, "keys", len(m))
	return m, nil
}

// 文档注释：数据库型翻译来源（表 _dss_i18n）
// 约束：无任何行时返回 ErrBundleNotFound；表结构由 migrate 创建。
type PostgresSource struct {
	DB *sql.DB
}

func (s PostgresSource) Load(ctx context.Context, dssID, locale string) (map[string]string, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT key, value FROM _dss_i18n WHERE dss_id=$1 AND locale=$2", dssID, locale)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	m := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		m[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(m) == 0 {
		return nil, ErrBundleNotFound
	}
	logger.L().Debug("i18n_db_loaded", "dss", dssID, "locale", locale, "keys", len(m))
	return m, nil
}

// 文档注释：写入或覆盖单条译文
// 背景：供导入工具使用；以 (dss_id, locale, key) 为唯一键。
func (s PostgresSource) Upsert(ctx context.Context, dssID, locale string, entries map[string]string) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO _dss_i18n(dss_id, locale, key, value)
        VALUES($1,$2,$3,$4)
        ON CONFLICT (dss_id, locale, key) DO UPDATE SET value=EXCLUDED.value, updated_at=now()`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for k, v := range entries {
		if _, err := stmt.ExecContext(ctx, dssID, locale, k, v); err != nil {
			return fmt.Errorf("upsert %s: %w", k, err)
		}
	}
	return tx.Commit()
}
