package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dss-api/internal/catalog"
	"dss-api/internal/logger"

	_ "github.com/lib/pq"
)

// PostgresStore：以 _dss_records 表保存 YAML 文档；归档通过 archived 标记
type PostgresStore struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *PostgresStore { return &PostgresStore{db: db} }

// Open：使用 DSN 打开数据库连接并配置连接池参数
func Open(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }

func (s *PostgresStore) DB() *sql.DB { return s.db }

// 文档注释：读取全部未归档记录
// 约束：按写入时间与 id 排序，保证输出顺序稳定；单条文档解析失败只记录日志。
func (s *PostgresStore) ListAll(ctx context.Context) ([]catalog.DSS, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, version, document FROM _dss_records WHERE archived=FALSE ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("list dss records: %w", err)
	}
	defer rows.Close()
	var out []catalog.DSS
	for rows.Next() {
		var id, version, doc string
		if err := rows.Scan(&id, &version, &doc); err != nil {
			return nil, err
		}
		d, err := catalog.DecodeYAML([]byte(doc))
		if err != nil {
			logger.L().Error("db_record_decode_error", "dss", id, "version", version, "err", err)
			continue
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	logger.L().Debug("db_catalogue_listed", "count", len(out))
	return out, nil
}

// 文档注释：新增或升级 DSS（事务内完成冲突检查、归档与写入）
// 约束：(id, version) 为主键，已归档的同版本同样视为冲突。
func (s *PostgresStore) Add(ctx context.Context, d catalog.DSS, dryRun bool) (AddResult, error) {
	d = catalog.Normalize(d)
	res := AddResult{DSS: d, DryRun: dryRun}
	doc, err := catalog.EncodeYAML(d)
	if err != nil {
		return res, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return res, err
	}
	defer func() { _ = tx.Rollback() }()

	var one int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM _dss_records WHERE id=$1 AND version=$2", d.ID, d.Version).Scan(&one)
	if err == nil {
		return res, fmt.Errorf("%w: %s %s", ErrConflict, d.ID, d.Version)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return res, err
	}
	rows, err := tx.QueryContext(ctx, "SELECT version FROM _dss_records WHERE id=$1 AND archived=FALSE FOR UPDATE", d.ID)
	if err != nil {
		return res, err
	}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return res, err
		}
		res.Archived = append(res.Archived, v)
	}
	rows.Close()
	if dryRun {
		return res, nil
	}
	if len(res.Archived) > 0 {
		if _, err := tx.ExecContext(ctx, "UPDATE _dss_records SET archived=TRUE WHERE id=$1 AND archived=FALSE", d.ID); err != nil {
			return res, err
		}
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO _dss_records(id, version, document) VALUES($1,$2,$3)", d.ID, d.Version, string(doc)); err != nil {
		return res, err
	}
	if err := tx.Commit(); err != nil {
		return res, err
	}
	logger.L().Info("db_dss_added", "dss", d.ID, "version", d.Version, "archived", res.Archived)
	return res, nil
}

// RiskMaps：读取 _dss_risk_maps 中唯一的一份目录；未导入时返回 ErrNotFound
func (s *PostgresStore) RiskMaps(ctx context.Context) (catalog.RiskMaps, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, "SELECT document FROM _dss_risk_maps WHERE id=1").Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.RiskMaps{}, ErrNotFound
	}
	if err != nil {
		return catalog.RiskMaps{}, fmt.Errorf("read risk maps: %w", err)
	}
	return catalog.DecodeRiskMapsYAML([]byte(doc))
}

// PutRiskMaps：整体替换风险地图目录
func (s *PostgresStore) PutRiskMaps(ctx context.Context, rm catalog.RiskMaps) error {
	doc, err := catalog.EncodeRiskMapsYAML(rm)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO _dss_risk_maps(id, document, updated_at) VALUES(1, $1, now())
ON CONFLICT (id) DO UPDATE SET document=EXCLUDED.document, updated_at=EXCLUDED.updated_at`, string(doc))
	if err != nil {
		return fmt.Errorf("write risk maps: %w", err)
	}
	logger.L().Info("db_risk_maps_written", "providers", len(rm.Providers))
	return nil
}
