package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"dss-api/internal/catalog"
	"dss-api/internal/logger"
)

// 风险地图目录相对目录根的位置
var riskMapsFile = filepath.Join("risk_maps", "risk_maps.yaml")

// 归档后缀：被新版本替换的文件改名为 <id>_<version>.yaml_bak，不再参与列表
const archiveSuffix = ".yaml_bak"

// 文档注释：目录型目录存储
// 背景：每个 DSS 一个 YAML 文件，文件名 <id>_<version>.yaml（. 替换为 _）。
// 约束：读写锁保证新增/归档期间不会读到半写入的文件；单个文件解析失败只记录日志并跳过。
type FileStore struct {
	Dir string
	mu  sync.RWMutex
}

func NewFileStore(dir string) *FileStore { return &FileStore{Dir: dir} }

type fileRecord struct {
	path string
	dss  catalog.DSS
}

func (s *FileStore) ListAll(ctx context.Context) ([]catalog.DSS, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]catalog.DSS, len(recs))
	for i, r := range recs {
		out[i] = r.dss
	}
	return out, nil
}

func (s *FileStore) list(ctx context.Context) ([]fileRecord, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("read catalogue dir: %w", err)
	}
	var out []fileRecord
	for _, ent := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if ent.IsDir() || !strings.HasSuffix(ent.Name(), ".yaml") {
			continue
		}
		fp := filepath.Join(s.Dir, ent.Name())
		b, err := os.ReadFile(fp)
		if err != nil {
			logger.L().Error("catalogue_read_error", "file", fp, "err", err)
			continue
		}
		d, err := catalog.DecodeYAML(b)
		if err != nil {
			logger.L().Error("catalogue_decode_error", "file", fp, "err", err)
			continue
		}
		out = append(out, fileRecord{path: fp, dss: d})
	}
	logger.L().Debug("catalogue_listed", "dir", s.Dir, "count", len(out))
	return out, nil
}

// 文档注释：新增或升级 DSS
// 背景：同 id 同 version 拒绝；同 id 不同 version 时旧文件归档，新文件按新版本命名。
// 约束：dryRun 只做校验与冲突检查，不改动磁盘。
func (s *FileStore) Add(ctx context.Context, d catalog.DSS, dryRun bool) (AddResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d = catalog.Normalize(d)
	res := AddResult{DSS: d, DryRun: dryRun}
	recs, err := s.list(ctx)
	if err != nil {
		return res, err
	}
	var old []fileRecord
	for _, r := range recs {
		if r.dss.ID != d.ID {
			continue
		}
		if r.dss.Version == d.Version {
			return res, fmt.Errorf("%w: %s %s", ErrConflict, d.ID, d.Version)
		}
		old = append(old, r)
		res.Archived = append(res.Archived, r.dss.Version)
	}
	if dryRun {
		return res, nil
	}
	b, err := catalog.EncodeYAML(d)
	if err != nil {
		return res, err
	}
	for _, r := range old {
		dst := filepath.Join(s.Dir, r.dss.FileName()+archiveSuffix)
		if err := os.Rename(r.path, dst); err != nil {
			return res, fmt.Errorf("archive %s: %w", r.path, err)
		}
		logger.L().Info("catalogue_archived", "dss", r.dss.ID, "version", r.dss.Version, "file", dst)
	}
	fp := filepath.Join(s.Dir, d.FileName()+".yaml")
	tmp := fp + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return res, fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, fp); err != nil {
		return res, fmt.Errorf("write %s: %w", fp, err)
	}
	logger.L().Info("catalogue_added", "dss", d.ID, "version", d.Version, "file", fp)
	return res, nil
}

// RiskMaps：读取 <Dir>/risk_maps/risk_maps.yaml；文件不存在返回 ErrNotFound
func (s *FileStore) RiskMaps(ctx context.Context) (catalog.RiskMaps, error) {
	if err := ctx.Err(); err != nil {
		return catalog.RiskMaps{}, err
	}
	fp := filepath.Join(s.Dir, riskMapsFile)
	b, err := os.ReadFile(fp)
	if errors.Is(err, fs.ErrNotExist) {
		return catalog.RiskMaps{}, ErrNotFound
	}
	if err != nil {
		return catalog.RiskMaps{}, fmt.Errorf("read risk maps: %w", err)
	}
	return catalog.DecodeRiskMapsYAML(b)
}
