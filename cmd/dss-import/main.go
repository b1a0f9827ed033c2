// 数据导入工具：把目录中的 DSS YAML、风险地图目录与 .properties 翻译包导入 PostgreSQL
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"

	"dss-api/internal/config"
	"dss-api/internal/i18n"
	"dss-api/internal/logger"
	"dss-api/internal/migrate"
	"dss-api/internal/store"
	"dss-api/internal/utils"
)

// bundleName：<dssId>_<locale>.properties；DSS id 以点分隔，不含下划线；语言按查找时的写法返回
func bundleName(file string) (dssID, locale string, ok bool) {
	base := strings.TrimSuffix(filepath.Base(file), ".properties")
	i := strings.Index(base, "_")
	if i <= 0 || i == len(base)-1 {
		return "", "", false
	}
	chain := i18n.LocaleChain(base[i+1:])
	if len(chain) == 0 {
		return "", "", false
	}
	return base[:i], chain[0], true
}

func main() {
	config.LoadDotenv()
	cfg := config.Load()
	dir := flag.String("dir", cfg.CatalogueDir, "directory containing DSS *.yaml files")
	i18nDir := flag.String("i18n", cfg.I18nDir, "directory containing <dssId>_<locale>.properties files; empty to skip")
	dryRun := flag.Bool("dry-run", false, "check for conflicts without writing")
	flag.Parse()
	l := logger.Setup()
	ctx := context.Background()

	db, err := utils.OpenPostgresFromEnv()
	if err != nil {
		l.Error("db_open_error", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := migrate.EnsureSchema(db); err != nil {
		l.Error("schema_error", "err", err)
		os.Exit(1)
	}

	list, err := store.NewFileStore(*dir).ListAll(ctx)
	if err != nil {
		l.Error("catalogue_error", "err", err)
		os.Exit(1)
	}
	pg := store.AttachDB(db)
	var added, skipped int
	for _, d := range list {
		res, err := pg.Add(ctx, d, *dryRun)
		switch {
		case errors.Is(err, store.ErrConflict):
			skipped++
			l.Info("import_skip_existing", "dss", d.ID, "version", d.Version)
		case err != nil:
			l.Error("import_error", "dss", d.ID, "err", err)
			os.Exit(1)
		default:
			added++
			l.Info("import_dss", "dss", d.ID, "version", d.Version, "archived", res.Archived, "dry_run", *dryRun)
		}
	}

	riskMaps := false
	switch rm, err := store.NewFileStore(*dir).RiskMaps(ctx); {
	case errors.Is(err, store.ErrNotFound):
		l.Info("import_risk_maps_absent", "dir", *dir)
	case err != nil:
		l.Error("import_risk_maps_error", "err", err)
		os.Exit(1)
	case *dryRun:
		l.Info("import_risk_maps", "providers", len(rm.Providers), "dry_run", true)
	default:
		if err := pg.PutRiskMaps(ctx, rm); err != nil {
			l.Error("import_risk_maps_error", "err", err)
			os.Exit(1)
		}
		riskMaps = true
	}

	var bundles int
	if *i18nDir != "" && !*dryRun {
		files, _ := filepath.Glob(filepath.Join(*i18nDir, "*.properties"))
		src := i18n.PostgresSource{DB: db}
		for _, f := range files {
			id, locale, ok := bundleName(f)
			if !ok {
				l.Warn("import_bundle_name_skip", "file", f)
				continue
			}
			fh, err := os.Open(f)
			if err != nil {
				l.Error("import_bundle_open_error", "file", f, "err", err)
				continue
			}
			entries, err := i18n.ParseProperties(fh)
			fh.Close()
			if err != nil {
				l.Error("import_bundle_parse_error", "file", f, "err", err)
				continue
			}
			if err := src.Upsert(ctx, id, locale, entries); err != nil {
				l.Error("import_bundle_error", "file", f, "err", err)
				os.Exit(1)
			}
			bundles++
			l.Info("import_bundle", "dss", id, "locale", locale, "keys", len(entries))
		}
	}
	l.Info("import_done", "added", added, "skipped", skipped, "risk_maps", riskMaps, "bundles", bundles)
}
