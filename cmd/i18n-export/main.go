// 翻译模板导出工具：读取目录中的指定 DSS，把可翻译键与默认文本以 CSV 写到标准输出
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"dss-api/internal/config"
	"dss-api/internal/i18n"
	"dss-api/internal/logger"
	"dss-api/internal/query"
	"dss-api/internal/store"
	"dss-api/internal/utils"
)

func main() {
	config.LoadDotenv()
	cfg := config.Load()
	dssID := flag.String("dss", "", "DSS id, e.g. no.nibio.vips")
	dir := flag.String("dir", cfg.CatalogueDir, "catalogue directory (file backend)")
	validated := flag.String("platform-validated", "", "true|false to export only models with that validation status")
	flag.Parse()
	l := logger.Setup()
	if *dssID == "" {
		fmt.Fprintln(os.Stderr, "usage: i18n-export -dss <id> [-dir path] [-platform-validated true|false]")
		os.Exit(2)
	}

	var catalogue store.Catalogue = store.NewFileStore(*dir)
	if cfg.CatalogueBackend == "postgres" {
		db, err := utils.OpenPostgresFromEnv()
		if err != nil {
			l.Error("db_open_error", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		catalogue = store.AttachDB(db)
	}
	list, err := catalogue.ListAll(context.Background())
	if err != nil {
		l.Error("catalogue_error", "err", err)
		os.Exit(1)
	}
	var p query.Predicates
	switch *validated {
	case "true":
		p.PlatformValidated = query.Bool(true)
	case "false":
		p.PlatformValidated = query.Bool(false)
	}
	d, ok := query.FindDSS((&query.Engine{}).Query(list, p), *dssID)
	if !ok {
		l.Error("dss_not_found", "dss", *dssID)
		os.Exit(1)
	}
	rows, err := i18n.TranslatableKeys(d)
	if err != nil {
		l.Warn("i18n_keys_partial", "dss", d.ID, "err", err)
	}
	if err := i18n.WriteCSV(os.Stdout, rows); err != nil {
		l.Error("csv_write_error", "err", err)
		os.Exit(1)
	}
	l.Info("i18n_export_done", "dss", d.ID, "keys", len(rows))
}
