// storemigrate exports the bot's JSON documents into a relational database
// for reporting and ad-hoc SQL. Safe to re-run: existing rows are skipped.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/premstore/storebot/internal/config"
	"github.com/premstore/storebot/internal/logging"
	"github.com/premstore/storebot/internal/migrate"
	"github.com/premstore/storebot/internal/storage"
)

func main() {
	var (
		dsn     = flag.String("dsn", "", "target database DSN (defaults to DATABASE_URL)")
		dataDir = flag.String("data", "", "JSON document directory (defaults to DATA_DIR)")
	)
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.New("info").Error("config load failed", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LOG_LEVEL)

	if *dsn == "" {
		*dsn = cfg.DATABASE_URL
	}
	if *dataDir == "" {
		*dataDir = cfg.DATA_DIR
	}
	if *dsn == "" {
		logger.Error("no target database: pass --dsn or set DATABASE_URL")
		os.Exit(1)
	}

	st, err := storage.NewJSONStore(*dataDir)
	if err != nil {
		logger.Error("storage init failed", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := migrate.Open(ctx, *dsn)
	if err != nil {
		logger.Error("database connect failed", "error", err)
		os.Exit(1)
	}

	if _, err := migrate.New(st, db, logger).Run(ctx); err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}
}
