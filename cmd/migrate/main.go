package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/storeratings/storeratings-backend/pkg/config"
	"github.com/storeratings/storeratings-backend/pkg/db"
	"github.com/storeratings/storeratings-backend/pkg/logger"
	"github.com/storeratings/storeratings-backend/pkg/migrate"
)

const serviceName = "storeratings-migrate"

type options struct {
	cmd     string
	dir     string
	name    string
	version string
}

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.cmd, "cmd", "up", "up|down|status|version|create|validate")
	flag.StringVar(&opts.dir, "dir", migrate.DefaultDir, "migrations directory; the default is compiled into the binary")
	flag.StringVar(&opts.name, "name", "", "migration name for -cmd=create")
	flag.StringVar(&opts.version, "version", "", "target YYYYMMDDHHMMSS for -cmd=version")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "load config", err)
		os.Exit(1)
	}
	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": opts.cmd,
		"dir": opts.dir,
	})

	if err := run(ctx, cfg, logg, opts); err != nil {
		logg.Error(ctx, "migrate failed", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger, opts options) error {
	switch opts.cmd {
	case "create":
		if opts.name == "" {
			return fmt.Errorf("missing -name for create")
		}
		path, err := migrate.CreateSQLMigration(opts.dir, opts.name)
		if err != nil {
			return err
		}
		logg.Info(logg.WithField(ctx, "path", path), "migration created")
		return nil
	case "validate":
		if err := migrate.Validate(opts.dir); err != nil {
			return err
		}
		logg.Info(ctx, "migrations valid")
		return nil
	case "version":
		if opts.version == "" {
			return fmt.Errorf("missing -version for version")
		}
	case "up", "down", "status":
	default:
		return fmt.Errorf("unknown -cmd %q", opts.cmd)
	}

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer client.Close()
	sqlDB, err := client.SQL()
	if err != nil {
		return err
	}

	switch opts.cmd {
	case "version":
		err = migrate.MigrateToVersion(ctx, sqlDB, opts.dir, opts.version)
	default:
		err = migrate.Run(ctx, sqlDB, opts.dir, opts.cmd)
	}
	if err != nil {
		return err
	}

	report, err := migrate.Inspect(ctx, sqlDB, opts.dir)
	if err != nil {
		return err
	}
	logg.Info(logg.WithFields(ctx, map[string]any{
		"schema_version": report.Current,
		"latest_version": report.Latest,
		"pending":        len(report.Pending),
	}), "schema version")
	for _, m := range report.Pending {
		logg.Debug(logg.WithField(ctx, "migration", m.Name), "pending migration")
	}
	return nil
}
