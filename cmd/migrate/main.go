package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cheftrack/cheftrack-backend/pkg/config"
	"github.com/cheftrack/cheftrack-backend/pkg/database"
	"github.com/cheftrack/cheftrack-backend/pkg/logger"
	"github.com/cheftrack/cheftrack-backend/pkg/migrate"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "migration command: up|down|status|version|create|validate")
	dir := flag.String("dir", "", "goose migrations directory (default: migrations embedded in the binary)")
	name := flag.String("name", "", "migration name (for create)")
	version := flag.String("version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	cfg, err := config.Load("migrate")
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New("migrate", cfg.Server.Environment).WithLevel(cfg.Server.LogLevel)
	log.Info().Str("cmd", *cmd).Str("dir", *dir).Msg("migrate ready")

	// Commands that do not touch the database
	switch *cmd {
	case "create":
		if *name == "" {
			fail("missing -name for create")
		}
		target := *dir
		if target == "" {
			target = migrate.DefaultDir
		}
		path, err := migrate.CreateSQLMigration(target, *name, time.Now())
		if err != nil {
			fail("failed to create migration: %v", err)
		}
		fmt.Println("created migration:", path)
		return

	case "validate":
		fsys := migrate.Embedded()
		if *dir != "" {
			fsys = os.DirFS(*dir)
		}
		if err := migrate.Validate(fsys); err != nil {
			fail("migration validation failed: %v", err)
		}
		fmt.Println("migration validation passed")
		return
	}

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx := context.Background()
	sqlDB := db.DB.DB

	switch *cmd {
	case "up", "down", "status":
		if *dir != "" {
			err = migrate.RunDir(ctx, sqlDB, *dir, *cmd)
		} else {
			err = migrate.Run(ctx, sqlDB, *cmd)
		}
	case "version":
		if *version == "" {
			fail("missing -version for version command")
		}
		err = migrate.MigrateToVersion(ctx, sqlDB, *version)
	default:
		fail("unknown -cmd value: %s", *cmd)
	}

	if err != nil {
		fail("goose %s failed: %v", *cmd, err)
	}
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
