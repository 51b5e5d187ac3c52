// Command migrate applies or rolls back the embedded schema against DATABASE_URL.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"ms-restaurant/internal/auth"
	"ms-restaurant/internal/config"
	"ms-restaurant/internal/database"
	"ms-restaurant/internal/database/migrations"
	"ms-restaurant/internal/db"
	"ms-restaurant/internal/logger"

	"github.com/joho/godotenv"
)

const (
	seedPhone    = "+998997447744"
	seedPassword = "test"
	seedName     = "Test Client"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: migrate <up|down|version|seed|goto N>\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	log := logger.NewLogger("migrate")
	defer log.Close()
	_ = godotenv.Load()
	cfg := config.Load()

	path, err := database.ResolvePath(cfg.Database.Path)
	if err != nil {
		log.Fatal("CONFIG", err.Error())
	}
	ctx := context.Background()
	bunDB, err := database.Open(ctx, path)
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}
	runner := migrations.NewRunner(bunDB, migrations.DefaultOptions(), log)
	defer runner.Close()

	switch cmd := flag.Arg(0); cmd {
	case "up":
		err = runner.RunMigrations()
	case "down":
		err = runner.MigrateDown()
	case "goto":
		var version uint64
		version, err = strconv.ParseUint(flag.Arg(1), 10, 32)
		if err == nil {
			err = runner.MigrateTo(uint(version))
		}
	case "version":
		var version uint
		if version, err = runner.Version(); err == nil {
			fmt.Println(version)
		}
	case "seed":
		if err = runner.RunMigrations(); err == nil {
			err = seed(ctx, db.New(bunDB), log)
		}
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal("MIGRATION", err.Error())
	}
}

// seed prepares the test client used against a local POS sandbox.
func seed(ctx context.Context, store *db.DB, log *logger.Logger) error {
	salt, hash, err := auth.HashPassword(seedPassword)
	if err != nil {
		return err
	}
	created, err := store.UpsertClientCredentials(ctx, seedPhone, seedName, salt, hash)
	if err != nil {
		return fmt.Errorf("seed client: %w", err)
	}
	action := "reset"
	if created {
		action = "created"
	}
	log.LogDatabase("SEED", "clients", fmt.Sprintf("Test client %s %s", seedPhone, action))
	return nil
}
