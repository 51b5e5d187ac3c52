// Command seed-client creates a client or resets its password.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"ms-restaurant/internal/auth"
	"ms-restaurant/internal/config"
	"ms-restaurant/internal/database"
	"ms-restaurant/internal/db"
	"ms-restaurant/internal/logger"

	"github.com/joho/godotenv"
)

func main() {
	var (
		phone    = flag.String("phone", "+998997447744", "Client phone, normalized to +998...")
		password = flag.String("password", "test", "Client password")
		name     = flag.String("name", "Test Client", "Client name, kept when empty on reset")
	)
	flag.Parse()

	log := logger.NewLogger("seed-client")
	defer log.Close()
	_ = godotenv.Load()

	normalized := auth.NormalizePhone(*phone)
	if normalized == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "Error: --phone and --password are required")
		os.Exit(2)
	}

	path, err := database.ResolvePath(config.Load().Database.Path)
	if err != nil {
		log.Fatal("CONFIG", err.Error())
	}
	ctx := context.Background()
	bunDB, err := database.Open(ctx, path)
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}
	defer bunDB.Close()

	salt, hash, err := auth.HashPassword(*password)
	if err != nil {
		log.Fatal("AUTH", err.Error())
	}
	if _, err := db.New(bunDB).UpsertClientCredentials(ctx, normalized, *name, salt, hash); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to seed client: %v", err))
	}
	fmt.Println("Test client is ready:", normalized)
}
