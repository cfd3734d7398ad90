package main

import (
	"log"

	"paperforge/internal/config"
	"paperforge/internal/database"
	"paperforge/internal/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.Logger)
	l := logger.Get()
	defer l.Sync()

	db, err := database.NewMigrateSQLiteDB(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db, "database/migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
}
