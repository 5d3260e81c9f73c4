package main

import (
	"log"

	"freshcart/internal/config"
	"freshcart/internal/database"
	"freshcart/internal/migrations"
)

// Standalone database initializer: connects, migrates and seeds the default
// accounts without starting the server.
func main() {
	cfg := config.Load()

	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := migrations.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	log.Println("Database initialized")
}
