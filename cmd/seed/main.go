package main

import (
	"context"
	"log"
	"time"

	"github.com/wmatuze/vbc-web-sub001/internal/config"
	"github.com/wmatuze/vbc-web-sub001/internal/seed"
	"github.com/wmatuze/vbc-web-sub001/internal/store"
)

// Seeds zones, cell groups and the first admin account into an empty
// database. Safe to re-run; populated collections are skipped.
func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	db, err := store.NewMongo(cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("mongo connect failed: %v", err)
	}
	defer func() { _ = db.Close(ctx) }()

	if err := seed.Run(ctx, db.DB, cfg.AdminEmail, cfg.DevAdminPass); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Println("seeding complete")
}
