// Command main fills a development database with demo users, posts and engagement.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"devhub/internal/auth"
	"devhub/internal/bootstrap"
	"devhub/internal/cache"
	"devhub/internal/config"
	"devhub/internal/repository"
	"devhub/internal/seed"
	"devhub/internal/service"
)

func main() {
	presetPath := flag.String("preset", "", "YAML preset file (defaults to the built-in preset)")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	preset := seed.DefaultPreset
	if *presetPath != "" {
		if preset, err = seed.LoadPreset(*presetPath); err != nil {
			log.Fatalf("Failed to load preset: %v", err)
		}
	}

	ctx := context.Background()
	db, rdb, err := bootstrap.InitRuntime(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	var store cache.Store = cache.NoopStore{}
	if rdb != nil {
		store = cache.NewRedisStore(rdb, cfg.CachePrefix)
		defer func() { _ = rdb.Close() }()
	}
	coordinator := cache.NewCoordinator(store)

	if *shouldClean {
		if err := seed.Clear(ctx, db); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		coordinator.InvalidateAll(ctx)
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, time.Duration(cfg.JWTTTLMinutes)*time.Minute)
	seeder := seed.NewSeeder(
		service.NewUserService(repository.NewUserRepository(db), auth.NewBcryptHasher(), tokens, nil, nil, coordinator),
		service.NewPostService(repository.NewPostRepository(db), coordinator),
		service.NewCommentService(repository.NewCommentRepository(db), coordinator),
		preset.Seed,
	)

	stats, err := seeder.Run(ctx, preset)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("Seeded %d users, %d posts, %d comments, %d likes, %d bookmarks",
		stats.Users, stats.Posts, stats.Comments, stats.Likes, stats.Bookmarks)
	log.Printf("All seeded users have the password: %s", preset.Password)
}
