package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"scholarship-finder/internal/config"
	"scholarship-finder/internal/db"
	"scholarship-finder/internal/repository"
	"scholarship-finder/internal/seed"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	path := flag.String("file", cfg.SeedFile, "seed YAML file")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}

	f, err := seed.Load(*path)
	if err != nil {
		logger.Fatal("load seed", zap.String("file", *path), zap.Error(err))
	}

	repos := seed.Repos{
		Users:        repository.NewPgUserRepository(pool),
		Reference:    repository.NewPgReferenceRepository(pool),
		Universities: repository.NewPgUniversityRepository(pool),
		Scholarships: repository.NewPgScholarshipRepository(pool),
	}
	if _, err := seed.Apply(ctx, logger, repos, f); err != nil {
		logger.Fatal("seed failed", zap.Error(err))
	}
}
