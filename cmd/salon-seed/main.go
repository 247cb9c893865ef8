// Command salon-seed loads the demo hairdressers and service menu into Postgres.
// Run it after the migrations. It is safe to run repeatedly.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"salonbook/backend/internal/config"
	"salonbook/backend/internal/seed"
	"salonbook/backend/internal/store/postgres"
	"salonbook/backend/internal/store/rediscache"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(slog.String("service", "salon-seed"))

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := postgres.Open(ctx, cfg.DatabaseURL, postgres.PoolConfig{MaxOpenConns: 2, MaxIdleConns: 1})
	if err != nil {
		log.Error("database connection failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer func() {
		if err := postgres.Close(db); err != nil {
			log.Warn("database close failed", slog.Any("err", err))
		}
	}()

	services := postgres.NewServiceRepo(db)
	if err := seed.Demo(ctx, services, postgres.NewUserRepo(db)); err != nil {
		log.Error("seed failed", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("seed complete", slog.Int("hairdressers", len(seed.Staff)), slog.Int("services", len(seed.Services)))

	if cfg.RedisAddr == "" {
		return
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	defer func() { _ = rdb.Close() }()
	if err := rediscache.NewCatalogCache(rdb, services, cfg.CatalogTTL, log).Invalidate(ctx); err != nil {
		log.Warn("catalog cache invalidation failed", slog.Any("err", err))
		return
	}
	log.Info("catalog cache invalidated")
}
