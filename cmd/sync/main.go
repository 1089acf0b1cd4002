package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/pokebase/pokebase-api/config"
	"github.com/pokebase/pokebase-api/internal/application"
	"github.com/pokebase/pokebase-api/internal/container"
	pginfra "github.com/pokebase/pokebase-api/internal/infrastructure/postgres"
	"github.com/pokebase/pokebase-api/internal/infrastructure/search"
	"github.com/pokebase/pokebase-api/internal/infrastructure/tcgapi"
	"github.com/pokebase/pokebase-api/internal/router"
	"github.com/pokebase/pokebase-api/pkg/helpers"
)

// Runs the set sync and then the card sync once. Exits non-zero when any
// item failed.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-sync", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: cfg.DBMaxConnLife,
		AppName:         cfg.AppName + "-sync",
	})
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = rdb.Close() }()

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetPGPool(pool)
	container.SetRedis(rdb)
	container.SetTCG(tcgapi.NewClient(cfg.TCGAPIBaseURL, cfg.TCGAPIKey, cfg.TCGAPIPageSize, cfg.TCGAPITimeout))
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			log.Fatalf("failed to init elasticsearch client: %v", err)
		}
		ix := search.NewCardIndex(es, cfg.ESCardsIndex)
		if err := ix.EnsureIndex(ctx); err != nil {
			logger.WithError(err).Warn("elasticsearch index setup failed; cards will not be indexed")
		} else {
			container.SetCardIndex(ix)
		}
	}

	svc := router.BuildServices().Sync
	failed := 0
	for _, step := range []struct {
		name string
		run  func(context.Context) (*application.SyncResult, error)
	}{
		{"sets", svc.UpdateSets},
		{"cards", svc.UpdateCards},
	} {
		res, err := step.run(ctx)
		if err != nil {
			log.Fatalf("sync %s: %v", step.name, err)
		}
		logger.WithFields(logrus.Fields{
			"step":    step.name,
			"updated": res.UpdatedCount,
			"failed":  res.FailedCount,
		}).Info(res.Message)
		failed += res.FailedCount
	}
	if failed > 0 {
		os.Exit(1)
	}
}
