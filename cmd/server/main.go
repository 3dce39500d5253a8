package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"vcregistry/internal/audit"
	"vcregistry/internal/migrations"
	"vcregistry/internal/platform/config"
	"vcregistry/internal/platform/httpserver"
	"vcregistry/internal/platform/logger"
	"vcregistry/internal/platform/metrics"
	platformredis "vcregistry/internal/platform/redis"
	"vcregistry/internal/registry/handler"
	"vcregistry/internal/registry/service"
	credentialstore "vcregistry/internal/registry/store/credential"
	guardianstore "vcregistry/internal/registry/store/guardian"
	identitystore "vcregistry/internal/registry/store/identity"
	shelterstore "vcregistry/internal/registry/store/shelter"
)

// main is the composition root: it builds the stores, the transaction
// coordinator, the audit pipeline and the service by explicit reference.
// Business logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Error("open database", "error", err.Error())
		os.Exit(1)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Error("ping database", "error", err.Error())
		os.Exit(1)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		log.Error("set migration dialect", "error", err.Error())
		os.Exit(1)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		log.Error("run migrations", "error", err.Error())
		os.Exit(1)
	}

	m := metrics.New()

	identities := identitystore.NewPostgres(db)
	guardians := guardianstore.NewPostgres(db)
	shelters := shelterstore.NewPostgres(db)
	credentials := credentialstore.NewPostgres(db)

	auditStream := make(chan audit.Event, 256)
	auditOpts := []audit.Option{}
	var kafkaSink *audit.KafkaSink
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err = audit.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaAuditTopic)
		if err != nil {
			log.Error("connect kafka", "error", err.Error())
			os.Exit(1)
		}
		defer kafkaSink.Close()
		auditOpts = append(auditOpts, audit.WithStream(auditStream))
	}
	auditor := audit.NewPublisher(audit.NewPostgres(db), auditOpts...)

	serviceOpts := []service.Option{
		service.WithTx(newRegistryPostgresTx(db)),
		service.WithMetrics(m),
	}
	redisClient, err := platformredis.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("connect redis", "error", err.Error())
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		cache := platformredis.NewIdentityCache(redisClient, cfg.CacheTTL, log)
		serviceOpts = append(serviceOpts, service.WithIdentityCache(cache))
	}

	registry := service.New(identities, guardians, shelters, credentials, auditor, log, serviceOpts...)

	router := chi.NewRouter()
	handler.New(registry, log, m).Register(router)
	router.Handle("/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting vc-registry", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if kafkaSink != nil {
		worker := audit.NewWorker(kafkaSink, auditStream, log)
		g.Go(func() error {
			if err := worker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err.Error())
		os.Exit(1)
	}
	log.Info("vc-registry stopped")
}
