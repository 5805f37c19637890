package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/buildvault/bimlibrary/internal/config"
	"github.com/buildvault/bimlibrary/internal/infra/blob"
	"github.com/buildvault/bimlibrary/internal/infra/cache"
	"github.com/buildvault/bimlibrary/internal/infra/database"
	mq "github.com/buildvault/bimlibrary/internal/infra/queue"
	"github.com/buildvault/bimlibrary/internal/infra/telemetry"
	"github.com/buildvault/bimlibrary/internal/infra/translate"
	"github.com/buildvault/bimlibrary/internal/modules/handler"
	"github.com/buildvault/bimlibrary/internal/modules/repo"
	"github.com/buildvault/bimlibrary/internal/modules/service"
	"github.com/buildvault/bimlibrary/internal/pkg/logger"
	"github.com/buildvault/bimlibrary/internal/pkg/metrics"
	"github.com/buildvault/bimlibrary/internal/server"
)

func main() {
	cfg, err := config.Load(os.Getenv("BIMLIB_CONFIG_DIR"))
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.App.Env, cfg.Log.Level)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, cfg)
	if err != nil {
		log.Fatal("failed to initialize telemetry", zap.Error(err))
	}
	defer shutdownTracing(context.Background())

	injector := do.New()
	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, log)

	do.Provide(injector, func(i *do.Injector) (*gorm.DB, error) {
		db, err := database.New(cfg)
		if err != nil {
			return nil, err
		}
		return db, database.Migrate(db)
	})

	do.Provide(injector, func(i *do.Injector) (*blob.S3Deps, error) {
		return blob.NewS3(ctx, cfg)
	})

	do.Provide(injector, func(i *do.Injector) (*redis.Client, error) {
		return cache.NewRedis(cfg)
	})

	do.Provide(injector, func(i *do.Injector) (*metrics.HTTPMetrics, error) {
		return metrics.NewHTTPMetrics(cfg.App.Name), nil
	})

	db := do.MustInvoke[*gorm.DB](injector)

	if cfg.DB.SeedDevTenant != "" && cfg.App.Env != "production" {
		tenantID, err := uuid.Parse(cfg.DB.SeedDevTenant)
		if err != nil {
			log.Fatal("invalid seed tenant id", zap.Error(err))
		}
		if err := database.SeedDev(db, tenantID); err != nil {
			log.Fatal("failed to seed reference data", zap.Error(err))
		}
	}

	s3 := do.MustInvoke[*blob.S3Deps](injector)
	rdb := do.MustInvoke[*redis.Client](injector)
	m := do.MustInvoke[*metrics.HTTPMetrics](injector)

	assetRepo := repo.NewAssetRepo(db)
	refRepo := repo.NewReferenceRepo(db)
	viewSetRepo := repo.NewViewSetRepo(db)

	// The events exchange is optional; without a broker URL the service
	// simply skips lifecycle events.
	var events service.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		dial := func() (*amqp.Connection, error) { return amqp.Dial(cfg.RabbitMQ.URL) }
		conn, err := dial()
		if err != nil {
			log.Fatal("failed to connect to RabbitMQ", zap.Error(err))
		}
		pub, err := mq.NewPublisher(conn, log, cfg, dial)
		if err != nil {
			log.Fatal("failed to create event publisher", zap.Error(err))
		}
		defer pub.Close()
		events = pub
	}

	translator := translate.NewHTTPClient(cfg.Translate, log, m)
	stash := cache.NewStash(rdb)

	uploadSvc := service.NewUploadService(assetRepo, refRepo, s3, translator, stash, events, m, log)
	assetSvc := service.NewAssetService(assetRepo, refRepo, events, log)
	viewSetSvc := service.NewViewSetService(viewSetRepo, assetRepo, refRepo)
	hierarchySvc := service.NewHierarchyService(assetRepo, viewSetRepo, refRepo)

	router := server.NewRouter(cfg, log, m,
		handler.NewAssetHandler(uploadSvc, assetSvc),
		handler.NewViewSetHandler(viewSetSvc),
		handler.NewHierarchyHandler(hierarchySvc),
	)

	srv := &http.Server{
		Addr:    cfg.HTTP.Addr(),
		Handler: router,
	}

	go func() {
		log.Info("starting bimlibrary server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
