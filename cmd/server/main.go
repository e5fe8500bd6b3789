package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"campuspass/internal/enrollment"
	enrollhandler "campuspass/internal/enrollment/handler"
	enrollmetrics "campuspass/internal/enrollment/metrics"
	"campuspass/internal/events"
	"campuspass/internal/events/kafka"
	httpapi "campuspass/internal/http"
	jwttoken "campuspass/internal/jwt_token"
	"campuspass/internal/pass/builder"
	passstore "campuspass/internal/pass/store"
	"campuspass/internal/platform/config"
	"campuspass/internal/platform/httpserver"
	"campuspass/internal/platform/logger"
	"campuspass/internal/platform/postgres"
	redisplatform "campuspass/internal/platform/redis"
	"campuspass/internal/registration"
	regmetrics "campuspass/internal/registration/metrics"
	regstore "campuspass/internal/registration/store"
	"campuspass/internal/walletapi/authtoken"
	wallethandler "campuspass/internal/walletapi/handler"
	walletmetrics "campuspass/internal/walletapi/metrics"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.IsProduction())

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		subjects     passstore.SubjectStore
		regs         regstore.Store
		regTx        registration.Tx
		healthChecks []httpapi.HealthCheck
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		subjects = passstore.NewPostgres(db)
		regs = regstore.NewPostgres(db)
		regTx = newRegistrationPostgresTx(db)
		healthChecks = append(healthChecks, httpapi.HealthCheck{
			Name:  "postgres",
			Probe: db.PingContext,
		})
	} else {
		if cfg.IsProduction() {
			return errors.New("DATABASE_URL is required in production")
		}
		log.Warn("DATABASE_URL not set, running on in-memory stores")
		subjects = passstore.NewInMemory()
		memRegs := regstore.NewInMemory()
		regs = memRegs
		regTx = registration.NewShardedTx(memRegs)
	}

	redisClient, err := redisplatform.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		healthChecks = append(healthChecks, httpapi.HealthCheck{
			Name:  "redis",
			Probe: redisClient.Health,
		})
	}

	var sink events.Sink
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		defer producer.Close()
		sink = producer
		log.Info("pass events published to kafka", "topic", cfg.Kafka.Topic)
	} else {
		log.Warn("KAFKA_BROKERS not set, pass events are logged only")
		sink = events.NewLogSink(log)
	}
	publisher := events.NewPublisher(sink, log, events.WithAsyncBuffer(256))
	defer publisher.Close()

	enrollService := enrollment.New(subjects, publisher, log, enrollmetrics.New(), cfg.PassTypeID)
	regService := registration.New(regTx, regs, subjects, publisher, log, regmetrics.New(), !cfg.IsProduction())

	fetcher := builder.NewPhotoFetcher(
		&http.Client{},
		photoCacheClient(redisClient),
		cfg.PhotoCacheTTL,
		cfg.PhotoFetchTimeout,
		log,
	)
	passBuilder := builder.New(builder.NewDevSigner(cfg.PassSigningKey), fetcher, cfg.PassTypeID, cfg.OrgName, log)

	verifier := authtoken.NewVerifier(cfg.PassAuthSecret, cfg.PassAuthPermissive, log)
	if cfg.PassAuthPermissive {
		log.Warn("pass auth running in permissive mode, failed checks are logged and let through")
	}

	walletHandler := wallethandler.New(
		regService,
		enrollService,
		passBuilder,
		verifier,
		cfg.PassTypeID,
		builder.ContentType,
		log,
		walletmetrics.New(),
	)

	jwtService := jwttoken.NewJWTService(cfg.StaffJWTSigningKey, "campuspass", "campuspass-admin")
	adminHandler := enrollhandler.New(enrollService, log)

	router := httpapi.NewRouter(httpapi.Deps{
		Wallet:       walletHandler,
		Admin:        adminHandler,
		StaffAuth:    jwttoken.NewMiddlewareAdapter(jwtService),
		Logger:       log,
		HealthChecks: healthChecks,
	})

	srv := httpserver.New(cfg.Addr, router)
	log.Info("starting campuspass server",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"pass_type_id", cfg.PassTypeID,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// photoCacheClient unwraps the platform wrapper for the photo fetcher, which
// treats a nil client as cache-disabled.
func photoCacheClient(c *redisplatform.Client) *redis.Client {
	if c == nil {
		return nil
	}
	return c.Client
}
