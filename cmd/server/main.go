package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"trustgate/internal/checkin"
	checkinhandler "trustgate/internal/checkin/handler"
	checkinmetrics "trustgate/internal/checkin/metrics"
	"trustgate/internal/device"
	devicestore "trustgate/internal/device/store"
	"trustgate/internal/noshow"
	noshowhandler "trustgate/internal/noshow/handler"
	noshowstore "trustgate/internal/noshow/store"
	"trustgate/internal/platform/config"
	"trustgate/internal/platform/httpserver"
	"trustgate/internal/platform/logger"
	"trustgate/internal/platform/postgres"
	platformredis "trustgate/internal/platform/redis"
	"trustgate/internal/reward"
	rewardhandler "trustgate/internal/reward/handler"
	rewardstore "trustgate/internal/reward/store"
	"trustgate/internal/risk"
	"trustgate/internal/scanner"
	scannerhandler "trustgate/internal/scanner/handler"
	scannerstore "trustgate/internal/scanner/store"
	"trustgate/internal/token"
	tokenhandler "trustgate/internal/token/handler"
	tokenmetrics "trustgate/internal/token/metrics"
	"trustgate/internal/token/scanlog"
	tokenstore "trustgate/internal/token/store"
	httptransport "trustgate/internal/transport/http"
	"trustgate/internal/trust"
	truststore "trustgate/internal/trust/store"
	"trustgate/internal/verification"
	verificationhandler "trustgate/internal/verification/handler"
	verificationstore "trustgate/internal/verification/store"
	"trustgate/pkg/platform/audit"
)

// main wires the stores, services, and HTTP surface. Business logic lives in
// the internal services; everything here is assembly and lifecycle.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage. Postgres and Redis are optional; absent either, the service
	// runs on process-local stores for development.
	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	if pool != nil {
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Error("schema migration failed", "error", err)
			os.Exit(1)
		}
	}

	redisClient, err := platformredis.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var (
		tokens        token.Store            = tokenstore.NewInMemory()
		devices       devicestore.Store      = devicestore.NewInMemory()
		trustProfiles trust.Store            = truststore.NewInMemory()
		records       verification.Store     = verificationstore.NewInMemory()
		predictions   noshow.Store           = noshowstore.NewInMemory()
		rewards       reward.Store           = rewardstore.NewInMemory()
		scanners      scanner.Store          = scannerstore.NewInMemory()
		directory     checkin.EventDirectory = checkin.NewStaticDirectory()
		scans         scanlog.Log            = scanlog.NewInMemory(token.ReplayWindow)
	)
	if pool != nil {
		tokens = tokenstore.NewPostgres(pool)
		devices = devicestore.NewPostgres(pool)
		trustProfiles = truststore.NewPostgres(pool)
		records = verificationstore.NewPostgres(pool)
		predictions = noshowstore.NewPostgres(pool)
		rewards = rewardstore.NewPostgres(pool)
		scanners = scannerstore.NewPostgres(pool)
		directory = checkin.NewPostgresDirectory(pool)
	}
	if redisClient != nil {
		scans = scanlog.NewRedis(redisClient.Client, token.ReplayWindow)
	}

	// Audit pipeline. Kafka is optional; events always land in the store.
	var auditStore audit.Store = audit.NewMemoryStore()
	if pool != nil {
		auditStore = audit.NewPostgresStore(pool)
	}
	auditOpts := []audit.PublisherOption{audit.WithLogger(log)}
	if len(cfg.KafkaBrokers) > 0 {
		sink, err := audit.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Error("kafka sink init failed", "error", err)
			os.Exit(1)
		}
		defer sink.Close()
		auditOpts = append(auditOpts, audit.WithSink(sink), audit.WithAsyncBuffer(cfg.AuditBufferSize))
	}
	publisher, err := audit.NewPublisher(auditStore, auditOpts...)
	if err != nil {
		log.Error("audit publisher init failed", "error", err)
		os.Exit(1)
	}
	go func() {
		if err := publisher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("audit forwarder stopped", "error", err)
		}
	}()

	// Services.
	tokenSvc, err := token.New(tokens, scans, []byte(cfg.QRSigningKey),
		token.WithLogger(log), token.WithMetrics(tokenmetrics.New()))
	if err != nil {
		fatal(log, "token service", err)
	}
	deviceRegistry, err := device.NewRegistry(devices, device.WithLogger(log))
	if err != nil {
		fatal(log, "device registry", err)
	}
	trustSvc, err := trust.New(trustProfiles, trust.WithLogger(log))
	if err != nil {
		fatal(log, "trust service", err)
	}
	verificationSvc, err := verification.New(records, verification.WithLogger(log))
	if err != nil {
		fatal(log, "verification service", err)
	}
	noshowSvc, err := noshow.New(predictions, noshow.WithLogger(log))
	if err != nil {
		fatal(log, "noshow service", err)
	}
	rewardSvc, err := reward.New(rewards, reward.WithLogger(log))
	if err != nil {
		fatal(log, "reward service", err)
	}
	scannerSvc, err := scanner.New(scanners, scanner.WithLogger(log))
	if err != nil {
		fatal(log, "scanner service", err)
	}
	checkinSvc, err := checkin.New(checkin.Dependencies{
		Directory:     directory,
		Tokens:        tokenSvc,
		Devices:       deviceRegistry,
		Trust:         trustSvc,
		Verifications: verificationSvc,
		Rewards:       rewardSvc,
		Scanners:      scannerSvc,
		Scorer:        risk.NewScorer(risk.DefaultConfig()),
		Audit:         publisher,
	}, checkin.WithLogger(log), checkin.WithMetrics(checkinmetrics.New()))
	if err != nil {
		fatal(log, "checkin service", err)
	}

	router := httptransport.NewRouter(httptransport.Handlers{
		Checkin:      checkinhandler.New(checkinSvc, log),
		Tokens:       tokenhandler.New(tokenSvc, log),
		Verification: verificationhandler.New(verificationSvc, log),
		NoShow:       noshowhandler.New(noshowSvc, log),
		Rewards:      rewardhandler.New(rewardSvc, log),
		Scanners:     scannerhandler.New(scannerSvc, log),
	}, device.NewFingerprinter(cfg.FingerprintDevices))

	srv := httpserver.New(cfg.Addr, router, httpserver.DefaultTimeouts())

	go func() {
		log.Info("trustgate listening", "addr", cfg.Addr, "postgres", pool != nil, "redis", redisClient != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

func fatal(log *slog.Logger, what string, err error) {
	log.Error(what+" init failed", "error", err)
	os.Exit(1)
}
