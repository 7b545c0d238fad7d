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

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"quoteguard/internal/artifact"
	"quoteguard/internal/directory"
	invoicehandler "quoteguard/internal/invoice/handler"
	invoicemetrics "quoteguard/internal/invoice/metrics"
	"quoteguard/internal/invoice/sequence"
	"quoteguard/internal/invoice/service"
	invoicestore "quoteguard/internal/invoice/store"
	"quoteguard/internal/jwttoken"
	"quoteguard/internal/platform/config"
	"quoteguard/internal/platform/httpserver"
	"quoteguard/internal/platform/logger"
	"quoteguard/internal/platform/metrics"
	"quoteguard/internal/platform/postgres"
	"quoteguard/internal/platform/redis"
	httptransport "quoteguard/internal/transport/http"
	"quoteguard/internal/verification"
	verifyhandler "quoteguard/internal/verification/handler"
	verifymetrics "quoteguard/internal/verification/metrics"
	id "quoteguard/pkg/domain"
	"quoteguard/pkg/platform/audit"
	auditkafka "quoteguard/pkg/platform/audit/kafka"
	auditmem "quoteguard/pkg/platform/audit/store/memory"
)

func main() {
	// Ignore error - .env file is optional
	_ = godotenv.Load()

	log := logger.New()
	if err := run(log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg := config.FromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if db != nil {
		defer func() { _ = db.Close() }()
	}

	var (
		invoices service.Store
		owners   directory.OwnerDirectory
		clients  directory.ClientDirectory
	)
	if db != nil {
		invoices = invoicestore.NewPostgres(db)
		dir := directory.NewPostgres(db)
		owners, clients = dir, dir
		log.Info("using postgres persistence")
	} else {
		mem := invoicestore.NewMemory()
		dir := directory.NewMemory()
		seedDemoDirectory(dir)
		invoices, owners, clients = mem, dir, dir
		log.Warn("DATABASE_URL not set, using in-memory persistence")
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		return err
	}
	var sequencer service.Sequencer
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
		sequencer = sequence.NewRedis(redisClient.Client)
		log.Info("using redis invoice sequencer")
	} else {
		sequencer = sequence.NewMemory()
		log.Warn("REDIS_URL not set, using in-memory invoice sequencer")
	}

	var auditPub audit.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPub, err := auditkafka.NewPublisher(cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			return err
		}
		defer kafkaPub.Close()
		auditPub = kafkaPub
		log.Info("publishing audit events to kafka", "topic", cfg.AuditTopic)
	} else {
		auditPub = audit.NewStorePublisher(auditmem.NewStore())
		log.Warn("KAFKA_BROKERS not set, keeping audit events in memory")
	}

	httpMetrics := metrics.New()
	invMetrics := invoicemetrics.New()
	verMetrics := verifymetrics.New()

	dispatcher := artifact.NewDispatcher(64, log,
		artifact.NewQRRenderer(cfg.BaseURL, cfg.ArtifactDir),
		artifact.NewPDFRenderer(cfg.ArtifactDir, cfg.BaseURL, cfg.ChromiumPath, cfg.PDFTimeout),
	)

	invoiceSvc := service.New(invoices, sequencer, owners, clients, dispatcher, auditPub, invMetrics, log)
	verifySvc := verification.New(invoices, owners, auditPub, verMetrics, log)

	tokens := jwttoken.NewService(cfg.JWTSigningKey, "quoteguard")
	router := httptransport.NewRouter(
		invoicehandler.New(invoiceSvc, tokens, log),
		verifyhandler.New(verifySvc, log),
		log,
		httpMetrics,
	)
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := dispatcher.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		log.Info("listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// seedDemoDirectory registers one owner and one client so the in-memory
// configuration is usable out of the box.
func seedDemoDirectory(dir *directory.Memory) {
	dir.PutOwner(directory.Owner{ID: id.OwnerID(1), DisplayName: "Demo Studio", Email: "owner@example.com"})
	dir.PutClient(directory.Client{ID: id.ClientID(1), Name: "Demo Client", Email: "client@example.com"})
}
