package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fjod/go_cart/pos-terminal/internal/backend"
	"github.com/fjod/go_cart/pos-terminal/internal/catalog"
	"github.com/fjod/go_cart/pos-terminal/internal/config"
	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/fjod/go_cart/pos-terminal/internal/events"
	"github.com/fjod/go_cart/pos-terminal/internal/health"
	"github.com/fjod/go_cart/pos-terminal/internal/hold"
	h "github.com/fjod/go_cart/pos-terminal/internal/http"
	"github.com/fjod/go_cart/pos-terminal/internal/journal"
	"github.com/fjod/go_cart/pos-terminal/internal/printer"
	"github.com/fjod/go_cart/pos-terminal/internal/terminal"
	"github.com/fjod/go_cart/pos-terminal/pkg/circuitbreaker"
	"github.com/fjod/go_cart/pos-terminal/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	os.Exit(start())
}

func start() int {
	log, err := logger.New("pos-terminal")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	if err := run(log); err != nil {
		log.Error("terminal stopped with error", zap.Error(err))
		return 1
	}
	return 0
}

func run(log *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	breaker := circuitbreaker.DefaultConfig()
	breaker.ConsecutiveFailures = uint32(cfg.Backend.BreakerFailures)
	breaker.Timeout = cfg.Backend.BreakerOpenDelay
	client := backend.NewHTTPClient(backend.Config{
		BaseURL: cfg.Backend.BaseURL,
		Token:   cfg.Backend.Token,
		Timeout: cfg.Backend.Timeout,
		Breaker: breaker,
	}, log.Named("backend"))

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	redisUp := true
	if err := redisClient.Ping(ctx).Err(); err != nil {
		redisUp = false
		log.Warn("redis ping failed", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}

	holds, closeHolds, err := buildHoldRepository(ctx, cfg, redisClient, redisUp, log.Named("holds"))
	if err != nil {
		return err
	}
	defer closeHolds()

	var productCache catalog.ProductCache
	if redisUp {
		productCache = catalog.NewRedisCache(redisClient, cfg.Redis.ProductTTL)
	}
	products := catalog.NewService(client, productCache, log.Named("catalog"))

	journalRepo, err := journal.Open(ctx, cfg.Journal.Driver, cfg.Journal.DSN)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer journalRepo.Close()

	completions := events.NewBroker[domain.CompletionEvent](events.DefaultBuffer)
	voids := events.NewBroker[domain.VoidEvent](events.DefaultBuffer)
	notices := events.NewNoticeLog(cfg.Terminal.NoticeLimit)

	// Consumers outlive the signal context so sales committed during shutdown still reach them.
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	var workers sync.WaitGroup
	startRecorder(workerCtx, &workers, journalRepo, completions, voids, log.Named("journal"))
	if cfg.Kafka.Enabled() {
		closeKafka := startKafkaForwarders(workerCtx, &workers, cfg.Kafka, completions, voids, log.Named("kafka"))
		defer closeKafka()
	}

	var receiptPrinter printer.Printer = printer.NewLogPrinter(log.Named("printer"))
	if cfg.Printer.AgentURL != "" {
		receiptPrinter = printer.NewHTTPPrinter(cfg.Printer.AgentURL, cfg.Printer.Timeout)
	}

	saleType, err := domain.ParseSaleType(cfg.Terminal.SaleType)
	if err != nil {
		return err
	}
	term := terminal.New(terminal.Deps{
		Catalog:      products,
		Holds:        holds,
		Backend:      client,
		Printer:      receiptPrinter,
		Notices:      notices,
		Completions:  completions,
		Voids:        voids,
		SaleType:     saleType,
		Session:      terminal.SessionInfo{OutletID: cfg.Terminal.OutletID, ShiftID: cfg.Terminal.ShiftID},
		PrintTimeout: cfg.Printer.Timeout,
		Log:          log.Named("terminal"),
	})

	redisPing := func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	checks := map[string]h.HealthCheck{
		"holds":   holds.Ping,
		"journal": journalRepo.Ping,
		"redis":   redisPing,
	}
	handler := h.NewHandler(term, journalRepo, cfg.HTTP.RequestTimeout, log.Named("http"))
	srv := &http.Server{
		Addr: ":" + cfg.HTTP.Port,
		Handler: h.NewRouter(handler, h.RouterConfig{
			RequestTimeout:     cfg.HTTP.RequestTimeout,
			MaxRequestBodySize: cfg.HTTP.MaxRequestBodySize,
			HealthChecks:       checks,
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.HTTP.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	srv.RegisterOnShutdown(handler.CloseStreams)

	probes := []health.Probe{
		{Name: "holds", Check: holds.Ping},
		{Name: "journal", Check: journalRepo.Ping},
		{Name: "redis", Check: redisPing},
	}
	healthSrv := health.NewServer(probes, cfg.GRPC.ProbeInterval, log.Named("health"))
	lis, err := net.Listen("tcp", ":"+cfg.GRPC.Port)
	if err != nil {
		return fmt.Errorf("failed to listen on grpc port: %w", err)
	}

	serveErr := make(chan error, 2)
	go func() {
		log.Info("http server starting", zap.String("port", cfg.HTTP.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		log.Info("grpc health server starting", zap.String("port", cfg.GRPC.Port))
		if err := healthSrv.Serve(lis); err != nil {
			serveErr <- fmt.Errorf("grpc server: %w", err)
		}
	}()
	go healthSrv.Run(ctx)

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-serveErr:
		log.Error("server failed, shutting down", zap.Error(err))
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server forced to shutdown", zap.Error(err))
	}
	healthSrv.Stop()

	completions.Close()
	voids.Close()
	drained := make(chan struct{})
	go func() {
		workers.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-shutdownCtx.Done():
		log.Warn("event consumers did not drain before shutdown timeout")
		cancelWorkers()
		workers.Wait()
	}

	log.Info("terminal stopped",
		zap.Uint64("completions_dropped", completions.Dropped()),
		zap.Uint64("voids_dropped", voids.Dropped()))
	return nil
}

func buildHoldRepository(ctx context.Context, cfg *config.Config, redisClient *redis.Client, redisUp bool, log *zap.Logger) (hold.Repository, func(), error) {
	nop := func() {}
	switch cfg.Hold.Store {
	case config.HoldStoreMemory:
		log.Warn("held transactions are kept in memory and lost on restart")
		return hold.NewMemoryRepository(cfg.Hold.Namespace), nop, nil

	case config.HoldStoreMongo:
		db, err := hold.ConnectMongoDB(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, nop, err
		}
		repo := hold.NewMongoRepository(db, cfg.Hold.Namespace, log)
		if err := repo.CreateIndexes(ctx); err != nil {
			log.Warn("failed to create hold indexes", zap.Error(err))
		}
		log.Info("held transactions stored in MongoDB", zap.String("database", cfg.Mongo.Database))
		return repo, func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = db.Client().Disconnect(disconnectCtx)
		}, nil

	default:
		if !redisUp {
			return nil, nop, fmt.Errorf("redis hold store selected but %s is unreachable", cfg.Redis.Addr)
		}
		log.Info("held transactions stored in Redis", zap.String("namespace", cfg.Hold.Namespace))
		return hold.NewRedisRepository(redisClient, cfg.Hold.Namespace, log), nop, nil
	}
}

func startRecorder(ctx context.Context, wg *sync.WaitGroup, repo journal.RepoInterface, completions *events.Broker[domain.CompletionEvent], voids *events.Broker[domain.VoidEvent], log *zap.Logger) {
	sales, unsubSales := completions.Subscribe()
	voided, unsubVoids := voids.Subscribe()
	recorder := journal.NewRecorder(repo, log)

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer unsubSales()
		defer unsubVoids()
		recorder.Run(ctx, sales, voided)
	}()
}

func startKafkaForwarders(ctx context.Context, wg *sync.WaitGroup, cfg config.KafkaConfig, completions *events.Broker[domain.CompletionEvent], voids *events.Broker[domain.VoidEvent], log *zap.Logger) func() {
	salesFwd := events.NewKafkaForwarder(
		events.NewKafkaWriter(cfg.SalesTopic, cfg.WriteTimeout, cfg.Brokers...),
		"sale.completed",
		func(e domain.CompletionEvent) string { return e.TransactionID },
		log)
	voidsFwd := events.NewKafkaForwarder(
		events.NewKafkaWriter(cfg.VoidsTopic, cfg.WriteTimeout, cfg.Brokers...),
		"sale.voided",
		func(e domain.VoidEvent) string { return e.VoidID },
		log)

	sales, unsubSales := completions.Subscribe()
	voided, unsubVoids := voids.Subscribe()

	wg.Add(2)
	go func() {
		defer wg.Done()
		defer unsubSales()
		salesFwd.Run(ctx, sales)
	}()
	go func() {
		defer wg.Done()
		defer unsubVoids()
		voidsFwd.Run(ctx, voided)
	}()

	log.Info("forwarding events to kafka", zap.Strings("brokers", cfg.Brokers))
	return func() {
		if err := salesFwd.Close(); err != nil {
			log.Warn("failed to close sales writer", zap.Error(err))
		}
		if err := voidsFwd.Close(); err != nil {
			log.Warn("failed to close voids writer", zap.Error(err))
		}
	}
}
