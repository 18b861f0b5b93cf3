package main

import (
	"chat-live/contract"
	grpcserver "chat-live/infrastructure/grpc/server"
	httpserver "chat-live/infrastructure/http/server"
	"chat-live/infrastructure/kafka"
	"chat-live/infrastructure/search"
	"chat-live/internal"
	"chat-live/moderation"
	"chat-live/observability"
	"chat-live/repositories"
	"chat-live/runtime"
	"chat-live/runtime/workers"
	"chat-live/services"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/redis/go-redis/v9"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires the store, the push endpoints and the background workers, then
// blocks until a signal or a server failure. Deferred closes run before main exits.
func run() (int, error) {
	// 1. Configuration & Logger
	config, err := internal.LoadConfig()
	if err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	censorChar, err := internal.CharacterRune(config.ModerationChar)
	if err != nil {
		return exitConfig, err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// NotifyContext captures OS signals and cancels the context to trigger a shutdown.
	// Every open stream derives from it, so they all end on the signal.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Database (BadgerDB)
	db, err := badger.Open(buildBadgerOpts(config, log, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Search index (Bluge)
	blugeWriter, err := search.Open(config.BlugeFilepath)
	if err != nil {
		return exitRuntime, err
	}
	defer func() {
		log.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()
	index := search.NewMessageIndex(blugeWriter, log)

	// 4. Store, cursors, moderation, monitoring
	store := repositories.NewStore(db, log, config.FeedRetention, config.LimitMessages)
	cursors, closeCursors, err := buildCursorStore(ctx, config, db, log)
	if err != nil {
		return exitRuntime, err
	}
	defer closeCursors()

	moderator, err := moderation.NewModerator(config.Words(), censorChar, log)
	if err != nil {
		return exitConfig, fmt.Errorf("moderation setup failed: %w", err)
	}
	metrics := observability.NewMetrics()
	monitoring := observability.NewMonitoringManager(log, metrics)
	registry := runtime.NewRegistry(log)

	// 5. gRPC health server, NOT_SERVING until the probe succeeds
	ops := grpcserver.NewOpsServer(log)

	// 6. Background workers
	sup := workers.NewSupervisor(log).WithRestartDelay(config.RestartInterval)
	sup.Add(
		workers.NewIndexerWorker(log, store.Feed, cursors, index, monitoring, config.CursorRefreshInterval),
		workers.NewProcessStatsWorker(log, monitoring, config.MetricInterval),
		workers.NewValueLogGCWorker(db, log, config.GCInterval),
		workers.NewHealthProbeWorker(log, ops.Health(), grpcserver.ServiceName, func(ctx context.Context) error {
			_, err := store.Feed.Head(ctx)
			return err
		}, config.HealthCheckInterval),
	)
	if brokers := config.Brokers(); len(brokers) > 0 {
		publisher := kafka.NewPublisher(brokers, config.KafkaTopic, log)
		defer func() { _ = publisher.Close() }()
		sup.Add(workers.NewRelayWorker(log, store.Feed, cursors, publisher, monitoring, config.CursorRefreshInterval))
		log.Info("Kafka relay enabled", "brokers", brokers, "topic", config.KafkaTopic)
	}
	supDone := make(chan struct{})
	go func() {
		defer close(supDone)
		sup.Run(ctx)
	}()

	// 7. Debug inspector, DEBUG only
	if log.Enabled(ctx, slog.LevelDebug) {
		debug := internal.NewDebugServer(log, db, config.DebugPort, "/inspect", statsProvider(monitoring, registry))
		debug.Start()
		defer func() { _ = debug.Shutdown(context.Background()) }()
		log.Info("Debug Badger inspector available", "url", fmt.Sprintf("http://localhost:%d/inspect", config.DebugPort))
	}

	// 8. HTTP API
	handler := httpserver.NewHandler(log,
		services.NewIngestService(log, store.Messages, moderator, monitoring),
		services.NewReadService(log, store.Users, store.Chats, store.Messages, index),
		runtime.NewSubscriber(log, store.Feed, cursors, config.StreamBatchSize, config.CursorRefreshInterval),
		registry,
		monitoring,
	)
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpServer := &http.Server{
		Addr:              address,
		Handler:           httpserver.NewRouter(log, handler, metrics.Handler()),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	// Use an error channel to capture Serve() issues asynchronously.
	errChan := make(chan error, 2)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	grpcAddress := fmt.Sprintf("%s:%d", config.Host, config.GrpcPort)
	listener, err := net.Listen("tcp", grpcAddress)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", grpcAddress, err)
	}
	go func() {
		if err := ops.Serve(listener); err != nil {
			errChan <- err
		}
	}()

	// 9. Wait for Stop or Error
	// The execution blocks here until either a signal is received or a server crashes.
	code := exitOK
	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case err = <-errChan:
		log.Error("Server failed", "error", err)
		code = exitRuntime
	}

	// 10. Final Cleanup (Graceful Shutdown)
	log.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()

	ops.Stop(shutdownCtx)
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Warn("HTTP shutdown incomplete", "error", shutdownErr)
	}
	sup.Stop()
	<-supDone
	log.Info("Program stopped cleanly")

	return code, err
}

func buildBadgerOpts(config internal.Config, log *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if log.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG)
	} else {
		options = options.WithLoggingLevel(badger.WARNING)
	}

	return options
}

// buildCursorStore keeps cursors in Redis when REDIS_ADDR is set, in Badger otherwise.
func buildCursorStore(ctx context.Context, config internal.Config, db *badger.DB, log *slog.Logger) (contract.ICursorStore, func(), error) {
	if config.RedisAddr == "" {
		return repositories.NewCursorRepository(db, log, config.CursorRetention), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{Addr: config.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis unreachable at %s: %w", config.RedisAddr, err)
	}
	log.Info("Cursor store on Redis", "address", config.RedisAddr)
	return repositories.NewRedisCursorRepository(client, log, config.CursorRetention), func() { _ = client.Close() }, nil
}

func statsProvider(monitoring *observability.MonitoringManager, registry contract.IRegistry) internal.StatsProvider {
	return func() map[string]any {
		stats := monitoring.GetLatest()
		return map[string]any{
			"active_streams":    stats.ActiveStreams,
			"frames_sent":       stats.FramesSent,
			"frames_per_second": fmt.Sprintf("%.2f", stats.FramesPerSecond),
			"messages_created":  stats.MessagesCreated,
			"feed_errors":       stats.FeedErrors,
			"indexed":           stats.Indexed,
			"relayed":           stats.Relayed,
			"rss_mb":            stats.RSSMb,
			"cpu_percent":       fmt.Sprintf("%.1f", stats.CPUPercent),
			"streams_per_chat":  registry.Snapshot(),
			"time":              time.Now().Format(time.RFC822),
		}
	}
}
