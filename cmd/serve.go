package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/jaypeewhat/ThriftStore/configs"
	"github.com/jaypeewhat/ThriftStore/middlewares"
	"github.com/jaypeewhat/ThriftStore/pkg/logger"
	"github.com/jaypeewhat/ThriftStore/pkg/queue"
	"github.com/jaypeewhat/ThriftStore/realtime"
	"github.com/jaypeewhat/ThriftStore/routes"
	"github.com/jaypeewhat/ThriftStore/services"
	"github.com/jaypeewhat/ThriftStore/workers"
	"github.com/jaypeewhat/ThriftStore/ws"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and realtime feed",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := configs.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	log, err := logger.NewZapLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := configs.ConnectionDB(cfg)
	if err != nil {
		return err
	}
	if err := configs.SetupDatabase(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := configs.SeedAdmin(ctx, db, cfg, log); err != nil {
		return fmt.Errorf("seed admin failed: %w", err)
	}

	broker, err := newBroker(cfg)
	if err != nil {
		return err
	}
	defer broker.Close()

	notes := services.NewNotificationService(db, broker, log, cfg.Notify.FeedLimit)
	var notifier services.Notifier = notes
	if cfg.Lmstfy.Enabled() {
		q := queue.NewLmstfy(cfg.Lmstfy.Host, cfg.Lmstfy.Port, cfg.Lmstfy.Namespace, cfg.Lmstfy.Token)
		notifier = services.NewQueuedNotifier(q, cfg.Lmstfy.Queue, notes, log)
		worker := workers.NewNotificationWorker(workers.NotificationWorkerConfig{
			Queue:   cfg.Lmstfy.Queue,
			Threads: cfg.Lmstfy.Threads,
			TTR:     cfg.Lmstfy.TTR,
			Timeout: cfg.Lmstfy.Timeout,
		}, q, notes, log)
		worker.Start(ctx)
		defer worker.Shutdown()
	}

	chat := services.NewChatService(db, broker, notifier, log)
	hub := ws.NewHub(broker, chat, log)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middlewares.RequestLogger(log), middlewares.CORSMiddleware(cfg.AllowedOrigins))
	routes.RegisterRoutes(r, routes.Deps{
		Auth:          services.NewAuthService(db, cfg.JWTSecret, cfg.JWTTTL),
		Products:      services.NewProductService(db),
		Carts:         services.NewCartService(db),
		Orders:        services.NewOrderService(db, notifier, broker, log),
		Chat:          chat,
		Ratings:       services.NewRatingService(db, notifier, log),
		Notifications: notes,
		Hub:           hub,
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	errCh := make(chan error, 1)
	go func() {
		log.Infof(ctx, "HTTP server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Infof(context.Background(), "shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	hub.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf(shutdownCtx, "http shutdown: %v", err)
	}
	log.Infof(shutdownCtx, "stopped")
	return nil
}

// newBroker uses Redis when configured so several instances share one change feed.
func newBroker(cfg *configs.Config) (realtime.Broker, error) {
	if cfg.Redis.Addr == "" {
		return realtime.NewMemoryBroker(), nil
	}
	b, err := realtime.NewRedisBroker(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return b, nil
}
