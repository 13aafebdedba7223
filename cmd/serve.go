package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rohnsht/PhoneNumber/internal/db"
	httpSrv "github.com/rohnsht/PhoneNumber/internal/http"
	"github.com/rohnsht/PhoneNumber/internal/logger"
	"github.com/rohnsht/PhoneNumber/internal/metrics"
	"github.com/rohnsht/PhoneNumber/internal/repository"
	"github.com/rohnsht/PhoneNumber/internal/service/queue"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.Log

		phoneSvc, err := newPhoneService(cfg, log, true)
		if err != nil {
			return err
		}
		metrics.MustRegister(prometheus.DefaultRegisterer)

		mysqlDB, err := db.NewMySQL(sqlOpts(cfg.MySQL))
		if err != nil {
			return fmt.Errorf("mysql connect: %w", err)
		}
		defer mysqlDB.Close()

		redisClient, err := db.NewRedis(db.RedisOpts{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			DialTimeout: cfg.Redis.DialTimeout,
		})
		if err != nil {
			return fmt.Errorf("redis connect: %w", err)
		}
		defer func() { _ = redisClient.Close() }()

		chDB, err := db.NewClickHouse(sqlOpts(cfg.ClickHouse))
		if err != nil {
			return fmt.Errorf("clickhouse connect: %w", err)
		}
		defer func() { _ = chDB.Close() }()

		queueSvc := queue.New(
			repository.NewTxRunner(mysqlDB),
			repository.NewJobsRepository(mysqlDB),
			repository.NewOutboxRepository(mysqlDB),
			cfg.Jobs.MaxStrings,
		)

		server := httpSrv.NewServer(httpSrv.Deps{
			Phone:      phoneSvc,
			Jobs:       queueSvc,
			Numbers:    repository.NewCHNumbersRepository(chDB),
			Clients:    repository.NewClientsRepository(mysqlDB),
			Redis:      redisClient,
			Log:        log,
			DefaultRPS: cfg.RateLimit.RPS,
		})

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start(cfg.HTTP.Addr)
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		runErr := waitServer(log, sigCh, errCh)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)

		return runErr
	},
}

// waitServer blocks until a signal arrives or the server stops. A listener
// failure is returned; a server closed by Shutdown is not an error.
func waitServer(log *zap.Logger, sigCh <-chan os.Signal, errCh <-chan error) error {
	select {
	case sig := <-sigCh:
		log.Info("signal received, shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server exited", zap.Error(err))
			return fmt.Errorf("http server: %w", err)
		}
	}
	return nil
}
