package worker

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rohnsht/PhoneNumber/internal/catalog"
	"github.com/rohnsht/PhoneNumber/internal/config"
	"github.com/rohnsht/PhoneNumber/internal/db"
	"github.com/rohnsht/PhoneNumber/internal/kafka"
	"github.com/rohnsht/PhoneNumber/internal/logger"
	"github.com/rohnsht/PhoneNumber/internal/metrics"
	"github.com/rohnsht/PhoneNumber/internal/phonenumber"
	"github.com/rohnsht/PhoneNumber/internal/registry"
	"github.com/rohnsht/PhoneNumber/internal/repository"
	"github.com/rohnsht/PhoneNumber/internal/service/phone"
	"github.com/rohnsht/PhoneNumber/internal/service/queue"
	"github.com/rohnsht/PhoneNumber/internal/worker"
)

var normalizerCmd = &cobra.Command{
	Use:   "normalizer",
	Short: "Consume normalization jobs and store results in ClickHouse",
	RunE:  runNormalizer,
}

func runNormalizer(cmd *cobra.Command, args []string) error {
	// 1) load config (the root command already initialised the logger)
	cfgPath, _ := cmd.Root().PersistentFlags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.Log

	metrics.MustRegister(prometheus.DefaultRegisterer)

	// 2) engine
	reg, err := registry.Load(cfg.Registry.Path)
	if err != nil {
		return fmt.Errorf("load registry: %w", err)
	}
	engine := phonenumber.New(reg)
	svc := phone.New(engine, catalog.New(reg, catalog.CLDRNamer{}, cfg.Locale.Default, log), nil, log)

	// 3) stores
	dbx, err := db.NewMySQL(db.SQLOpts{
		DSN:             cfg.MySQL.DSN,
		MaxOpenConns:    cfg.MySQL.MaxOpenConns,
		MaxIdleConns:    cfg.MySQL.MaxIdleConns,
		ConnMaxLifetime: cfg.MySQL.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.MySQL.ConnMaxIdleTime,
		PingTimeout:     cfg.MySQL.PingTimeout,
	})
	if err != nil {
		return fmt.Errorf("mysql connect: %w", err)
	}
	defer dbx.Close()

	chDB, err := db.NewClickHouse(db.SQLOpts{
		DSN:             cfg.ClickHouse.DSN,
		MaxOpenConns:    cfg.ClickHouse.MaxOpenConns,
		MaxIdleConns:    cfg.ClickHouse.MaxIdleConns,
		ConnMaxLifetime: cfg.ClickHouse.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ClickHouse.ConnMaxIdleTime,
		PingTimeout:     cfg.ClickHouse.PingTimeout,
	})
	if err != nil {
		return fmt.Errorf("clickhouse connect: %w", err)
	}
	defer chDB.Close()

	// 4) kafka consumer
	topic := cfg.Kafka.Topic
	if topic == "" {
		topic = queue.NormalizeKafkaTopic
	}
	groupID := cfg.Kafka.GroupID
	if groupID == "" {
		groupID = "phonenum-normalizer"
	}
	consumer, err := kafka.NewConsumer(kafka.Config{
		Brokers:        cfg.Kafka.Brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       cfg.Kafka.MinBytes,
		MaxBytes:       cfg.Kafka.MaxBytes,
		CommitInterval: time.Duration(cfg.Kafka.CommitInterval) * time.Millisecond,
	})
	if err != nil {
		return err
	}
	defer consumer.Close()

	w := worker.NewNormalizer(
		consumer,
		svc,
		repository.NewJobsRepository(dbx),
		repository.NewCHNumbersRepository(chDB),
		log,
	)

	// tune knobs
	if cfg.Worker.Count > 0 {
		w.Workers = cfg.Worker.Count
	}
	if concurrency > 0 {
		w.Workers = concurrency
	}
	if cfg.Worker.BatchSize > 0 {
		w.BatchSize = cfg.Worker.BatchSize
	}
	if cfg.Worker.BatchWait > 0 {
		w.BatchWait = cfg.Worker.BatchWait
	}

	// 5) graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("normalizer started",
		zap.String("topic", topic),
		zap.String("group", groupID),
		zap.Int("workers", w.Workers),
		zap.Int("batch_size", w.BatchSize),
		zap.Duration("batch_wait", w.BatchWait),
	)
	return w.Run(ctx)
}
