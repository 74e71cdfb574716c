package worker

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmehdipour/contact-gateway/internal/config"
	"github.com/jmehdipour/contact-gateway/internal/kafka"
	"github.com/jmehdipour/contact-gateway/internal/logger"
	"github.com/jmehdipour/contact-gateway/internal/metrics"
	"github.com/jmehdipour/contact-gateway/internal/notify"
	"github.com/jmehdipour/contact-gateway/internal/worker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var notifierWorkers int

var notifierCmd = &cobra.Command{
	Use:   "notifier",
	Short: "Mail missing-contacts events relayed from the outbox",
	RunE:  runNotifier,
}

func init() {
	notifierCmd.Flags().IntVar(&notifierWorkers, "workers", 4, "number of concurrent senders")
}

func runNotifier(cmd *cobra.Command, args []string) error {
	// 1) load config
	cfgPath, _ := cmd.Root().PersistentFlags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	m := metrics.New()
	m.MustRegister(prometheus.DefaultRegisterer)

	if cfg.SMTP.Host == "" || cfg.SMTP.To == "" {
		return fmt.Errorf("smtp.host and smtp.to are required for the notifier worker")
	}

	// 2) kafka consumer
	topic := cfg.Notify.Topic
	if topic == "" {
		topic = notify.DefaultTopic
	}
	groupID := cfg.Kafka.GroupID
	if groupID == "" {
		groupID = "contactgw-notifier"
	}

	consumer := kafka.NewConsumer(kafka.Config{
		Brokers:        cfg.Kafka.Brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       cfg.Kafka.MinBytes,
		MaxBytes:       cfg.Kafka.MaxBytes,
		CommitInterval: time.Duration(cfg.Kafka.CommitInterval) * time.Millisecond,
	})
	defer consumer.Close()

	w := worker.NewNotifierKafka(consumer, notify.NewSMTPNotifier(cfg.SMTP, log), log, m)
	if notifierWorkers > 0 {
		w.Workers = notifierWorkers
	}

	// 3) graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("notifier started",
		zap.String("topic", topic),
		zap.String("group", groupID),
		zap.Int("workers", w.Workers),
	)

	return w.Run(ctx)
}
