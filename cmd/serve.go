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

	"github.com/jmehdipour/contact-gateway/internal/cache"
	"github.com/jmehdipour/contact-gateway/internal/config"
	"github.com/jmehdipour/contact-gateway/internal/db"
	httpSrv "github.com/jmehdipour/contact-gateway/internal/http"
	"github.com/jmehdipour/contact-gateway/internal/http/middleware"
	"github.com/jmehdipour/contact-gateway/internal/metrics"
	"github.com/jmehdipour/contact-gateway/internal/notify"
	"github.com/jmehdipour/contact-gateway/internal/repository"
	"github.com/jmehdipour/contact-gateway/internal/rowsource"
	"github.com/jmehdipour/contact-gateway/internal/service/convert"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfigAndLogger()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		m := metrics.New()
		m.MustRegister(prometheus.DefaultRegisterer)

		pipeline, err := newPipeline(cfg, log, m, cfg.Cleaner.AIEnabled)
		if err != nil {
			return err
		}
		opts := []convert.Option{convert.WithLogger(log)}
		deps := httpSrv.Deps{Log: log}

		// MySQL: audit rows + outbox
		var outboxRepo repository.OutboxRepository
		if cfg.MySQL.Enabled() {
			mysqlDB, err := db.NewMySQLConnection(cfg.MySQL)
			if err != nil {
				return fmt.Errorf("mysql connect: %w", err)
			}
			defer mysqlDB.Close()

			opts = append(opts, convert.WithRunsRepository(repository.NewRunsRepository(mysqlDB)))
			outboxRepo = repository.NewOutboxRepository(mysqlDB)
		} else {
			log.Warn("mysql not configured, runs are not audited")
		}

		// ClickHouse: reports
		if cfg.ClickHouse.Enabled() {
			chDB, err := db.NewClickHouseConnection(cfg.ClickHouse)
			if err != nil {
				return fmt.Errorf("clickhouse connect: %w", err)
			}
			defer func() {
				_ = chDB.Close()
			}()
			deps.Reports = repository.NewCHRunsRepository(chDB)
		}

		// Redis: run cache + rate limit
		if cfg.Redis.Addr != "" {
			redisClient, err := db.NewRedisClient(cfg.Redis)
			if err != nil {
				return fmt.Errorf("redis connect: %w", err)
			}
			defer func() { _ = redisClient.Close() }()

			opts = append(opts, convert.WithRunStore(cache.NewRunCache(redisClient, cfg.Cache.TTL)))
			deps.RateCounter = middleware.RedisCounter{Redis: redisClient}
		}

		notifier, err := newNotifier(cfg, outboxRepo, log)
		if err != nil {
			return err
		}
		if notifier != nil {
			opts = append(opts, convert.WithNotifier(notifier))
		}

		deps.Converter = convert.New(rowsource.NewExcelSource(log), pipeline, opts...)
		server, err := httpSrv.NewServer(cfg, deps)
		if err != nil {
			return err
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start(cfg.HTTP.Addr)
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-sigCh:
			log.Info("signal received, shutting down", zap.String("signal", sig.String()))
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("http server exited", zap.Error(err))
			}
		}

		timeout := cfg.HTTP.ShutdownTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_ = server.Shutdown(ctx)

		return nil
	},
}

// newNotifier returns nil when notifications cannot be delivered with the
// current configuration.
func newNotifier(cfg config.Config, outbox repository.OutboxRepository, log *zap.Logger) (notify.Notifier, error) {
	switch cfg.Notify.Mode {
	case config.NotifyModeOutbox:
		if outbox == nil {
			return nil, errors.New("notify.mode=outbox requires mysql")
		}
		return notify.NewOutboxNotifier(outbox, cfg.Notify.Topic, log), nil
	case config.NotifyModeSMTP, "":
		if cfg.SMTP.Host == "" || cfg.SMTP.To == "" {
			log.Warn("smtp not configured, missing-contacts mail disabled")
			return nil, nil
		}
		return notify.NewSMTPNotifier(cfg.SMTP, log), nil
	default:
		return nil, fmt.Errorf("unknown notify.mode %q", cfg.Notify.Mode)
	}
}
