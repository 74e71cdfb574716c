package cmd

import (
	"fmt"

	"github.com/jmehdipour/contact-gateway/internal/cleaner"
	"github.com/jmehdipour/contact-gateway/internal/config"
	"github.com/jmehdipour/contact-gateway/internal/inference"
	"github.com/jmehdipour/contact-gateway/internal/logger"
	"github.com/jmehdipour/contact-gateway/internal/metrics"
	"go.uber.org/zap"
)

func loadConfigAndLogger() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}

// newPipeline wires the bulk AI stage when enabled and at least one
// provider is configured; otherwise the pipeline runs rules only.
func newPipeline(cfg config.Config, log *zap.Logger, m *metrics.Metrics, aiEnabled bool) (*cleaner.Pipeline, error) {
	rules := cleaner.NewRuleCleaner(log)
	if !aiEnabled {
		log.Info("bulk AI stage disabled")
		return cleaner.NewPipeline(nil, rules, log, m), nil
	}

	backends, err := inference.BackendsFromConfig(cfg.Inference.Providers)
	if err != nil {
		return nil, err
	}
	if len(backends) == 0 {
		log.Warn("no inference providers enabled, running rules only")
		return cleaner.NewPipeline(nil, rules, log, m), nil
	}

	disp := inference.NewDispatcher(backends, log, m)
	bulk := cleaner.NewBulkCleaner(disp, cfg.Cleaner.Temperature, cfg.Inference.Timeout, log)

	return cleaner.NewPipeline(bulk, rules, log, m), nil
}
