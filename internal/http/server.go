package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jmehdipour/contact-gateway/internal/config"
	"github.com/jmehdipour/contact-gateway/internal/http/middleware"
	"github.com/jmehdipour/contact-gateway/internal/notify"
	"github.com/jmehdipour/contact-gateway/internal/repository"
	"github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Deps are the collaborators wired by the serve command. Reports and
// RateCounter are optional.
type Deps struct {
	Converter   Converter
	Reports     repository.CHRunsRepository
	RateCounter middleware.Counter
	Gatherer    prometheus.Gatherer
	Log         *zap.Logger
}

type Server struct {
	e   *echo.Echo
	log *zap.Logger
}

func NewServer(cfg config.Config, deps Deps) (*Server, error) {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	maxBytes, err := cfg.Upload.MaxBytes()
	if err != nil {
		return nil, err
	}
	okText := notify.SentText
	if cfg.Notify.Mode == config.NotifyModeOutbox {
		okText = notify.QueuedText
	}

	// echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echoMid.Recover(), requestLogger(log))
	e.Use(echoMid.BodyLimit(bodyLimit(maxBytes)))

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// health
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	// middlewares
	authMW := middleware.APIKeyMiddleware(cfg.Auth.APIKeys)
	rlMW := middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		Counter:        deps.RateCounter,
		Limit:          cfg.RateLimit.RPS,
		KeyPrefix:      "rl:client:",
		Window:         cfg.RateLimit.Window,
		RetryAfterHint: true,
	})

	// routes
	v1 := e.Group("/v1", authMW, rlMW)
	v1.POST("/conversions", createConversionHandler(deps.Converter, maxBytes, log))
	v1.GET("/conversions/:id/contacts.vcf", downloadVCardHandler(deps.Converter, log))
	v1.POST("/conversions/:id/notify-missing", notifyMissingHandler(deps.Converter, okText, log))
	v1.GET("/reports/runs", listRunsHandler(deps.Reports))

	return &Server{e: e, log: log}, nil
}

func (s *Server) Start(addr string) error {
	s.log.Info("http: listening", zap.String("addr", addr))
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }

// ServeHTTP lets the server be mounted or exercised with httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.e.ServeHTTP(w, r) }

// bodyLimit leaves room for multipart framing around the file itself.
func bodyLimit(maxBytes int64) string {
	if maxBytes <= 0 {
		return "32MiB"
	}
	return fmt.Sprintf("%dKiB", maxBytes/1024+64)
}

func requestLogger(log *zap.Logger) echo.MiddlewareFunc {
	return echoMid.RequestLoggerWithConfig(echoMid.RequestLoggerConfig{
		LogMethod:   true,
		LogURIPath:  true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echoMid.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("path", v.URIPath),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				log.Warn("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			log.Info("request", fields...)
			return nil
		},
	})
}
