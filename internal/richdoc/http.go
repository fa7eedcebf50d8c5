// Пакет richdoc поднимает HTTP API редактора: сессии документов, команды панели инструментов,
// выгрузку, импорт HTML и макросы.
//
// Основные возможности:
//   - Маршруты /api/documents/ поверх сессий редактирования.
//   - Метрики Prometheus на отдельном порту.
//   - Автосохранение измененных сессий по расписанию cron.
//   - Сохранение всех сессий при остановке по сигналу.
package richdoc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/aisa-it/richdoc/internal/richdoc/config"
	"github.com/aisa-it/richdoc/internal/richdoc/cronmanager"
	"github.com/aisa-it/richdoc/internal/richdoc/export"
	"github.com/aisa-it/richdoc/internal/richdoc/sessions"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

type Services struct {
	db       *gorm.DB
	cfg      *config.Config
	sessions *sessions.SessionsManager
	metrics  *Metrics
	version  string
}

// ServerHeader middleware adds a `Server` header to the response.
func ServerHeader(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderServer, "richdoc")
		return next(c)
	}
}

// NewServices создает сессии и регистрирует метрики в reg
func NewServices(db *gorm.DB, cfg *config.Config, reg prometheus.Registerer, version string) (*Services, error) {
	sm := sessions.NewSessionsManager(db, cfg.SessionTTL(), cfg.HistoryDepth)
	metrics, err := NewMetrics(reg, sm)
	if err != nil {
		return nil, err
	}
	return &Services{
		db:       db,
		cfg:      cfg,
		sessions: sm,
		metrics:  metrics,
		version:  version,
	}, nil
}

// Router собирает echo с middleware и маршрутами API. Метрики запросов пишутся в reg.
func (s *Services) Router(reg prometheus.Registerer) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
		}
		if code == http.StatusNotFound || code == http.StatusMethodNotAllowed {
			c.NoContent(code)
			return
		}
		EErrorMsgStatus(c, err, code)
	}
	e.Validator = NewRequestValidator()

	e.Use(ServerHeader)
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("5M"))
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level:     9,
		MinLength: 2048,
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  metricsNamespace,
		Registerer: reg,
	}))
	e.Pre(middleware.AddTrailingSlash())

	api := e.Group("/api/")
	api.GET("version/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"version": s.version,
			"formats": export.Formats,
		})
	})
	api.GET("_health/", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	api.GET("toolbar/", s.getToolbar)

	s.AddDocumentServices(api)
	return e
}

// Server запускает API, метрики и автосохранение. Возвращается после сигнала остановки,
// сохранив все открытые сессии.
func Server(db *gorm.DB, cfg *config.Config, version string) error {
	s, err := NewServices(db, cfg, prometheus.DefaultRegisterer, version)
	if err != nil {
		return err
	}
	e := s.Router(prometheus.DefaultRegisterer)

	cronManager := cronmanager.NewCronManager(cronmanager.JobRegistry{
		"sessions_autosave": cronmanager.Job{
			Func:     func() { s.sessions.SaveDirty() },
			Schedule: cfg.AutosaveSchedule,
		},
	})
	if err := cronManager.LoadJobs(); err != nil {
		return fmt.Errorf("load cron jobs: %w", err)
	}
	cronManager.Start()

	metrics := echo.New()
	metrics.HideBanner = true
	metrics.HidePort = true
	metrics.GET("/metrics", echoprometheus.NewHandler())
	go func() {
		if err := metrics.Start(cfg.MetricsListen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server fail", "err", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := e.Start(cfg.Listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server fail", "err", err)
			stop()
		}
	}()
	slog.Info("Server started", "listen", cfg.Listen, "metrics", cfg.MetricsListen, "version", version)

	<-ctx.Done()
	slog.Info("Shutting down gracefully, press Ctrl+C again to force")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown", "err", err)
	}
	metrics.Shutdown(shutdownCtx)
	cronManager.Stop()

	return s.sessions.Shutdown()
}
