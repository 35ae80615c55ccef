package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"billing-analytics/internal/analytics"
	"billing-analytics/internal/config"
	"billing-analytics/internal/handler"
	"billing-analytics/internal/repository"
	"billing-analytics/internal/service"
)

// App собирает репозитории и сервисы для сервера и утилиты billingctl
type App struct {
	DB *sqlx.DB

	Auth       *service.AuthService
	Anomalies  *service.AnomalyService
	Cohort     *service.CohortService
	Tax        *service.TaxService
	Simulation *service.SimulationService
	Usage      *service.UsageService
	Bills      *service.BillService
	Sweeper    *service.AnomalySweeper

	cfg     *config.Config
	logger  *logrus.Logger
	closers []func() error
}

func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*App, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к базе данных: %w", err)
	}
	a := &App{DB: db, cfg: cfg, logger: logger}
	a.closers = append(a.closers, db.Close)

	logger.Info("Инициализация репозиториев...")
	billRepo := repository.NewBillRepository(db, logger)
	usageRepo := repository.NewUsageRepository(db, logger)
	catalogRepo := repository.NewCatalogRepository(db, logger)
	userRepo := repository.NewUserRepository(db, logger)

	var rateCache repository.RateCache = repository.NewMemoryRateCache()
	if cfg.RedisAddr != "" {
		redisCache := repository.NewRedisRateCache(cfg.RedisAddr)
		if err := redisCache.Ping(ctx); err != nil {
			logger.WithError(err).Warn("Redis недоступен, курсы валют кэшируются в памяти")
			_ = redisCache.Close()
		} else {
			rateCache = redisCache
			a.closers = append(a.closers, redisCache.Close)
		}
	}

	logger.Info("Инициализация сервисов...")
	explainClient := service.NewExplainClient(service.ExplainClientConfig{
		APIURL:  cfg.ExplainAPIURL,
		APIKey:  cfg.ExplainAPIKey,
		Model:   cfg.ExplainModel,
		Timeout: cfg.ExplainTimeout,
	}, logger)
	if !explainClient.Enabled() {
		logger.Warn("Сервис объяснений не настроен, используются шаблонные тексты")
	}
	narrative := service.NewNarrativeService(explainClient, logger)
	fx := service.NewFXService(cfg.FXRatesURL, cfg.BaseCurrency, rateCache, logger)
	emailSender := service.NewEmailSender(service.SMTPConfig{
		Host:               cfg.SMTPHost,
		Port:               cfg.SMTPPort,
		User:               cfg.SMTPUser,
		Password:           cfg.SMTPPass,
		Enabled:            cfg.EmailSenderEnabled,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}, logger)

	a.Auth = service.NewAuthService(cfg.JWTSecret, cfg.TokenExpiry, logger)
	a.Anomalies = service.NewAnomalyService(billRepo, narrative, cfg.AnomalyWindow, logger)
	a.Cohort = service.NewCohortService(userRepo, billRepo, fx, fx.Base(), narrative, logger)
	a.Tax = service.NewTaxService(billRepo, analytics.DefaultTaxPolicy(), narrative, logger)
	a.Simulation = service.NewSimulationService(billRepo, usageRepo, catalogRepo, narrative, logger)
	a.Usage = service.NewUsageService(usageRepo, logger)
	a.Bills = service.NewBillService(billRepo, catalogRepo, narrative, logger)
	a.Sweeper = service.NewAnomalySweeper(userRepo, a.Anomalies, emailSender, logger)

	return a, nil
}

// Router: /health и /metrics открыты, /api требует JWT и ограничен по частоте
func (a *App) Router() *mux.Router {
	logger := a.logger

	router := mux.NewRouter()
	router.Use(handler.MetricsMiddleware(logger))

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	router.HandleFunc("/health", a.health).Methods("GET")

	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.Use(handler.AuthMiddleware(a.Auth, logger))
	apiRouter.Use(handler.NewRateLimiter(a.cfg.RateLimitRPS, a.cfg.RateLimitBurst, logger).Middleware)

	handler.NewAnomalyHandler(a.Anomalies, a.Bills, logger).RegisterRoutes(apiRouter)
	handler.NewCohortHandler(a.Cohort, logger).RegisterRoutes(apiRouter)
	handler.NewTaxHandler(a.Tax, a.Bills, logger).RegisterRoutes(apiRouter)
	handler.NewSimulationHandler(a.Simulation, logger).RegisterRoutes(apiRouter)
	handler.NewBillHandler(a.Bills, a.Usage, logger).RegisterRoutes(apiRouter)

	return router
}

func (a *App) health(w http.ResponseWriter, r *http.Request) {
	if err := a.DB.PingContext(r.Context()); err != nil {
		a.logger.WithError(err).Error("База данных недоступна")
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.WithError(err).Warn("Ошибка при освобождении ресурсов")
		}
	}
}
