package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"billing-analytics/internal/app"
	"billing-analytics/internal/config"
)

func main() {
	logger := logrus.New()
	// Уровень логирования (Debug для разработки, Info для продакшена)
	logger.SetLevel(logrus.DebugLevel)
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	startCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	application, err := app.New(startCtx, cfg, logger)
	cancel()
	if err != nil {
		logger.Fatalf("Ошибка инициализации приложения: %v", err)
	}
	defer application.Close()

	// Плановая проверка счетов всех абонентов
	c := cron.New()
	if cfg.AlertsEnabled {
		logger.WithField("schedule", cfg.SweepSchedule).Info("Настройка планировщика проверки счетов...")
		_, err = c.AddFunc(cfg.SweepSchedule, func() {
			logger.Info("Запуск плановой проверки счетов")
			report, err := application.Sweeper.Run(context.Background())
			if err != nil {
				logger.WithError(err).Error("Ошибка плановой проверки счетов")
				return
			}
			logger.WithFields(logrus.Fields{
				"users":   report.Users,
				"alerted": report.Alerted,
				"failed":  report.Failed,
			}).Info("Плановая проверка счетов завершена")
		})
		if err != nil {
			logger.Fatalf("Ошибка настройки планировщика: %v", err)
		}
	}
	c.Start()

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           application.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Запуск сервера на %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Ошибка сервера: %v", err)
		}
	}()

	// Ожидание сигналов для graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Завершение работы сервера...")
	<-c.Stop().Done()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Ошибка при завершении работы сервера: %v", err)
	}
	logger.Info("Сервер успешно остановлен")
}
