package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"billing-analytics/internal/metrics"
	"billing-analytics/internal/model"
)

// AlertSender - доставка уведомлений об аномалиях
type AlertSender interface {
	SendAnomalyAlert(user model.User, summary model.AnomalySummary) error
}

// SweepReport - итог одного прохода проверки
type SweepReport struct {
	Users   int `json:"users"`
	Alerted int `json:"alerted"`
	Clean   int `json:"clean"`
	Failed  int `json:"failed"`
}

// AnomalySweeper по расписанию строит сводку аномалий для всех абонентов.
// Ошибка по одному абоненту не останавливает проход.
type AnomalySweeper struct {
	users     UserStore
	anomalies *AnomalyService
	alerts    AlertSender
	now       func() time.Time
	logger    *logrus.Logger
}

func NewAnomalySweeper(users UserStore, anomalies *AnomalyService, alerts AlertSender, logger *logrus.Logger) *AnomalySweeper {
	return &AnomalySweeper{
		users:     users,
		anomalies: anomalies,
		alerts:    alerts,
		now:       time.Now,
		logger:    logger,
	}
}

func (s *AnomalySweeper) Run(ctx context.Context) (SweepReport, error) {
	started := s.now()
	defer func() {
		metrics.SweepDurationSeconds.Observe(time.Since(started).Seconds())
	}()

	users, err := s.users.ListAll(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Не удалось получить список абонентов для проверки")
		return SweepReport{}, err
	}

	report := SweepReport{Users: len(users)}
	for _, user := range users {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		summary, err := s.anomalies.Summary(ctx, user.ID, started)
		if err != nil {
			report.Failed++
			metrics.SweepUsersTotal.WithLabelValues("failed").Inc()
			s.logger.WithFields(logrus.Fields{
				"user_id": user.ID,
			}).WithError(err).Warn("Абонент пропущен при проверке счетов")
			continue
		}

		if summary.Total == 0 {
			report.Clean++
			metrics.SweepUsersTotal.WithLabelValues("clean").Inc()
			continue
		}

		if s.alerts == nil || !user.CanReceiveAlerts() {
			metrics.SweepUsersTotal.WithLabelValues("not_notified").Inc()
			continue
		}
		if err := s.alerts.SendAnomalyAlert(user, *summary); err != nil {
			report.Failed++
			metrics.SweepUsersTotal.WithLabelValues("failed").Inc()
			s.logger.WithFields(logrus.Fields{
				"user_id":  user.ID,
				"findings": summary.Total,
			}).WithError(err).Warn("Не удалось отправить уведомление об аномалиях")
			continue
		}
		report.Alerted++
		metrics.SweepUsersTotal.WithLabelValues("alerted").Inc()
	}

	s.logger.WithFields(logrus.Fields{
		"users":   report.Users,
		"alerted": report.Alerted,
		"clean":   report.Clean,
		"failed":  report.Failed,
	}).Info("Проверка счетов завершена")
	return report, nil
}
