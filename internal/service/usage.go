package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"billing-analytics/internal/analytics"
	"billing-analytics/internal/model"
)

const (
	defaultUsageTrendMonths = 3
	maxUsageTrendMonths     = 12
)

type UsageService struct {
	usage  UsageStore
	logger *logrus.Logger
}

func NewUsageService(usage UsageStore, logger *logrus.Logger) *UsageService {
	return &UsageService{usage: usage, logger: logger}
}

// Summary - сводка суточного потребления за месяц
func (s *UsageService) Summary(ctx context.Context, userID uuid.UUID, token string) (*model.UsageSummary, error) {
	period, err := analytics.ResolvePeriod(token)
	if err != nil {
		return nil, err
	}

	rows, err := s.usage.GetUserUsageInRange(ctx, userID, period.Start, period.End)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить потребление: %w", err)
	}

	summary := analytics.SummarizeUsage(rows, period)
	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"period":  token,
		"days":    summary.Days,
	}).Debug("Сводка потребления рассчитана")
	return &summary, nil
}

// Trend - сводка потребления за последние months месяцев, включая текущий
func (s *UsageService) Trend(ctx context.Context, userID uuid.UUID, months int, asOf time.Time) (*model.UsageSummary, error) {
	if months <= 0 {
		months = defaultUsageTrendMonths
	}
	if months > maxUsageTrendMonths {
		months = maxUsageTrendMonths
	}
	window := analytics.PeriodOf(asOf).Last(months)

	rows, err := s.usage.GetUserUsageInRange(ctx, userID, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить потребление: %w", err)
	}

	summary := analytics.SummarizeUsage(rows, window)
	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"months":  months,
		"days":    summary.Days,
	}).Debug("Динамика потребления рассчитана")
	return &summary, nil
}
