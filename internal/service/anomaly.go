package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"billing-analytics/internal/analytics"
	"billing-analytics/internal/metrics"
	"billing-analytics/internal/model"
)

const (
	defaultAnomalyWindow = 3

	historyMonths   = 6
	historyLookback = 3
	summaryMonths   = 3
	summaryLookback = 2
)

type AnomalyService struct {
	bills          BillStore
	narrative      *NarrativeService
	detector       *analytics.Detector
	seriesDetector *analytics.Detector
	window         int
	logger         *logrus.Logger
}

// NewAnomalyService: window - число предыдущих счетов для проверки одного счета
func NewAnomalyService(bills BillStore, narrative *NarrativeService, window int, logger *logrus.Logger) *AnomalyService {
	if window <= 0 {
		window = defaultAnomalyWindow
	}
	return &AnomalyService{
		bills:          bills,
		narrative:      narrative,
		detector:       analytics.NewDetector(analytics.DefaultRules()...),
		seriesDetector: analytics.NewDetector(analytics.TotalAmountRules()...),
		window:         window,
		logger:         logger,
	}
}

// DetectForPeriod проверяет счет абонента за месяц вида YYYY-MM
func (s *AnomalyService) DetectForPeriod(ctx context.Context, userID uuid.UUID, token string) (*model.AnomalyReport, error) {
	period, err := analytics.ResolvePeriod(token)
	if err != nil {
		return nil, err
	}

	bill, err := s.bills.GetUserBillForPeriod(ctx, userID, period.Start, period.End)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить счет за %s: %w", token, err)
	}
	return s.detect(ctx, *bill)
}

func (s *AnomalyService) DetectForBill(ctx context.Context, billID uuid.UUID) (*model.AnomalyReport, error) {
	bill, err := s.bills.GetByID(ctx, billID)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить счет: %w", err)
	}
	return s.detect(ctx, *bill)
}

func (s *AnomalyService) detect(ctx context.Context, bill model.Bill) (*model.AnomalyReport, error) {
	trailing := analytics.PeriodOf(bill.PeriodStart).Trailing(s.window)

	prior, err := s.bills.GetUserBillsInRange(ctx, bill.UserID, trailing.Start, trailing.End)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить предыдущие счета: %w", err)
	}
	if len(prior) > s.window {
		prior = prior[len(prior)-s.window:]
	}

	ids := make([]uuid.UUID, 0, len(prior)+1)
	ids = append(ids, bill.ID)
	for _, p := range prior {
		ids = append(ids, p.ID)
	}
	items, err := s.bills.GetItemsForBills(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить позиции счетов: %w", err)
	}

	findings := s.detector.Detect(analytics.Window{
		Current:      bill,
		CurrentItems: items[bill.ID],
		Prior:        prior,
		PriorItems:   items,
	})
	countFindings(findings)

	s.logger.WithFields(logrus.Fields{
		"bill_id":     bill.ID,
		"prior_bills": len(prior),
		"findings":    len(findings),
	}).Info("Проверка счета на аномалии завершена")

	report := &model.AnomalyReport{
		BillID:     bill.ID,
		Period:     analytics.PeriodOf(bill.PeriodStart).Token(),
		PriorBills: len(prior),
		Findings:   findings,
	}
	report.Explanation = s.narrative.Anomaly(ctx, *report)
	return report, nil
}

// History прогоняет правила по итоговой сумме за последние шесть месяцев
func (s *AnomalyService) History(ctx context.Context, userID uuid.UUID, asOf time.Time) (*model.AnomalyHistory, error) {
	res, bills, err := s.series(ctx, userID, asOf, historyMonths, historyLookback, "history")
	if err != nil {
		return nil, err
	}
	return &model.AnomalyHistory{
		Months:       historyMonths,
		BillCount:    bills,
		SkippedBills: res.Skipped,
		Findings:     res.Findings,
	}, nil
}

// Summary - то же за три месяца с подсчетом по типам
func (s *AnomalyService) Summary(ctx context.Context, userID uuid.UUID, asOf time.Time) (*model.AnomalySummary, error) {
	res, bills, err := s.series(ctx, userID, asOf, summaryMonths, summaryLookback, "summary")
	if err != nil {
		return nil, err
	}
	return &model.AnomalySummary{
		Months:       summaryMonths,
		BillCount:    bills,
		SkippedBills: res.Skipped,
		Total:        len(res.Findings),
		ByType:       analytics.CountByType(res.Findings),
		Findings:     res.Findings,
	}, nil
}

func (s *AnomalyService) series(
	ctx context.Context,
	userID uuid.UUID,
	asOf time.Time,
	months, lookback int,
	operation string,
) (analytics.SeriesResult, int, error) {
	window := analytics.PeriodOf(asOf).Last(months)

	bills, err := s.bills.GetUserBillsInRange(ctx, userID, window.Start, window.End)
	if err != nil {
		return analytics.SeriesResult{}, 0, fmt.Errorf("не удалось получить счета абонента: %w", err)
	}

	res := s.seriesDetector.Series(bills, lookback, func(b model.Bill, err error) {
		metrics.SkippedBillsTotal.WithLabelValues("anomaly_" + operation).Inc()
		s.logger.WithFields(logrus.Fields{
			"bill_id": b.ID,
			"user_id": userID,
		}).WithError(err).Warn("Счет пропущен при поиске аномалий")
	})
	countFindings(res.Findings)

	s.logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"operation": operation,
		"bills":     len(bills),
		"evaluated": res.Evaluated,
		"skipped":   res.Skipped,
		"findings":  len(res.Findings),
	}).Info("Анализ серии счетов завершен")
	return res, len(bills), nil
}

func countFindings(findings []model.AnomalyFinding) {
	for _, f := range findings {
		metrics.AnomalyFindingsTotal.WithLabelValues(string(f.Type)).Inc()
	}
}
