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
	defaultTaxTrendMonths = 3
	maxTaxTrendMonths     = 24
)

type TaxService struct {
	bills      BillStore
	decomposer *analytics.TaxDecomposer
	narrative  *NarrativeService
	logger     *logrus.Logger
}

func NewTaxService(bills BillStore, policy analytics.TaxPolicy, narrative *NarrativeService, logger *logrus.Logger) *TaxService {
	return &TaxService{
		bills:      bills,
		decomposer: analytics.NewTaxDecomposer(policy),
		narrative:  narrative,
		logger:     logger,
	}
}

// Breakdown раскладывает налоги одного счета по корзинам
func (s *TaxService) Breakdown(ctx context.Context, billID uuid.UUID) (*model.TaxBreakdown, error) {
	b, err := s.decompose(ctx, billID)
	if err != nil {
		return nil, err
	}
	b.Suggestions = s.decomposer.Suggest(b)
	b.Explanation = s.narrative.Tax(ctx, b)
	return &b, nil
}

// Trend суммирует налоги абонента за последние months месяцев
func (s *TaxService) Trend(ctx context.Context, userID uuid.UUID, months int, asOf time.Time) (*model.TaxBreakdown, error) {
	if months <= 0 {
		months = defaultTaxTrendMonths
	}
	if months > maxTaxTrendMonths {
		months = maxTaxTrendMonths
	}
	window := analytics.PeriodOf(asOf).Last(months)

	bills, err := s.bills.GetUserBillsInRange(ctx, userID, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить счета абонента: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(bills))
	for _, b := range bills {
		ids = append(ids, b.ID)
	}
	items, err := s.bills.GetItemsForBills(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить позиции счетов: %w", err)
	}

	b := s.decomposer.Aggregate(bills, items)
	b.Suggestions = s.decomposer.Suggest(b)
	b.Explanation = s.narrative.Tax(ctx, b)

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"months":  months,
		"bills":   len(bills),
	}).Info("Налоговая динамика рассчитана")
	return &b, nil
}

// Compare возвращает разницу second - first
func (s *TaxService) Compare(ctx context.Context, first, second uuid.UUID) (*model.TaxComparison, error) {
	a, err := s.decompose(ctx, first)
	if err != nil {
		return nil, err
	}
	b, err := s.decompose(ctx, second)
	if err != nil {
		return nil, err
	}
	cmp := s.decomposer.Compare(a, b)
	return &cmp, nil
}

func (s *TaxService) Suggestions(ctx context.Context, billID uuid.UUID) ([]string, error) {
	b, err := s.decompose(ctx, billID)
	if err != nil {
		return nil, err
	}
	return s.decomposer.Suggest(b), nil
}

func (s *TaxService) decompose(ctx context.Context, billID uuid.UUID) (model.TaxBreakdown, error) {
	bill, err := s.bills.GetByID(ctx, billID)
	if err != nil {
		return model.TaxBreakdown{}, fmt.Errorf("не удалось получить счет: %w", err)
	}
	items, err := s.bills.GetItems(ctx, billID)
	if err != nil {
		return model.TaxBreakdown{}, fmt.Errorf("не удалось получить позиции счета: %w", err)
	}
	return s.decomposer.Decompose(*bill, items), nil
}
