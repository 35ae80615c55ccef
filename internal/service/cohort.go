package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"billing-analytics/internal/analytics"
	"billing-analytics/internal/metrics"
	"billing-analytics/internal/model"
)

const (
	cohortMonths  = 6
	ratingMonths  = 3
	similarMonths = 3
)

type CohortService struct {
	users     UserStore
	bills     BillStore
	fx        CurrencyConverter
	base      string
	narrative *NarrativeService
	logger    *logrus.Logger
}

// NewCohortService: счета в валюте, отличной от base, пересчитываются через fx.
// Без fx такие счета пропускаются.
func NewCohortService(
	users UserStore,
	bills BillStore,
	fx CurrencyConverter,
	base string,
	narrative *NarrativeService,
	logger *logrus.Logger,
) *CohortService {
	return &CohortService{
		users:     users,
		bills:     bills,
		fx:        fx,
		base:      strings.ToUpper(base),
		narrative: narrative,
		logger:    logger,
	}
}

// Analyze сравнивает средний счет абонента со всеми абонентами того же типа
func (s *CohortService) Analyze(ctx context.Context, userID uuid.UUID, token string) (*model.CohortResult, error) {
	period, err := analytics.ResolvePeriod(token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить абонента: %w", err)
	}

	window := period.Last(cohortMonths)
	userBills, cohortBills, err := s.load(ctx, user, window)
	if err != nil {
		return nil, err
	}

	skipped := 0
	userBills, n := s.normalize(ctx, userBills)
	skipped += n
	cohortBills, n = s.normalize(ctx, cohortBills)
	skipped += n

	result := analytics.CompareCohort(userBills, groupByUser(cohortBills, uuid.Nil))

	var current *model.Bill
	var trailing []model.Bill
	trailingPeriod := period.Trailing(ratingMonths)
	for i := range userBills {
		switch {
		case period.Contains(userBills[i].PeriodStart):
			current = &userBills[i]
		case trailingPeriod.Contains(userBills[i].PeriodStart):
			trailing = append(trailing, userBills[i])
		}
	}
	result.Rating = analytics.RatePerformance(current, trailing)

	s.fill(&result, user, period, skipped)
	result.Explanation = s.narrative.Cohort(ctx, result)

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"period":  result.Period,
		"peers":   result.PeerCount,
		"rating":  result.Rating,
		"skipped": skipped,
	}).Info("Сравнение с когортой выполнено")
	return &result, nil
}

// Similar сравнивает абонента только с близкими по расходам абонентами того же типа
func (s *CohortService) Similar(ctx context.Context, userID uuid.UUID, token string) (*model.CohortResult, error) {
	period, err := analytics.ResolvePeriod(token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить абонента: %w", err)
	}

	userBills, cohortBills, err := s.load(ctx, user, period.Last(similarMonths))
	if err != nil {
		return nil, err
	}

	skipped := 0
	userBills, n := s.normalize(ctx, userBills)
	skipped += n
	cohortBills, n = s.normalize(ctx, cohortBills)
	skipped += n

	result := analytics.FindSimilar(userBills, groupByUser(cohortBills, user.ID), decimal.Zero)
	s.fill(&result, user, period, skipped)
	result.Explanation = s.narrative.Cohort(ctx, result)

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"peers":   result.PeerCount,
	}).Info("Поиск похожих абонентов выполнен")
	return &result, nil
}

func (s *CohortService) load(ctx context.Context, user *model.User, window analytics.Period) ([]model.Bill, []model.Bill, error) {
	var userBills, cohortBills []model.Bill

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		bills, err := s.bills.GetUserBillsInRange(gctx, user.ID, window.Start, window.End)
		if err != nil {
			return fmt.Errorf("не удалось получить счета абонента: %w", err)
		}
		userBills = bills
		return nil
	})
	g.Go(func() error {
		bills, err := s.bills.GetBillsByUserTypeInRange(gctx, user.Type, window.Start, window.End)
		if err != nil {
			return fmt.Errorf("не удалось получить счета когорты: %w", err)
		}
		cohortBills = bills
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return userBills, cohortBills, nil
}

// normalize переводит суммы в базовую валюту; счета, которые не удалось
// пересчитать, пропускаются
func (s *CohortService) normalize(ctx context.Context, bills []model.Bill) ([]model.Bill, int) {
	out := make([]model.Bill, 0, len(bills))
	skipped := 0
	for _, b := range bills {
		currency := strings.ToUpper(b.Currency)
		if currency == "" || currency == s.base || s.base == "" {
			out = append(out, b)
			continue
		}

		var err error
		if s.fx == nil {
			err = fmt.Errorf("no converter for %s", currency)
		} else {
			var converted decimal.Decimal
			converted, err = s.fx.Convert(ctx, b.TotalAmount, currency)
			if err == nil {
				b.TotalAmount = converted
				b.Currency = s.base
				out = append(out, b)
				continue
			}
		}

		skipped++
		metrics.SkippedBillsTotal.WithLabelValues("cohort").Inc()
		s.logger.WithFields(logrus.Fields{
			"bill_id":  b.ID,
			"currency": currency,
		}).WithError(err).Warn("Счет пропущен: не удалось пересчитать валюту")
	}
	return out, skipped
}

func (s *CohortService) fill(result *model.CohortResult, user *model.User, period analytics.Period, skipped int) {
	result.UserID = user.ID
	result.UserType = user.Type
	result.Period = period.Token()
	result.SkippedBills = skipped
}

// groupByUser раскладывает счета по абонентам, exclude исключается
func groupByUser(bills []model.Bill, exclude uuid.UUID) map[uuid.UUID][]model.Bill {
	byUser := make(map[uuid.UUID][]model.Bill)
	for _, b := range bills {
		if b.UserID == exclude {
			continue
		}
		byUser[b.UserID] = append(byUser[b.UserID], b)
	}
	return byUser
}
