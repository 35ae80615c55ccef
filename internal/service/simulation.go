package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"billing-analytics/internal/analytics"
	"billing-analytics/internal/model"
)

type SimulationService struct {
	bills     BillStore
	usage     UsageStore
	catalog   CatalogStore
	menu      []analytics.ScenarioDescriptor
	narrative *NarrativeService
	logger    *logrus.Logger
}

func NewSimulationService(
	bills BillStore,
	usage UsageStore,
	catalog CatalogStore,
	narrative *NarrativeService,
	logger *logrus.Logger,
) *SimulationService {
	return &SimulationService{
		bills:     bills,
		usage:     usage,
		catalog:   catalog,
		menu:      analytics.DefaultMenu(),
		narrative: narrative,
		logger:    logger,
	}
}

// basis загружает счет за период, его позиции, потребление и справочник
func (s *SimulationService) basis(ctx context.Context, userID uuid.UUID, token string) (analytics.CostBasis, *analytics.ScenarioCalculator, error) {
	period, err := analytics.ResolvePeriod(token)
	if err != nil {
		return analytics.CostBasis{}, nil, err
	}

	bill, err := s.bills.GetUserBillForPeriod(ctx, userID, period.Start, period.End)
	if err != nil {
		return analytics.CostBasis{}, nil, fmt.Errorf("не удалось получить счет за %s: %w", token, err)
	}

	var (
		items   []model.BillItem
		usage   []model.UsageDaily
		catalog model.Catalog
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if items, err = s.bills.GetItems(gctx, bill.ID); err != nil {
			return fmt.Errorf("не удалось получить позиции счета: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if usage, err = s.usage.GetUserUsageInRange(gctx, userID, period.Start, period.End); err != nil {
			return fmt.Errorf("не удалось получить потребление: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if catalog, err = s.catalog.GetCatalog(gctx); err != nil {
			return fmt.Errorf("не удалось загрузить справочник: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return analytics.CostBasis{}, nil, err
	}

	if len(usage) == 0 {
		s.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"period":  token,
		}).Warn("Нет данных о потреблении, перерасход считается нулевым")
	}

	return analytics.NewCostBasis(*bill, items, analytics.Snapshot(usage)), analytics.NewScenarioCalculator(catalog), nil
}

// Simulate считает один сценарий пользователя
func (s *SimulationService) Simulate(ctx context.Context, userID uuid.UUID, req model.SimulationRequest) (*model.SimulationResponse, error) {
	basis, calc, err := s.basis(ctx, userID, req.Period)
	if err != nil {
		return nil, err
	}
	resp, err := analytics.NewSimulator(calc, s.menu).Simulate(basis, req.Scenario)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"period":   req.Period,
		"new_cost": resp.Result.NewTotal,
		"savings":  resp.Result.Savings,
	}).Info("Сценарий рассчитан")
	return &resp, nil
}

func (s *SimulationService) Compare(ctx context.Context, userID uuid.UUID, token string) (*model.ScenarioComparison, error) {
	basis, calc, err := s.basis(ctx, userID, token)
	if err != nil {
		return nil, err
	}
	cmp, err := analytics.NewSimulator(calc, s.menu).Compare(basis)
	if err != nil {
		return nil, err
	}
	return &cmp, nil
}

func (s *SimulationService) WhatIf(ctx context.Context, userID uuid.UUID, token string) (*model.WhatIfAnalysis, error) {
	basis, calc, err := s.basis(ctx, userID, token)
	if err != nil {
		return nil, err
	}
	analysis, err := analytics.NewSimulator(calc, s.menu).WhatIf(basis)
	if err != nil {
		return nil, err
	}
	return &analysis, nil
}

// Autofixes возвращает кандидатов в порядке перебора
func (s *SimulationService) Autofixes(ctx context.Context, userID uuid.UUID, token string) ([]model.AutofixCandidate, error) {
	basis, calc, err := s.basis(ctx, userID, token)
	if err != nil {
		return nil, err
	}
	candidates, err := analytics.NewAutofixRecommender(calc).Recommend(basis)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"period":     token,
		"candidates": len(candidates),
	}).Info("Рекомендации по снижению счета сформированы")
	return candidates, nil
}

func (s *SimulationService) PrioritizedAutofixes(ctx context.Context, userID uuid.UUID, token string) ([]model.AutofixCandidate, error) {
	candidates, err := s.Autofixes(ctx, userID, token)
	if err != nil {
		return nil, err
	}
	return analytics.Prioritize(candidates), nil
}

// BestAutofix - кандидат с наибольшей экономией и текстовым объяснением
func (s *SimulationService) BestAutofix(ctx context.Context, userID uuid.UUID, token string) (*model.AutofixCandidate, error) {
	candidates, err := s.Autofixes(ctx, userID, token)
	if err != nil {
		return nil, err
	}
	best, _ := analytics.Best(candidates)
	best.Explanation = s.narrative.Autofix(ctx, candidates)
	return &best, nil
}
