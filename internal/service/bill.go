package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"billing-analytics/internal/analytics"
	"billing-analytics/internal/model"
)

type BillService struct {
	bills     BillStore
	catalog   CatalogStore
	narrative *NarrativeService
	logger    *logrus.Logger
}

func NewBillService(bills BillStore, catalog CatalogStore, narrative *NarrativeService, logger *logrus.Logger) *BillService {
	return &BillService{bills: bills, catalog: catalog, narrative: narrative, logger: logger}
}

// Explain объясняет счет: сводка, детализация по категориям и текст
func (s *BillService) Explain(ctx context.Context, billID uuid.UUID) (*model.BillExplanation, error) {
	bill, err := s.bills.GetByID(ctx, billID)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить счет: %w", err)
	}
	items, err := s.bills.GetItems(ctx, billID)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить позиции счета: %w", err)
	}

	catalog, err := s.catalog.GetCatalog(ctx)
	if err != nil {
		// без справочника строки остаются без названий услуг
		s.logger.WithError(err).Warn("Справочник недоступен, детализация без названий услуг")
		catalog = model.Catalog{}
	}

	explanation := analytics.ExplainBill(*bill, items, catalog)
	explanation.Narrative = s.narrative.Bill(ctx, explanation)

	s.logger.WithFields(logrus.Fields{
		"bill_id":    billID,
		"categories": len(explanation.Breakdown),
	}).Info("Объяснение счета сформировано")
	return &explanation, nil
}

// CheckOwner скрывает чужие счета: для них возвращается NotFound
func (s *BillService) CheckOwner(ctx context.Context, userID, billID uuid.UUID) error {
	bill, err := s.bills.GetByID(ctx, billID)
	if err != nil {
		return err
	}
	if bill.UserID != userID {
		s.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"bill_id": billID,
		}).Warn("Запрос счета другого абонента")
		return model.NewNotFound("bill", billID.String())
	}
	return nil
}
