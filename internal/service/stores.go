package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"billing-analytics/internal/model"
)

// BillStore - чтение счетов и их позиций
type BillStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Bill, error)
	GetUserBillForPeriod(ctx context.Context, userID uuid.UUID, start, end time.Time) (*model.Bill, error)
	GetUserBillsInRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]model.Bill, error)
	GetBillsByUserTypeInRange(ctx context.Context, userType string, start, end time.Time) ([]model.Bill, error)
	GetItems(ctx context.Context, billID uuid.UUID) ([]model.BillItem, error)
	GetItemsForBills(ctx context.Context, billIDs []uuid.UUID) (map[uuid.UUID][]model.BillItem, error)
}

type UsageStore interface {
	GetUserUsageInRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]model.UsageDaily, error)
}

type CatalogStore interface {
	GetCatalog(ctx context.Context) (model.Catalog, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	ListAll(ctx context.Context) ([]model.User, error)
}

// CurrencyConverter переводит суммы в базовую валюту
type CurrencyConverter interface {
	Convert(ctx context.Context, amount decimal.Decimal, currency string) (decimal.Decimal, error)
}
