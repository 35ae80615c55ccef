package service

import (
	"context"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"billing-analytics/internal/model"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func bill(userID uuid.UUID, year int, month time.Month, total, currency string) model.Bill {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return model.Bill{
		ID:          uuid.New(),
		UserID:      userID,
		PeriodStart: start,
		PeriodEnd:   start.AddDate(0, 1, 0),
		IssueDate:   start.AddDate(0, 1, 2),
		TotalAmount: dec(total),
		Currency:    currency,
	}
}

func item(b model.Bill, category model.ItemCategory, subtype, amount string) model.BillItem {
	return model.BillItem{
		ID:          uuid.New(),
		BillID:      b.ID,
		Category:    category,
		Subtype:     subtype,
		Description: subtype,
		Amount:      dec(amount),
		Quantity:    1,
	}
}

type fakeBillStore struct {
	bills    []model.Bill
	items    map[uuid.UUID][]model.BillItem
	userType map[uuid.UUID]string
	failUser map[uuid.UUID]error
	err      error
}

func newFakeBillStore() *fakeBillStore {
	return &fakeBillStore{
		items:    make(map[uuid.UUID][]model.BillItem),
		userType: make(map[uuid.UUID]string),
		failUser: make(map[uuid.UUID]error),
	}
}

func (f *fakeBillStore) add(b model.Bill, items ...model.BillItem) model.Bill {
	f.bills = append(f.bills, b)
	f.items[b.ID] = append(f.items[b.ID], items...)
	return b
}

func (f *fakeBillStore) GetByID(_ context.Context, id uuid.UUID) (*model.Bill, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.bills {
		if f.bills[i].ID == id {
			b := f.bills[i]
			return &b, nil
		}
	}
	return nil, model.NewNotFound("bill", id.String())
}

func (f *fakeBillStore) GetUserBillForPeriod(ctx context.Context, userID uuid.UUID, start, end time.Time) (*model.Bill, error) {
	bills, err := f.GetUserBillsInRange(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	if len(bills) == 0 {
		return nil, model.NewNotFound("bill", userID.String())
	}
	b := bills[len(bills)-1]
	return &b, nil
}

func (f *fakeBillStore) GetUserBillsInRange(_ context.Context, userID uuid.UUID, start, end time.Time) ([]model.Bill, error) {
	if f.err != nil {
		return nil, f.err
	}
	if err := f.failUser[userID]; err != nil {
		return nil, err
	}
	return f.filter(func(b model.Bill) bool {
		return b.UserID == userID && !b.PeriodStart.Before(start) && b.PeriodStart.Before(end)
	}), nil
}

func (f *fakeBillStore) GetBillsByUserTypeInRange(_ context.Context, userType string, start, end time.Time) ([]model.Bill, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.filter(func(b model.Bill) bool {
		return f.userType[b.UserID] == userType && !b.PeriodStart.Before(start) && b.PeriodStart.Before(end)
	}), nil
}

func (f *fakeBillStore) GetItems(_ context.Context, billID uuid.UUID) ([]model.BillItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.items[billID], nil
}

func (f *fakeBillStore) GetItemsForBills(_ context.Context, ids []uuid.UUID) (map[uuid.UUID][]model.BillItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[uuid.UUID][]model.BillItem, len(ids))
	for _, id := range ids {
		if items, ok := f.items[id]; ok {
			out[id] = items
		}
	}
	return out, nil
}

func (f *fakeBillStore) filter(keep func(model.Bill) bool) []model.Bill {
	out := make([]model.Bill, 0)
	for _, b := range f.bills {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PeriodStart.Before(out[j].PeriodStart) })
	return out
}

type fakeUserStore struct {
	users []model.User
	err   error
}

func (f *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	for i := range f.users {
		if f.users[i].ID == id {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, model.NewNotFound("user", id.String())
}

func (f *fakeUserStore) ListAll(context.Context) ([]model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users, nil
}

type fakeUsageStore struct {
	rows []model.UsageDaily
}

func (f *fakeUsageStore) GetUserUsageInRange(_ context.Context, userID uuid.UUID, start, end time.Time) ([]model.UsageDaily, error) {
	out := make([]model.UsageDaily, 0)
	for _, r := range f.rows {
		if r.UserID == userID && !r.UsageDate.Before(start) && r.UsageDate.Before(end) {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeCatalogStore struct {
	catalog model.Catalog
	err     error
}

func (f *fakeCatalogStore) GetCatalog(context.Context) (model.Catalog, error) {
	return f.catalog, f.err
}

type staticExplainer struct {
	text  string
	err   error
	calls int
}

func (e *staticExplainer) Explain(context.Context, string) (string, error) {
	e.calls++
	return e.text, e.err
}

type fakeConverter struct {
	rates map[string]decimal.Decimal
}

func (f fakeConverter) Convert(_ context.Context, amount decimal.Decimal, currency string) (decimal.Decimal, error) {
	rate, ok := f.rates[currency]
	if !ok {
		return decimal.Zero, model.NewNotFound("currency rate", currency)
	}
	return amount.Mul(rate).Round(2), nil
}

func nullDec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(s))
}
