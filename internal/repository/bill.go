package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"billing-analytics/internal/model"
)

const billColumns = `id, user_id, period_start, period_end, issue_date, total_amount, currency`

const itemColumns = `id, bill_id, category, subtype, description, amount, unit_price, quantity, tax_rate, created_at`

type BillRepository struct {
	db     *sqlx.DB
	logger *logrus.Logger
}

func NewBillRepository(db *sqlx.DB, logger *logrus.Logger) *BillRepository {
	return &BillRepository{db: db, logger: logger}
}

func (r *BillRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE id = $1`

	var bill model.Bill
	if err := r.db.GetContext(ctx, &bill, query, id); err != nil {
		if isNoRows(err) {
			return nil, model.NewNotFound("bill", id.String())
		}
		r.logger.WithError(err).WithField("bill_id", id).Error("Ошибка получения счета")
		return nil, storageError("get bill", err)
	}
	return &bill, nil
}

// GetUserBillForPeriod возвращает счет абонента, период которого начинается в [start, end)
func (r *BillRepository) GetUserBillForPeriod(ctx context.Context, userID uuid.UUID, start, end time.Time) (*model.Bill, error) {
	query := `SELECT ` + billColumns + `
		FROM bills
		WHERE user_id = $1 AND period_start >= $2 AND period_start < $3
		ORDER BY period_start DESC
		LIMIT 1`

	var bill model.Bill
	if err := r.db.GetContext(ctx, &bill, query, userID, start, end); err != nil {
		if isNoRows(err) {
			return nil, model.NewNotFound("bill", userID.String()+"@"+start.Format("2006-01"))
		}
		r.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"start":   start.Format("2006-01-02"),
		}).WithError(err).Error("Ошибка получения счета за период")
		return nil, storageError("get bill for period", err)
	}
	return &bill, nil
}

// GetUserBillsInRange возвращает счета абонента по возрастанию периода
func (r *BillRepository) GetUserBillsInRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]model.Bill, error) {
	query := `SELECT ` + billColumns + `
		FROM bills
		WHERE user_id = $1 AND period_start >= $2 AND period_start < $3
		ORDER BY period_start ASC`

	bills := make([]model.Bill, 0)
	if err := r.db.SelectContext(ctx, &bills, query, userID, start, end); err != nil {
		r.logger.WithError(err).WithField("user_id", userID).Error("Ошибка получения счетов абонента")
		return nil, storageError("list user bills", err)
	}

	r.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"count":   len(bills),
	}).Debug("Счета абонента получены")
	return bills, nil
}

// GetBillsByUserTypeInRange возвращает счета всех абонентов заданного типа
func (r *BillRepository) GetBillsByUserTypeInRange(ctx context.Context, userType string, start, end time.Time) ([]model.Bill, error) {
	query := `SELECT b.id, b.user_id, b.period_start, b.period_end, b.issue_date, b.total_amount, b.currency
		FROM bills b
		JOIN users u ON u.id = b.user_id
		WHERE u.type = $1 AND b.period_start >= $2 AND b.period_start < $3
		ORDER BY b.user_id, b.period_start ASC`

	bills := make([]model.Bill, 0)
	if err := r.db.SelectContext(ctx, &bills, query, userType, start, end); err != nil {
		r.logger.WithError(err).WithField("user_type", userType).Error("Ошибка получения счетов когорты")
		return nil, storageError("list cohort bills", err)
	}
	return bills, nil
}

func (r *BillRepository) GetItems(ctx context.Context, billID uuid.UUID) ([]model.BillItem, error) {
	query := `SELECT ` + itemColumns + ` FROM bill_items WHERE bill_id = $1 ORDER BY created_at, id`

	items := make([]model.BillItem, 0)
	if err := r.db.SelectContext(ctx, &items, query, billID); err != nil {
		r.logger.WithError(err).WithField("bill_id", billID).Error("Ошибка получения позиций счета")
		return nil, storageError("list bill items", err)
	}
	return items, nil
}

// GetItemsForBills загружает позиции нескольких счетов одним запросом
func (r *BillRepository) GetItemsForBills(ctx context.Context, billIDs []uuid.UUID) (map[uuid.UUID][]model.BillItem, error) {
	byBill := make(map[uuid.UUID][]model.BillItem, len(billIDs))
	if len(billIDs) == 0 {
		return byBill, nil
	}

	ids := make([]string, 0, len(billIDs))
	for _, id := range billIDs {
		ids = append(ids, id.String())
	}

	query := `SELECT ` + itemColumns + ` FROM bill_items WHERE bill_id = ANY($1::uuid[]) ORDER BY created_at, id`

	var items []model.BillItem
	if err := r.db.SelectContext(ctx, &items, query, pq.Array(ids)); err != nil {
		r.logger.WithError(err).WithField("bills", len(billIDs)).Error("Ошибка получения позиций счетов")
		return nil, storageError("list items for bills", err)
	}
	for _, it := range items {
		byBill[it.BillID] = append(byBill[it.BillID], it)
	}
	return byBill, nil
}
