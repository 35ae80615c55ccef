package repository

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billing-analytics/internal/model"
)

func newMockRepo(t *testing.T) (*BillRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewBillRepository(sqlx.NewDb(db, "postgres"), logger), mock
}

func TestBillRepositoryGetByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()
	userID := uuid.New()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "user_id", "period_start", "period_end", "issue_date", "total_amount", "currency"}).
		AddRow(id.String(), userID.String(), start, start.AddDate(0, 1, 0), start.AddDate(0, 1, 2), "189.90", "TRY")
	mock.ExpectQuery(`SELECT (.+) FROM bills WHERE id = \$1`).WithArgs(id).WillReturnRows(rows)

	bill, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, bill.ID)
	assert.Equal(t, userID, bill.UserID)
	assert.Equal(t, "189.9", bill.TotalAmount.String())
	assert.Equal(t, "TRY", bill.Currency)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBillRepositoryGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM bills WHERE id = \$1`).WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.NotErrorIs(t, err, model.ErrCollaboratorUnavailable)
}

func TestBillRepositoryDriverFailureIsCollaboratorError(t *testing.T) {
	repo, mock := newMockRepo(t)
	userID := uuid.New()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT (.+) FROM bills`).WillReturnError(errors.New("connection reset"))

	_, err := repo.GetUserBillsInRange(context.Background(), userID, start, start.AddDate(0, 6, 0))
	assert.ErrorIs(t, err, model.ErrCollaboratorUnavailable)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestBillRepositoryGetItemsForBillsGroupsByBill(t *testing.T) {
	repo, mock := newMockRepo(t)
	first, second := uuid.New(), uuid.New()
	created := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	cols := []string{"id", "bill_id", "category", "subtype", "description", "amount", "unit_price", "quantity", "tax_rate", "created_at"}
	rows := sqlmock.NewRows(cols).
		AddRow(uuid.NewString(), first.String(), "DATA", "data_overage", "Интернет сверх пакета", "30.00", "10.00", 3, "0.20", created).
		AddRow(uuid.NewString(), second.String(), "VAS", "plan_fee", "Абонентская плата", "100.00", "100.00", 1, "0.20", created).
		AddRow(uuid.NewString(), first.String(), "TAX", "kdv", "НДС", "6.00", "6.00", 1, "0.20", created)
	mock.ExpectQuery(`SELECT (.+) FROM bill_items WHERE bill_id = ANY`).WillReturnRows(rows)

	byBill, err := repo.GetItemsForBills(context.Background(), []uuid.UUID{first, second})
	require.NoError(t, err)
	assert.Len(t, byBill[first], 2)
	assert.Len(t, byBill[second], 1)
	assert.Equal(t, model.CategoryData, byBill[first][0].Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBillRepositoryGetItemsForNoBills(t *testing.T) {
	repo, mock := newMockRepo(t)

	byBill, err := repo.GetItemsForBills(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, byBill)
	assert.NoError(t, mock.ExpectationsWereMet())
}
