package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"billing-analytics/internal/model"
)

const userColumns = `id, name, email, msisdn, type, current_plan_id, created_at`

type UserRepository struct {
	db     *sqlx.DB
	logger *logrus.Logger
}

func NewUserRepository(db *sqlx.DB, logger *logrus.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if isNoRows(err) {
			return nil, model.NewNotFound("user", id.String())
		}
		r.logger.WithError(err).WithField("user_id", id).Error("Ошибка получения абонента")
		return nil, storageError("find user by ID", err)
	}
	return &user, nil
}

// ListAll используется фоновой проверкой счетов
func (r *UserRepository) ListAll(ctx context.Context) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at, id`

	users := make([]model.User, 0)
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		r.logger.WithError(err).Error("Ошибка получения списка абонентов")
		return nil, storageError("list users", err)
	}
	return users, nil
}
