package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"billing-analytics/internal/model"
)

type UsageRepository struct {
	db     *sqlx.DB
	logger *logrus.Logger
}

func NewUsageRepository(db *sqlx.DB, logger *logrus.Logger) *UsageRepository {
	return &UsageRepository{db: db, logger: logger}
}

// GetUserUsageInRange возвращает суточные записи за [start, end)
func (r *UsageRepository) GetUserUsageInRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]model.UsageDaily, error) {
	query := `SELECT id, user_id, usage_date, mb_used, minutes_used, sms_used, roaming_mb
		FROM usage_daily
		WHERE user_id = $1 AND usage_date >= $2 AND usage_date < $3
		ORDER BY usage_date ASC`

	rows := make([]model.UsageDaily, 0)
	if err := r.db.SelectContext(ctx, &rows, query, userID, start, end); err != nil {
		r.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"start":   start.Format("2006-01-02"),
			"end":     end.Format("2006-01-02"),
		}).WithError(err).Error("Ошибка получения потребления")
		return nil, storageError("list daily usage", err)
	}
	return rows, nil
}
