package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"billing-analytics/internal/model"
)

type CatalogRepository struct {
	db     *sqlx.DB
	logger *logrus.Logger
}

func NewCatalogRepository(db *sqlx.DB, logger *logrus.Logger) *CatalogRepository {
	return &CatalogRepository{db: db, logger: logger}
}

// GetCatalog читает справочник целиком: тарифы, пакеты, услуги и короткие номера
func (r *CatalogRepository) GetCatalog(ctx context.Context) (model.Catalog, error) {
	catalog := model.Catalog{
		Plans:      make([]model.Plan, 0),
		AddOns:     make([]model.AddOnPack, 0),
		VAS:        make([]model.VAS, 0),
		PremiumSMS: make([]model.PremiumSMS, 0),
	}

	queries := []struct {
		name  string
		dest  interface{}
		query string
	}{
		{"plans", &catalog.Plans, `SELECT id, name, type, quota_gb, quota_minutes, quota_sms, monthly_price,
			overage_gb, overage_minute, overage_sms FROM plans ORDER BY monthly_price, id`},
		{"add-ons", &catalog.AddOns, `SELECT id, name, type, extra_gb, extra_minutes, extra_sms, price
			FROM add_on_packs ORDER BY price, id`},
		{"vas", &catalog.VAS, `SELECT id, code, name, monthly_fee, provider FROM vas_catalog ORDER BY code`},
		{"premium sms", &catalog.PremiumSMS, `SELECT shortcode, provider, unit_price FROM premium_sms_catalog ORDER BY shortcode`},
	}

	for _, q := range queries {
		if err := r.db.SelectContext(ctx, q.dest, q.query); err != nil {
			r.logger.WithError(err).WithField("table", q.name).Error("Ошибка загрузки справочника")
			return model.Catalog{}, storageError("load "+q.name, err)
		}
	}

	r.logger.WithFields(logrus.Fields{
		"plans":  len(catalog.Plans),
		"addons": len(catalog.AddOns),
	}).Debug("Справочник загружен")
	return catalog, nil
}
