package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Названия налоговых корзин
const (
	TaxBucketKDV   = "KDV"
	TaxBucketOIV   = "OIV"
	TaxBucketOther = "OTHER"
)

type TaxBucket struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Share  decimal.Decimal `json:"share"`
}

// TaxBreakdown - разложение налогов счета или группы счетов
type TaxBreakdown struct {
	BillID        *uuid.UUID      `json:"bill_id,omitempty"`
	BillCount     int             `json:"bill_count"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	TotalTax      decimal.Decimal `json:"total_tax"`
	EffectiveRate decimal.Decimal `json:"effective_rate"`
	KDVAmount     decimal.Decimal `json:"kdv_amount"`
	OtherTaxes    decimal.Decimal `json:"other_taxes"`
	Buckets       []TaxBucket     `json:"buckets"`
	Suggestions   []string        `json:"suggestions,omitempty"`
	Explanation   string          `json:"explanation,omitempty"`
}

// TaxComparison - разница между двумя разложениями (второе минус первое)
type TaxComparison struct {
	First       TaxBreakdown               `json:"first"`
	Second      TaxBreakdown               `json:"second"`
	AmountDiff  decimal.Decimal            `json:"amount_diff"`
	TaxDiff     decimal.Decimal            `json:"tax_diff"`
	RateDiff    decimal.Decimal            `json:"rate_diff"`
	BucketDiffs map[string]decimal.Decimal `json:"bucket_diffs"`
}
