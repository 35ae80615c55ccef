package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AnomalyType string

const (
	AnomalySpike              AnomalyType = "SPIKE"
	AnomalyStatistical        AnomalyType = "STATISTICAL"
	AnomalyNewItem            AnomalyType = "NEW_ITEM"
	AnomalyRoamingActivation  AnomalyType = "ROAMING_ACTIVATION"
	AnomalyPremiumSMSIncrease AnomalyType = "PREMIUM_SMS_INCREASE"
	AnomalyCategoryDecrease   AnomalyType = "CATEGORY_DECREASE"
)

type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// TotalAmountCategory помечает находки по итоговой сумме счета
const TotalAmountCategory = "TOTAL_AMOUNT"

// AnomalyFinding - одна обнаруженная аномалия
type AnomalyFinding struct {
	Type             AnomalyType         `json:"type"`
	Rule             string              `json:"rule"`
	BillID           uuid.UUID           `json:"bill_id"`
	Period           string              `json:"period"`
	Category         string              `json:"category"`
	Subtype          string              `json:"subtype,omitempty"`
	Current          decimal.Decimal     `json:"current"`
	Baseline         decimal.Decimal     `json:"baseline"`
	Delta            decimal.Decimal     `json:"delta"`
	PercentageChange decimal.NullDecimal `json:"percentage_change"`
	ZScore           decimal.NullDecimal `json:"z_score"`
	Severity         Severity            `json:"severity"`
	Reason           string              `json:"reason"`
	SuggestedAction  string              `json:"suggested_action"`
}

// AnomalyReport - результат проверки одного счета
type AnomalyReport struct {
	BillID      uuid.UUID        `json:"bill_id"`
	Period      string           `json:"period"`
	PriorBills  int              `json:"prior_bills"`
	Findings    []AnomalyFinding `json:"findings"`
	Explanation string           `json:"explanation,omitempty"`
}

// AnomalyHistory - находки по серии счетов
type AnomalyHistory struct {
	Months       int              `json:"months"`
	BillCount    int              `json:"bill_count"`
	SkippedBills int              `json:"skipped_bills"`
	Findings     []AnomalyFinding `json:"findings"`
}

// AnomalySummary - сводка находок по типам
type AnomalySummary struct {
	Months       int                 `json:"months"`
	BillCount    int                 `json:"bill_count"`
	SkippedBills int                 `json:"skipped_bills"`
	Total        int                 `json:"total"`
	ByType       map[AnomalyType]int `json:"by_type"`
	Findings     []AnomalyFinding    `json:"findings"`
}
