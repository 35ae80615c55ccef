package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Rating string

const (
	RatingHigh    Rating = "HIGH"
	RatingLow     Rating = "LOW"
	RatingNormal  Rating = "NORMAL"
	RatingSimilar Rating = "SIMILAR"
)

// CohortResult - сравнение расходов абонента с когортой
type CohortResult struct {
	UserID            uuid.UUID           `json:"user_id"`
	UserType          string              `json:"user_type"`
	Period            string              `json:"period"`
	UserAverage       decimal.Decimal     `json:"user_average"`
	CohortAverage     decimal.Decimal     `json:"cohort_average"`
	Difference        decimal.Decimal     `json:"difference"`
	DifferencePercent decimal.NullDecimal `json:"difference_percent"`
	Rating            Rating              `json:"rating"`
	PeerCount         int                 `json:"peer_count"`
	BillCount         int                 `json:"bill_count"`
	SkippedBills      int                 `json:"skipped_bills"`
	Explanation       string              `json:"explanation,omitempty"`
}
