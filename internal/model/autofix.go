package model

import "github.com/shopspring/decimal"

type AutofixCategory string

const (
	AutofixPlanChange      AutofixCategory = "PLAN_CHANGE"
	AutofixVASCancel       AutofixCategory = "VAS_CANCEL"
	AutofixPremiumSMSBlock AutofixCategory = "PREMIUM_SMS_BLOCK"
	AutofixAddOn           AutofixCategory = "ADDON_ADD"
	AutofixNoSavings       AutofixCategory = "NO_SAVINGS"
)

type Risk string

const (
	RiskNone   Risk = "NONE"
	RiskLow    Risk = "LOW"
	RiskMedium Risk = "MEDIUM"
)

type Difficulty string

const (
	DifficultyNone   Difficulty = "NONE"
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
)

type AutofixStatus string

const (
	AutofixPending  AutofixStatus = "PENDING"
	AutofixNoAction AutofixStatus = "NO_ACTION"
)

// AutofixCandidate - готовая рекомендация по снижению счета
type AutofixCandidate struct {
	ScenarioID  string          `json:"scenario_id"`
	Category    AutofixCategory `json:"category"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	CurrentCost decimal.Decimal `json:"current_cost"`
	NewCost     decimal.Decimal `json:"new_cost"`
	Savings     decimal.Decimal `json:"savings"`
	Priority    int             `json:"priority"`
	Risk        Risk            `json:"risk"`
	Difficulty  Difficulty      `json:"difficulty"`
	Valid       bool            `json:"valid"`
	Status      AutofixStatus   `json:"status"`
	Scenario    *Scenario       `json:"scenario,omitempty"`
	Explanation string          `json:"explanation,omitempty"`
}
