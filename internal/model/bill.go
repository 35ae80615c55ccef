package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ItemCategory string

const (
	CategoryData       ItemCategory = "DATA"        // мобильный интернет
	CategoryVoice      ItemCategory = "VOICE"       // голосовые вызовы
	CategorySMS        ItemCategory = "SMS"         // сообщения
	CategoryRoaming    ItemCategory = "ROAMING"     // роуминг
	CategoryVAS        ItemCategory = "VAS"         // дополнительные услуги и абонентская плата
	CategoryPremiumSMS ItemCategory = "PREMIUM_SMS" // платные короткие номера
	CategoryTax        ItemCategory = "TAX"         // налоги
	CategoryDiscount   ItemCategory = "DISCOUNT"    // скидки, сумма может быть отрицательной
	CategoryOneOff     ItemCategory = "ONE_OFF"     // разовые начисления
)

// Известные подтипы позиций счета
const (
	SubtypePlanFee      = "plan_fee"
	SubtypeDataOverage  = "data_overage"
	SubtypeVoiceOverage = "voice_overage"
	SubtypeSMSOverage   = "sms_overage"
)

// Categories перечисляет категории в порядке вывода
var Categories = []ItemCategory{
	CategoryData,
	CategoryVoice,
	CategorySMS,
	CategoryRoaming,
	CategoryVAS,
	CategoryPremiumSMS,
	CategoryTax,
	CategoryDiscount,
	CategoryOneOff,
}

// IsMetered сообщает, тарифицируется ли категория по потреблению внутри пакета
func (c ItemCategory) IsMetered() bool {
	return c == CategoryData || c == CategoryVoice || c == CategorySMS
}

type Bill struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	UserID      uuid.UUID       `json:"user_id" db:"user_id"`
	PeriodStart time.Time       `json:"period_start" db:"period_start"`
	PeriodEnd   time.Time       `json:"period_end" db:"period_end"`
	IssueDate   time.Time       `json:"issue_date" db:"issue_date"`
	TotalAmount decimal.Decimal `json:"total_amount" db:"total_amount"`
	Currency    string          `json:"currency" db:"currency"`
}

type BillItem struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	BillID      uuid.UUID       `json:"bill_id" db:"bill_id"`
	Category    ItemCategory    `json:"category" db:"category"`
	Subtype     string          `json:"subtype" db:"subtype"`
	Description string          `json:"description" db:"description"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	UnitPrice   decimal.Decimal `json:"unit_price" db:"unit_price"`
	Quantity    int             `json:"quantity" db:"quantity"`
	TaxRate     decimal.Decimal `json:"tax_rate" db:"tax_rate"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// BillSummary - краткая сводка по счету
type BillSummary struct {
	BillID            uuid.UUID       `json:"bill_id"`
	Period            string          `json:"period"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	Taxes             decimal.Decimal `json:"taxes"`
	UsageBasedCharges decimal.Decimal `json:"usage_based_charges"`
	OneTimeCharges    decimal.Decimal `json:"one_time_charges"`
	SavingsHint       string          `json:"savings_hint,omitempty"`
}

// CategoryBreakdown - детализация счета по одной категории
type CategoryBreakdown struct {
	Category ItemCategory    `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Lines    []string        `json:"lines"`
}

// BillExplanation - объяснение счета для абонента
type BillExplanation struct {
	Summary   BillSummary         `json:"summary"`
	Breakdown []CategoryBreakdown `json:"breakdown"`
	Narrative string              `json:"narrative"`
}
