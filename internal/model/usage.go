package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UsageDaily - суточное потребление абонента, пустые счетчики считаются нулем
type UsageDaily struct {
	ID          uuid.UUID           `json:"id" db:"id"`
	UserID      uuid.UUID           `json:"user_id" db:"user_id"`
	UsageDate   time.Time           `json:"usage_date" db:"usage_date"`
	MBUsed      decimal.NullDecimal `json:"mb_used" db:"mb_used"`
	MinutesUsed decimal.NullDecimal `json:"minutes_used" db:"minutes_used"`
	SMSUsed     decimal.NullDecimal `json:"sms_used" db:"sms_used"`
	RoamingMB   decimal.NullDecimal `json:"roaming_mb" db:"roaming_mb"`
}

// UsageSnapshot - суммарное потребление за период
type UsageSnapshot struct {
	DataGB       decimal.Decimal `json:"data_gb"`
	VoiceMinutes decimal.Decimal `json:"voice_minutes"`
	SMSCount     decimal.Decimal `json:"sms_count"`
	RoamingGB    decimal.Decimal `json:"roaming_gb"`
}

type UsageTrend string

const (
	TrendIncreasing UsageTrend = "INCREASING"
	TrendDecreasing UsageTrend = "DECREASING"
	TrendStable     UsageTrend = "STABLE"
)

// UsageAnalysis - текстовый разбор по видам потребления
type UsageAnalysis struct {
	Data    string `json:"data"`
	Voice   string `json:"voice"`
	SMS     string `json:"sms"`
	Roaming string `json:"roaming"`
}

// UsageSummary - сводка потребления за месяц или за несколько месяцев
type UsageSummary struct {
	Period         string          `json:"period"`
	Months         int             `json:"months"`
	Days           int             `json:"days"`
	Totals         UsageSnapshot   `json:"totals"`
	DailyAverage   UsageSnapshot   `json:"daily_average"`
	PeakDataDay    *time.Time      `json:"peak_data_day,omitempty"`
	PeakVoiceDay   *time.Time      `json:"peak_voice_day,omitempty"`
	PeakSMSDay     *time.Time      `json:"peak_sms_day,omitempty"`
	DataTrend      UsageTrend      `json:"data_trend"`
	VoiceTrend     UsageTrend      `json:"voice_trend"`
	SMSTrend       UsageTrend      `json:"sms_trend"`
	Hints          []string        `json:"hints"`
	MaxDailyDataGB decimal.Decimal `json:"max_daily_data_gb"`
	Analysis       UsageAnalysis   `json:"analysis"`
}
