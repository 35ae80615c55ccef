package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Plan struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	Name          string          `json:"name" db:"name"`
	Type          string          `json:"type" db:"type"`
	QuotaGB       decimal.Decimal `json:"quota_gb" db:"quota_gb"`
	QuotaMinutes  decimal.Decimal `json:"quota_minutes" db:"quota_minutes"`
	QuotaSMS      decimal.Decimal `json:"quota_sms" db:"quota_sms"`
	MonthlyPrice  decimal.Decimal `json:"monthly_price" db:"monthly_price"`
	OverageGB     decimal.Decimal `json:"overage_gb" db:"overage_gb"`
	OverageMinute decimal.Decimal `json:"overage_minute" db:"overage_minute"`
	OverageSMS    decimal.Decimal `json:"overage_sms" db:"overage_sms"`
}

type AddOnType string

const (
	AddOnData  AddOnType = "data"
	AddOnVoice AddOnType = "voice"
	AddOnSMS   AddOnType = "sms"
)

type AddOnPack struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	Type         AddOnType       `json:"type" db:"type"`
	ExtraGB      decimal.Decimal `json:"extra_gb" db:"extra_gb"`
	ExtraMinutes decimal.Decimal `json:"extra_minutes" db:"extra_minutes"`
	ExtraSMS     decimal.Decimal `json:"extra_sms" db:"extra_sms"`
	Price        decimal.Decimal `json:"price" db:"price"`
}

// VAS - дополнительная услуга, сопоставляется с подтипом позиции счета по коду
type VAS struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	Code       string          `json:"code" db:"code"`
	Name       string          `json:"name" db:"name"`
	MonthlyFee decimal.Decimal `json:"monthly_fee" db:"monthly_fee"`
	Provider   string          `json:"provider" db:"provider"`
}

// PremiumSMS - платный короткий номер, сопоставляется с подтипом позиции счета
type PremiumSMS struct {
	Shortcode string          `json:"shortcode" db:"shortcode"`
	Provider  string          `json:"provider" db:"provider"`
	UnitPrice decimal.Decimal `json:"unit_price" db:"unit_price"`
}

// Catalog - справочник тарифов и услуг
type Catalog struct {
	Plans      []Plan       `json:"plans"`
	AddOns     []AddOnPack  `json:"addons"`
	VAS        []VAS        `json:"vas"`
	PremiumSMS []PremiumSMS `json:"premium_sms"`
}

func (c Catalog) Plan(id uuid.UUID) (Plan, bool) {
	for _, p := range c.Plans {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}

func (c Catalog) AddOn(id uuid.UUID) (AddOnPack, bool) {
	for _, a := range c.AddOns {
		if a.ID == id {
			return a, true
		}
	}
	return AddOnPack{}, false
}

// VASByCode ищет услугу по коду или идентификатору
func (c Catalog) VASByCode(code string) (VAS, bool) {
	for _, v := range c.VAS {
		if v.Code == code || v.ID.String() == code {
			return v, true
		}
	}
	return VAS{}, false
}

func (c Catalog) PremiumByShortcode(shortcode string) (PremiumSMS, bool) {
	for _, p := range c.PremiumSMS {
		if p.Shortcode == shortcode {
			return p, true
		}
	}
	return PremiumSMS{}, false
}
