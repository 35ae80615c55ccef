package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Scenario - гипотетическая конфигурация тарифа и услуг
type Scenario struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	PlanID          *uuid.UUID  `json:"plan_id,omitempty"`
	AddOnIDs        []uuid.UUID `json:"addon_ids,omitempty"`
	DisableVAS      bool        `json:"disable_vas"`
	BlockPremiumSMS bool        `json:"block_premium_sms"`
}

// IsBaseline сообщает, что сценарий ничего не меняет
func (s Scenario) IsBaseline() bool {
	return s.PlanID == nil && len(s.AddOnIDs) == 0 && !s.DisableVAS && !s.BlockPremiumSMS
}

// CostBreakdown - составляющие пересчитанной суммы
type CostBreakdown struct {
	Base        decimal.Decimal `json:"base"`
	Overage     decimal.Decimal `json:"overage"`
	AddOns      decimal.Decimal `json:"addons"`
	VAS         decimal.Decimal `json:"vas"`
	PremiumSMS  decimal.Decimal `json:"premium_sms"`
	CarriedOver decimal.Decimal `json:"carried_over"`
}

type ScenarioResult struct {
	Scenario     Scenario        `json:"scenario"`
	CurrentTotal decimal.Decimal `json:"current_total"`
	NewTotal     decimal.Decimal `json:"new_total"`
	Savings      decimal.Decimal `json:"savings"`
	Breakdown    CostBreakdown   `json:"breakdown"`
}

// SimulationRequest - запрос на расчет одного сценария
type SimulationRequest struct {
	Period   string   `json:"period"`
	Scenario Scenario `json:"scenario"`
}

type SimulationResponse struct {
	Result          ScenarioResult `json:"result"`
	Details         []string       `json:"details"`
	Recommendations []string       `json:"recommendations"`
}

type ScenarioComparison struct {
	BillID       uuid.UUID        `json:"bill_id"`
	CurrentTotal decimal.Decimal  `json:"current_total"`
	Results      []ScenarioResult `json:"results"`
}

type WhatIfAnalysis struct {
	BillID         uuid.UUID        `json:"bill_id"`
	CurrentTotal   decimal.Decimal  `json:"current_total"`
	Scenarios      []ScenarioResult `json:"scenarios"`
	BestSavings    decimal.Decimal  `json:"best_savings"`
	AverageSavings decimal.Decimal  `json:"average_savings"`
	Summary        string           `json:"summary"`
}
