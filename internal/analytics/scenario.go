package analytics

import (
	"fmt"

	"github.com/shopspring/decimal"

	"billing-analytics/internal/model"
)

// CostBasis - текущий счет, разложенный на составляющие для пересчета
type CostBasis struct {
	Bill  model.Bill
	Items []model.BillItem
	Usage model.UsageSnapshot

	PlanFee     decimal.Decimal // позиции с подтипом plan_fee
	Metered     decimal.Decimal // DATA, VOICE, SMS
	DataOverage decimal.Decimal // DATA с подтипом data_overage
	VAS         decimal.Decimal // VAS без абонентской платы
	PremiumSMS  decimal.Decimal
	Carried     decimal.Decimal // TAX, ONE_OFF, ROAMING, DISCOUNT
	Residual    decimal.Decimal // итог счета минус сумма позиций
}

func NewCostBasis(bill model.Bill, items []model.BillItem, usage model.UsageSnapshot) CostBasis {
	basis := CostBasis{Bill: bill, Items: items, Usage: usage}
	itemized := decimal.Zero
	for _, it := range items {
		itemized = itemized.Add(it.Amount)
		switch {
		case isPlanFee(it):
			basis.PlanFee = basis.PlanFee.Add(it.Amount)
		case it.Category.IsMetered():
			basis.Metered = basis.Metered.Add(it.Amount)
			if it.Category == model.CategoryData && it.Subtype == model.SubtypeDataOverage {
				basis.DataOverage = basis.DataOverage.Add(it.Amount)
			}
		case it.Category == model.CategoryVAS:
			basis.VAS = basis.VAS.Add(it.Amount)
		case it.Category == model.CategoryPremiumSMS:
			basis.PremiumSMS = basis.PremiumSMS.Add(it.Amount)
		default:
			basis.Carried = basis.Carried.Add(it.Amount)
		}
	}
	basis.Residual = bill.TotalAmount.Sub(itemized)
	return basis
}

// ScenarioCalculator пересчитывает счет при гипотетической смене тарифа и услуг
type ScenarioCalculator struct {
	catalog model.Catalog
}

func NewScenarioCalculator(catalog model.Catalog) *ScenarioCalculator {
	return &ScenarioCalculator{catalog: catalog}
}

func (c *ScenarioCalculator) Catalog() model.Catalog {
	return c.catalog
}

// Simulate считает новую сумму счета. Без смены тарифа текущие начисления за
// потребление переносятся как есть, поэтому пустой сценарий воспроизводит счет.
func (c *ScenarioCalculator) Simulate(basis CostBasis, scenario model.Scenario) (model.ScenarioResult, error) {
	var breakdown model.CostBreakdown

	if scenario.PlanID != nil {
		plan, ok := c.catalog.Plan(*scenario.PlanID)
		if !ok {
			return model.ScenarioResult{}, model.NewNotFound("plan", scenario.PlanID.String())
		}
		breakdown.Base = plan.MonthlyPrice
		breakdown.Overage = Overage(plan, basis.Usage)
	} else {
		breakdown.Base = basis.PlanFee
		breakdown.Overage = basis.Metered
	}

	for _, id := range scenario.AddOnIDs {
		addon, ok := c.catalog.AddOn(id)
		if !ok {
			return model.ScenarioResult{}, model.NewNotFound("addon", id.String())
		}
		breakdown.AddOns = breakdown.AddOns.Add(addon.Price)
	}

	if !scenario.DisableVAS {
		breakdown.VAS = basis.VAS
	}
	if !scenario.BlockPremiumSMS {
		breakdown.PremiumSMS = basis.PremiumSMS
	}
	breakdown.CarriedOver = basis.Carried.Add(basis.Residual)

	total := breakdown.Base.
		Add(breakdown.Overage).
		Add(breakdown.AddOns).
		Add(breakdown.VAS).
		Add(breakdown.PremiumSMS).
		Add(breakdown.CarriedOver)
	newTotal := money(total)

	return model.ScenarioResult{
		Scenario:     scenario,
		CurrentTotal: basis.Bill.TotalAmount,
		NewTotal:     newTotal,
		Savings:      basis.Bill.TotalAmount.Sub(newTotal),
		Breakdown: model.CostBreakdown{
			Base:        money(breakdown.Base),
			Overage:     money(breakdown.Overage),
			AddOns:      money(breakdown.AddOns),
			VAS:         money(breakdown.VAS),
			PremiumSMS:  money(breakdown.PremiumSMS),
			CarriedOver: money(breakdown.CarriedOver),
		},
	}, nil
}

// Overage - стоимость перерасхода по каждому измерению отдельно
func Overage(plan model.Plan, usage model.UsageSnapshot) decimal.Decimal {
	return overageOf(usage.DataGB, plan.QuotaGB, plan.OverageGB).
		Add(overageOf(usage.VoiceMinutes, plan.QuotaMinutes, plan.OverageMinute)).
		Add(overageOf(usage.SMSCount, plan.QuotaSMS, plan.OverageSMS))
}

func overageOf(used, quota, rate decimal.Decimal) decimal.Decimal {
	extra := used.Sub(quota)
	if !extra.IsPositive() {
		return decimal.Zero
	}
	return extra.Mul(rate)
}

// ScenarioDetails описывает составляющие результата для абонента
func ScenarioDetails(result model.ScenarioResult) []string {
	b := result.Breakdown
	details := []string{
		fmt.Sprintf("Абонентская плата: %s", b.Base.StringFixed(MoneyPlaces)),
		fmt.Sprintf("Потребление сверх пакета: %s", b.Overage.StringFixed(MoneyPlaces)),
	}
	if b.AddOns.IsPositive() {
		details = append(details, fmt.Sprintf("Дополнительные пакеты: %s", b.AddOns.StringFixed(MoneyPlaces)))
	}
	if result.Scenario.DisableVAS {
		details = append(details, "Дополнительные услуги отключены")
	} else if b.VAS.IsPositive() {
		details = append(details, fmt.Sprintf("Дополнительные услуги: %s", b.VAS.StringFixed(MoneyPlaces)))
	}
	if result.Scenario.BlockPremiumSMS {
		details = append(details, "Платные SMS заблокированы")
	} else if b.PremiumSMS.IsPositive() {
		details = append(details, fmt.Sprintf("Платные SMS: %s", b.PremiumSMS.StringFixed(MoneyPlaces)))
	}
	details = append(details,
		fmt.Sprintf("Налоги и прочие начисления: %s", b.CarriedOver.StringFixed(MoneyPlaces)),
		fmt.Sprintf("Итого: %s (сейчас %s)", result.NewTotal.StringFixed(MoneyPlaces), result.CurrentTotal.StringFixed(MoneyPlaces)),
	)
	return details
}

// significantShare - доля текущего счета, начиная с которой изменение считается заметным
var significantShare = decimal.RequireFromString("0.20")

// ScenarioRecommendations дает советы по результату одного сценария
func ScenarioRecommendations(result model.ScenarioResult) []string {
	threshold := result.CurrentTotal.Mul(significantShare)
	switch {
	case result.Savings.GreaterThan(threshold):
		return []string{
			fmt.Sprintf("Сценарий дает значительную экономию: %s", result.Savings.StringFixed(MoneyPlaces)),
			"Рекомендуем применить изменения со следующего расчетного периода",
		}
	case result.Savings.IsPositive():
		return []string{
			fmt.Sprintf("Сценарий дает умеренную экономию: %s", result.Savings.StringFixed(MoneyPlaces)),
			"Сравните его с другими вариантами перед переходом",
		}
	case result.Savings.IsZero():
		return []string{"Сценарий не меняет сумму счета"}
	default:
		return []string{
			fmt.Sprintf("Сценарий увеличит счет на %s", result.Savings.Neg().StringFixed(MoneyPlaces)),
			"Текущая конфигурация выгоднее",
		}
	}
}
