package analytics

import (
	"fmt"

	"github.com/shopspring/decimal"

	"billing-analytics/internal/model"
)

var (
	overageHintFloor = decimal.NewFromInt(50)
	overageHintShare = decimal.RequireFromString("0.3")
)

// ExplainBill собирает сводку и детализацию счета по категориям.
// Строки позиций дополняются данными справочника услуг и коротких номеров.
func ExplainBill(bill model.Bill, items []model.BillItem, catalog model.Catalog) model.BillExplanation {
	summary := model.BillSummary{
		BillID:            bill.ID,
		Period:            PeriodOf(bill.PeriodStart).Token(),
		TotalAmount:       bill.TotalAmount,
		Taxes:             sumItems(items, inCategory(model.CategoryTax)),
		UsageBasedCharges: sumItems(items, inCategory(model.CategoryData, model.CategoryVoice, model.CategorySMS, model.CategoryRoaming)),
		OneTimeCharges:    sumItems(items, inCategory(model.CategoryOneOff)),
	}
	if savings := PotentialSavings(items); savings.IsPositive() {
		summary.SavingsHint = fmt.Sprintf("В этом месяце можно сэкономить %s", savings.StringFixed(MoneyPlaces))
	}

	byCategory := make(map[model.ItemCategory][]model.BillItem)
	for _, it := range items {
		byCategory[it.Category] = append(byCategory[it.Category], it)
	}

	breakdown := make([]model.CategoryBreakdown, 0, len(byCategory))
	for _, cat := range model.Categories {
		catItems, ok := byCategory[cat]
		if !ok {
			continue
		}
		lines := make([]string, 0, len(catItems))
		for _, it := range catItems {
			lines = append(lines, itemLine(it, catalog))
		}
		breakdown = append(breakdown, model.CategoryBreakdown{
			Category: cat,
			Total:    sumItems(catItems, nil),
			Lines:    lines,
		})
	}

	return model.BillExplanation{Summary: summary, Breakdown: breakdown}
}

// PotentialSavings: платные SMS, дополнительные услуги и 30% перерасхода
// по интернету, если перерасход больше 50
func PotentialSavings(items []model.BillItem) decimal.Decimal {
	savings := sumItems(items, inCategory(model.CategoryPremiumSMS))
	savings = savings.Add(sumItems(items, func(it model.BillItem) bool {
		return it.Category == model.CategoryVAS && !isPlanFee(it)
	}))
	overage := sumItems(items, func(it model.BillItem) bool {
		return it.Category == model.CategoryData && it.Subtype == model.SubtypeDataOverage
	})
	if overage.GreaterThan(overageHintFloor) {
		savings = savings.Add(overage.Mul(overageHintShare))
	}
	return money(savings)
}

func itemLine(it model.BillItem, catalog model.Catalog) string {
	amount := it.Amount.StringFixed(MoneyPlaces)
	switch it.Category {
	case model.CategoryPremiumSMS:
		if p, ok := catalog.PremiumByShortcode(it.Subtype); ok {
			return fmt.Sprintf("Платный номер %s (%s): %d SMS x %s = %s",
				p.Shortcode, p.Provider, it.Quantity, p.UnitPrice.StringFixed(MoneyPlaces), amount)
		}
		return fmt.Sprintf("Платный номер %s: %s", it.Subtype, amount)
	case model.CategoryVAS:
		if isPlanFee(it) {
			return fmt.Sprintf("Абонентская плата: %s", amount)
		}
		if v, ok := catalog.VASByCode(it.Subtype); ok {
			return fmt.Sprintf("%s (%s): %s", v.Name, v.Provider, amount)
		}
	case model.CategoryData, model.CategoryVoice, model.CategorySMS, model.CategoryRoaming:
		if it.Quantity > 0 && it.UnitPrice.IsPositive() {
			return fmt.Sprintf("%s: %d x %s = %s", it.Description, it.Quantity, it.UnitPrice.StringFixed(MoneyPlaces), amount)
		}
	}
	return fmt.Sprintf("%s: %s", it.Description, amount)
}
