package analytics

import (
	"github.com/shopspring/decimal"

	"billing-analytics/internal/model"
)

func sumItems(items []model.BillItem, keep func(model.BillItem) bool) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		if keep == nil || keep(it) {
			total = total.Add(it.Amount)
		}
	}
	return total
}

func inCategory(categories ...model.ItemCategory) func(model.BillItem) bool {
	return func(it model.BillItem) bool {
		for _, c := range categories {
			if it.Category == c {
				return true
			}
		}
		return false
	}
}

func hasCategory(items []model.BillItem, category model.ItemCategory) bool {
	for _, it := range items {
		if it.Category == category {
			return true
		}
	}
	return false
}

func categoryTotals(items []model.BillItem) map[model.ItemCategory]decimal.Decimal {
	totals := make(map[model.ItemCategory]decimal.Decimal)
	for _, it := range items {
		totals[it.Category] = totals[it.Category].Add(it.Amount)
	}
	return totals
}

// BillTotals возвращает итоговые суммы счетов в исходном порядке
func BillTotals(bills []model.Bill) []decimal.Decimal {
	totals := make([]decimal.Decimal, 0, len(bills))
	for _, b := range bills {
		totals = append(totals, b.TotalAmount)
	}
	return totals
}

// isPlanFee - абонентская плата приходит позицией VAS с подтипом plan_fee
func isPlanFee(it model.BillItem) bool {
	return it.Subtype == model.SubtypePlanFee
}
