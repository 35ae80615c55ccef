package analytics

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"billing-analytics/internal/model"
)

// Пороги оценки собственной динамики абонента
var (
	highGrowthPercent   = decimal.NewFromInt(50)
	lowDeclinePercent   = decimal.NewFromInt(-30)
	similarityTolerance = decimal.NewFromInt(20)
)

// CompareCohort сравнивает среднее абонента со средним по всем счетам когорты.
// Среднее когорты общее по счетам, а не среднее из средних.
func CompareCohort(userBills []model.Bill, peerBillsByUser map[uuid.UUID][]model.Bill) model.CohortResult {
	var pooled []decimal.Decimal
	peers := 0
	for _, bills := range peerBillsByUser {
		if len(bills) == 0 {
			continue
		}
		peers++
		pooled = append(pooled, BillTotals(bills)...)
	}
	result := cohortResult(Mean(BillTotals(userBills)), Mean(pooled))
	result.PeerCount = peers
	result.BillCount = len(pooled)
	result.Rating = model.RatingNormal
	return result
}

// RatePerformance сравнивает текущий счет со средним за предыдущие месяцы
func RatePerformance(current *model.Bill, trailing []model.Bill) model.Rating {
	if current == nil || len(trailing) == 0 {
		return model.RatingNormal
	}
	pct, ok := PercentageChange(current.TotalAmount, Mean(BillTotals(trailing)))
	switch {
	case !ok:
		return model.RatingNormal
	case pct.GreaterThan(highGrowthPercent):
		return model.RatingHigh
	case pct.LessThan(lowDeclinePercent):
		return model.RatingLow
	default:
		return model.RatingNormal
	}
}

// FindSimilar оставляет в когорте только абонентов, чье среднее отличается
// от среднего пользователя не больше чем на tolerance процентов
func FindSimilar(userBills []model.Bill, peerBillsByUser map[uuid.UUID][]model.Bill, tolerance decimal.Decimal) model.CohortResult {
	if !tolerance.IsPositive() {
		tolerance = similarityTolerance
	}
	userAvg := Mean(BillTotals(userBills))

	var pooled []decimal.Decimal
	peers := 0
	for _, bills := range peerBillsByUser {
		if len(bills) == 0 {
			continue
		}
		totals := BillTotals(bills)
		pct, ok := PercentageChange(Mean(totals), userAvg)
		if !ok || pct.Abs().GreaterThan(tolerance) {
			continue
		}
		peers++
		pooled = append(pooled, totals...)
	}
	result := cohortResult(userAvg, Mean(pooled))
	result.PeerCount = peers
	result.BillCount = len(pooled)
	result.Rating = model.RatingSimilar
	return result
}

func cohortResult(userAvg, cohortAvg decimal.Decimal) model.CohortResult {
	pct, ok := PercentageChange(userAvg, cohortAvg)
	return model.CohortResult{
		UserAverage:       money(userAvg),
		CohortAverage:     money(cohortAvg),
		Difference:        money(userAvg.Sub(cohortAvg)),
		DifferencePercent: nullable(pct, ok),
	}
}
