package analytics

import (
	"math"

	"github.com/shopspring/decimal"
)

// Точность: деньги до копеек, доли до четырех знаков. Округление half-up.
const (
	MoneyPlaces int32 = 2
	RatioPlaces int32 = 4
)

var hundred = decimal.NewFromInt(100)

// Mean возвращает 0 для пустого набора
func Mean(xs []decimal.Decimal) decimal.Decimal {
	if len(xs) == 0 {
		return decimal.Zero
	}
	return Sum(xs).DivRound(decimal.NewFromInt(int64(len(xs))), RatioPlaces)
}

func Sum(xs []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, x := range xs {
		total = total.Add(x)
	}
	return total
}

// PopulationVariance возвращает 0, если значений меньше двух
func PopulationVariance(xs []decimal.Decimal, mean decimal.Decimal) decimal.Decimal {
	if len(xs) < 2 {
		return decimal.Zero
	}
	acc := decimal.Zero
	for _, x := range xs {
		d := x.Sub(mean)
		acc = acc.Add(d.Mul(d))
	}
	return acc.DivRound(decimal.NewFromInt(int64(len(xs))), RatioPlaces)
}

func StdDev(xs []decimal.Decimal) decimal.Decimal {
	variance := PopulationVariance(xs, Mean(xs))
	if !variance.IsPositive() {
		return decimal.Zero
	}
	return decimal.NewFromFloat(math.Sqrt(variance.InexactFloat64())).Round(RatioPlaces)
}

// PercentageChange возвращает ok=false, если база равна нулю
func PercentageChange(current, baseline decimal.Decimal) (decimal.Decimal, bool) {
	if baseline.IsZero() {
		return decimal.Zero, false
	}
	return current.Sub(baseline).DivRound(baseline, RatioPlaces).Mul(hundred), true
}

// ZScore равен нулю при нулевом отклонении: ровная история аномалий не дает
func ZScore(value, mean, stddev decimal.Decimal) decimal.Decimal {
	if stddev.IsZero() {
		return decimal.Zero
	}
	return value.Sub(mean).DivRound(stddev, RatioPlaces)
}

// SafeRatio возвращает 0 при нулевом знаменателе
func SafeRatio(num, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.DivRound(den, RatioPlaces)
}

func money(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

func nullable(d decimal.Decimal, ok bool) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: ok}
}
