package analytics

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMeanOfEmptyIsZero(t *testing.T) {
	assert.True(t, Mean(nil).IsZero())
}

func TestPopulationVarianceAndStdDev(t *testing.T) {
	xs := []decimal.Decimal{dec("2"), dec("4"), dec("4"), dec("4"), dec("5"), dec("5"), dec("7"), dec("9")}

	mean := Mean(xs)
	assert.True(t, mean.Equal(dec("5")), "mean = %s", mean)
	assert.True(t, PopulationVariance(xs, mean).Equal(dec("4")))
	assert.True(t, StdDev(xs).Equal(dec("2")))
}

func TestVarianceOfSingleValueIsZero(t *testing.T) {
	xs := []decimal.Decimal{dec("42")}
	assert.True(t, PopulationVariance(xs, Mean(xs)).IsZero())
	assert.True(t, StdDev(xs).IsZero())
}

func TestPercentageChange(t *testing.T) {
	pct, ok := PercentageChange(dec("130"), dec("100"))
	assert.True(t, ok)
	assert.True(t, pct.Equal(decimal.NewFromInt(30)), "got %s", pct)

	pct, ok = PercentageChange(dec("1"), dec("3"))
	assert.True(t, ok)
	assert.Equal(t, "-66.67", pct.StringFixed(2))

	_, ok = PercentageChange(dec("250"), decimal.Zero)
	assert.False(t, ok)
}

func TestZScoreWithFlatHistoryIsZero(t *testing.T) {
	assert.True(t, ZScore(dec("1000"), dec("50"), decimal.Zero).IsZero())
	assert.True(t, ZScore(dec("120"), dec("100"), dec("10")).Equal(dec("2")))
}

func TestSafeRatioGuardsZeroDenominator(t *testing.T) {
	assert.True(t, SafeRatio(dec("18"), decimal.Zero).IsZero())
	assert.True(t, SafeRatio(dec("1"), dec("8")).Equal(dec("0.125")))
}
