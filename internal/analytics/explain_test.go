package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billing-analytics/internal/model"
)

func TestExplainBill(t *testing.T) {
	basis := testBasis()
	catalog := testCatalog()
	catalog.VAS = []model.VAS{{Code: "music", Name: "Музыка", Provider: "Fizy", MonthlyFee: dec("15")}}
	catalog.PremiumSMS = []model.PremiumSMS{{Shortcode: "3355", Provider: "Oyun", UnitPrice: dec("3")}}

	items := basis.Items
	items[4].Quantity = 4
	explanation := ExplainBill(basis.Bill, items, catalog)

	sum := explanation.Summary
	assert.Equal(t, "2024-03", sum.Period)
	assert.True(t, sum.Taxes.Equal(dec("20")))
	assert.True(t, sum.UsageBasedCharges.Equal(dec("35")))
	assert.True(t, sum.OneTimeCharges.Equal(dec("5.40")))
	assert.Contains(t, sum.SavingsHint, "27.00")

	require.Len(t, explanation.Breakdown, 6)
	assert.Equal(t, model.CategoryData, explanation.Breakdown[0].Category)

	var vas, premium model.CategoryBreakdown
	for _, b := range explanation.Breakdown {
		switch b.Category {
		case model.CategoryVAS:
			vas = b
		case model.CategoryPremiumSMS:
			premium = b
		}
	}
	assert.True(t, vas.Total.Equal(dec("115")))
	assert.Contains(t, vas.Lines, "Абонентская плата: 100.00")
	assert.Contains(t, vas.Lines, "Музыка (Fizy): 15.00")
	assert.Equal(t, []string{"Платный номер 3355 (Oyun): 4 SMS x 3.00 = 12.00"}, premium.Lines)
}

func TestPotentialSavingsCountsLargeDataOverage(t *testing.T) {
	bill := testBill(2, "160")
	items := []model.BillItem{
		testItem(bill, model.CategoryData, model.SubtypeDataOverage, "60"),
		testItem(bill, model.CategoryVAS, model.SubtypePlanFee, "100"),
	}
	assert.True(t, PotentialSavings(items).Equal(dec("18")))

	items[0].Amount = dec("50")
	assert.True(t, PotentialSavings(items).IsZero())
}
