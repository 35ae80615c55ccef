package analytics

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billing-analytics/internal/model"
)

func taxItem(bill model.Bill, rate, amount string) model.BillItem {
	it := testItem(bill, model.CategoryTax, "tax", amount)
	it.TaxRate = dec(rate)
	return it
}

func TestDecomposeByItemTaxRate(t *testing.T) {
	bill := testBill(1, "100")
	items := []model.BillItem{
		testItem(bill, model.CategoryData, "data_overage", "70"),
		taxItem(bill, "0.20", "20"),
		taxItem(bill, "0.10", "7"),
		taxItem(bill, "0.03", "3"),
	}

	b := NewTaxDecomposer(DefaultTaxPolicy()).Decompose(bill, items)

	require.NotNil(t, b.BillID)
	assert.Equal(t, bill.ID, *b.BillID)
	assert.True(t, b.TotalTax.Equal(dec("30")))
	assert.True(t, b.EffectiveRate.Equal(dec("0.3")))
	assert.True(t, b.KDVAmount.Equal(dec("20")))
	assert.True(t, b.OtherTaxes.Equal(dec("10")))

	require.Len(t, b.Buckets, 3)
	assert.Equal(t, model.TaxBucketKDV, b.Buckets[0].Name)
	assert.Equal(t, "0.6667", b.Buckets[0].Share.StringFixed(4))
	assert.Equal(t, model.TaxBucketOIV, b.Buckets[1].Name)
	assert.True(t, b.Buckets[1].Amount.Equal(dec("7")))
	assert.Equal(t, model.TaxBucketOther, b.Buckets[2].Name)
}

func TestEffectiveRateWithZeroTotal(t *testing.T) {
	bill := testBill(1, "0")
	b := NewTaxDecomposer(TaxPolicy{}).Decompose(bill, []model.BillItem{taxItem(bill, "0.18", "5")})
	assert.True(t, b.EffectiveRate.IsZero())
	assert.True(t, b.KDVAmount.Equal(dec("5")))
}

func TestAggregateAndCompare(t *testing.T) {
	d := NewTaxDecomposer(DefaultTaxPolicy())
	jan := testBill(1, "100")
	feb := testBill(2, "200")
	items := map[uuid.UUID][]model.BillItem{
		jan.ID: {taxItem(jan, "0.20", "10")},
		feb.ID: {taxItem(feb, "0.20", "20"), taxItem(feb, "0.10", "10")},
	}

	trend := d.Aggregate([]model.Bill{jan, feb}, items)
	assert.Equal(t, 2, trend.BillCount)
	assert.True(t, trend.TotalAmount.Equal(dec("300")))
	assert.True(t, trend.TotalTax.Equal(dec("40")))
	assert.Equal(t, "0.1333", trend.EffectiveRate.StringFixed(4))

	cmp := d.Compare(d.Decompose(jan, items[jan.ID]), d.Decompose(feb, items[feb.ID]))
	assert.True(t, cmp.AmountDiff.Equal(dec("100")))
	assert.True(t, cmp.TaxDiff.Equal(dec("20")))
	assert.True(t, cmp.RateDiff.Equal(dec("0.05")))
	assert.True(t, cmp.BucketDiffs[model.TaxBucketKDV].Equal(dec("10")))
	assert.True(t, cmp.BucketDiffs[model.TaxBucketOIV].Equal(dec("10")))
}

func TestSuggest(t *testing.T) {
	d := NewTaxDecomposer(DefaultTaxPolicy())
	assert.Len(t, d.Suggest(model.TaxBreakdown{EffectiveRate: dec("0.3"), TotalTax: dec("30")}), 1)
	assert.Len(t, d.Suggest(model.TaxBreakdown{EffectiveRate: dec("0.25"), TotalTax: dec("80")}), 2)
	assert.Empty(t, d.Suggest(model.TaxBreakdown{EffectiveRate: dec("0.18"), TotalTax: dec("18")}))
}
