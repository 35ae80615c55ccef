package analytics

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"billing-analytics/internal/model"
)

// TaxRateBucket относит налоговые позиции к корзине по их собственной ставке
type TaxRateBucket struct {
	Name  string
	Rates []decimal.Decimal
}

type TaxPolicy struct {
	Buckets []TaxRateBucket
}

// DefaultTaxPolicy: KDV (НДС) и ÖİV (налог на услуги связи), прочие ставки уходят в OTHER
func DefaultTaxPolicy() TaxPolicy {
	return TaxPolicy{Buckets: []TaxRateBucket{
		{Name: model.TaxBucketKDV, Rates: []decimal.Decimal{
			decimal.RequireFromString("0.18"),
			decimal.RequireFromString("0.20"),
		}},
		{Name: model.TaxBucketOIV, Rates: []decimal.Decimal{
			decimal.RequireFromString("0.05"),
			decimal.RequireFromString("0.075"),
			decimal.RequireFromString("0.10"),
		}},
	}}
}

func (p TaxPolicy) bucketFor(rate decimal.Decimal) string {
	for _, b := range p.Buckets {
		for _, r := range b.Rates {
			if r.Equal(rate) {
				return b.Name
			}
		}
	}
	return model.TaxBucketOther
}

func (p TaxPolicy) order() []string {
	names := make([]string, 0, len(p.Buckets)+1)
	for _, b := range p.Buckets {
		names = append(names, b.Name)
	}
	return append(names, model.TaxBucketOther)
}

// Пороги для рекомендаций по налогам
var (
	highEffectiveRate = decimal.RequireFromString("0.20")
	highTotalTax      = decimal.NewFromInt(50)
)

type TaxDecomposer struct {
	policy TaxPolicy
}

func NewTaxDecomposer(policy TaxPolicy) *TaxDecomposer {
	if len(policy.Buckets) == 0 {
		policy = DefaultTaxPolicy()
	}
	return &TaxDecomposer{policy: policy}
}

// Decompose раскладывает налоговые позиции одного счета по корзинам
func (d *TaxDecomposer) Decompose(bill model.Bill, items []model.BillItem) model.TaxBreakdown {
	b := d.breakdown(bill.TotalAmount, items)
	id := bill.ID
	b.BillID = &id
	b.BillCount = 1
	return b
}

// Aggregate суммирует налоги и итоги по нескольким счетам
func (d *TaxDecomposer) Aggregate(bills []model.Bill, itemsByBill map[uuid.UUID][]model.BillItem) model.TaxBreakdown {
	total := decimal.Zero
	var items []model.BillItem
	for _, bill := range bills {
		total = total.Add(bill.TotalAmount)
		items = append(items, itemsByBill[bill.ID]...)
	}
	b := d.breakdown(total, items)
	b.BillCount = len(bills)
	return b
}

func (d *TaxDecomposer) breakdown(totalAmount decimal.Decimal, items []model.BillItem) model.TaxBreakdown {
	amounts := make(map[string]decimal.Decimal)
	totalTax := decimal.Zero
	for _, it := range items {
		if it.Category != model.CategoryTax {
			continue
		}
		name := d.policy.bucketFor(it.TaxRate)
		amounts[name] = amounts[name].Add(it.Amount)
		totalTax = totalTax.Add(it.Amount)
	}

	buckets := make([]model.TaxBucket, 0, len(amounts))
	for _, name := range d.policy.order() {
		amount, ok := amounts[name]
		if !ok {
			continue
		}
		buckets = append(buckets, model.TaxBucket{
			Name:   name,
			Amount: money(amount),
			Share:  SafeRatio(amount, totalTax),
		})
	}

	kdv := amounts[model.TaxBucketKDV]
	return model.TaxBreakdown{
		TotalAmount:   money(totalAmount),
		TotalTax:      money(totalTax),
		EffectiveRate: SafeRatio(totalTax, totalAmount),
		KDVAmount:     money(kdv),
		OtherTaxes:    money(totalTax.Sub(kdv)),
		Buckets:       buckets,
	}
}

// Compare считает разницу second - first по суммам, ставке и корзинам
func (d *TaxDecomposer) Compare(first, second model.TaxBreakdown) model.TaxComparison {
	diffs := make(map[string]decimal.Decimal)
	for _, b := range first.Buckets {
		diffs[b.Name] = diffs[b.Name].Sub(b.Amount)
	}
	for _, b := range second.Buckets {
		diffs[b.Name] = diffs[b.Name].Add(b.Amount)
	}
	return model.TaxComparison{
		First:       first,
		Second:      second,
		AmountDiff:  second.TotalAmount.Sub(first.TotalAmount),
		TaxDiff:     second.TotalTax.Sub(first.TotalTax),
		RateDiff:    second.EffectiveRate.Sub(first.EffectiveRate),
		BucketDiffs: diffs,
	}
}

// Suggest формирует рекомендации по налоговой нагрузке
func (d *TaxDecomposer) Suggest(b model.TaxBreakdown) []string {
	suggestions := make([]string, 0)
	if b.EffectiveRate.GreaterThan(highEffectiveRate) {
		suggestions = append(suggestions, fmt.Sprintf(
			"Эффективная налоговая ставка %s%% выше обычной: проверьте разовые и роуминговые начисления",
			b.EffectiveRate.Mul(hundred).StringFixed(MoneyPlaces)))
	}
	if b.TotalTax.GreaterThan(highTotalTax) {
		suggestions = append(suggestions, fmt.Sprintf(
			"Сумма налогов %s: снижение платных услуг уменьшит и налоговую часть счета",
			b.TotalTax.StringFixed(MoneyPlaces)))
	}
	return suggestions
}
