package analytics

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"billing-analytics/internal/model"
)

// Window - текущий счет и скользящее окно предыдущих счетов
type Window struct {
	Current      model.Bill
	CurrentItems []model.BillItem
	Prior        []model.Bill
	PriorItems   map[uuid.UUID][]model.BillItem
}

func (w Window) priorTotals() []decimal.Decimal {
	return BillTotals(w.Prior)
}

func (w Window) priorItemsOf(billID uuid.UUID) []model.BillItem {
	if w.PriorItems == nil {
		return nil
	}
	return w.PriorItems[billID]
}

// Rule - одно независимое правило обнаружения аномалий
type Rule interface {
	Name() string
	Evaluate(w Window) []model.AnomalyFinding
}

// DefaultRules - полный набор правил для проверки одного счета
func DefaultRules() []Rule {
	return append(TotalAmountRules(),
		NewItemRule{},
		RoamingActivationRule{},
		PremiumSMSSurgeRule{Percent: decimal.NewFromInt(80)},
		CategoryShiftRule{Percent: decimal.NewFromInt(50)},
	)
}

// TotalAmountRules - правила только по итоговой сумме, для истории и сводки
func TotalAmountRules() []Rule {
	return []Rule{
		VarianceSpikeRule{Sigmas: decimal.NewFromInt(2)},
		ZScoreRule{Limit: decimal.NewFromInt(2)},
		ThresholdSpikeRule{Percent: decimal.NewFromInt(80)},
	}
}

type Detector struct {
	rules []Rule
}

func NewDetector(rules ...Rule) *Detector {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Detector{rules: rules}
}

func (d *Detector) RuleNames() []string {
	names := make([]string, 0, len(d.rules))
	for _, r := range d.rules {
		names = append(names, r.Name())
	}
	return names
}

// Detect применяет все правила к окну. Порядок находок не значим.
func (d *Detector) Detect(w Window) []model.AnomalyFinding {
	findings := make([]model.AnomalyFinding, 0)
	if len(w.Prior) == 0 {
		return findings
	}
	period := PeriodOf(w.Current.PeriodStart).Token()
	for _, rule := range d.rules {
		for _, f := range rule.Evaluate(w) {
			f.Rule = rule.Name()
			f.BillID = w.Current.ID
			f.Period = period
			findings = append(findings, f)
		}
	}
	return findings
}

// DetectAnomalies проверяет счет полным набором правил
func DetectAnomalies(
	current model.Bill,
	currentItems []model.BillItem,
	prior []model.Bill,
	priorItems map[uuid.UUID][]model.BillItem,
) []model.AnomalyFinding {
	return NewDetector().Detect(Window{
		Current:      current,
		CurrentItems: currentItems,
		Prior:        prior,
		PriorItems:   priorItems,
	})
}

// SeriesResult - итог прогона правил по серии счетов
type SeriesResult struct {
	Findings  []model.AnomalyFinding
	Evaluated int
	Skipped   int
}

// Series сравнивает каждый счет с его lookback предшественниками.
// Ошибка по одному счету не прерывает серию: счет пропускается, onSkip получает причину.
func (d *Detector) Series(bills []model.Bill, lookback int, onSkip func(model.Bill, error)) SeriesResult {
	sorted := make([]model.Bill, len(bills))
	copy(sorted, bills)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PeriodStart.Before(sorted[j].PeriodStart)
	})

	result := SeriesResult{Findings: make([]model.AnomalyFinding, 0)}
	for i, bill := range sorted {
		from := i - lookback
		if from < 0 {
			from = 0
		}
		prior := sorted[from:i]
		if len(prior) == 0 {
			continue
		}
		if err := validateSeriesBill(bill, prior); err != nil {
			result.Skipped++
			if onSkip != nil {
				onSkip(bill, err)
			}
			continue
		}
		result.Evaluated++
		result.Findings = append(result.Findings, d.Detect(Window{Current: bill, Prior: prior})...)
	}
	return result
}

func validateSeriesBill(bill model.Bill, prior []model.Bill) error {
	if bill.TotalAmount.IsNegative() {
		return fmt.Errorf("%w: negative total %s", model.ErrInconsistentBill, bill.TotalAmount)
	}
	for _, p := range prior {
		if p.Currency != "" && bill.Currency != "" && p.Currency != bill.Currency {
			return fmt.Errorf("%w: currency %s differs from %s", model.ErrInconsistentBill, bill.Currency, p.Currency)
		}
	}
	return nil
}

// CountByType группирует находки по типу
func CountByType(findings []model.AnomalyFinding) map[model.AnomalyType]int {
	counts := make(map[model.AnomalyType]int)
	for _, f := range findings {
		counts[f.Type]++
	}
	return counts
}
