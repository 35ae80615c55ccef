package analytics

import (
	"fmt"

	"github.com/shopspring/decimal"

	"billing-analytics/internal/model"
)

// Правила, срабатывающие по проценту, молчат, если процент не определен (нулевая база).

// VarianceSpikeRule - итог выше среднего на Sigmas стандартных отклонений
type VarianceSpikeRule struct {
	Sigmas decimal.Decimal
}

func (VarianceSpikeRule) Name() string { return "variance_spike" }

func (r VarianceSpikeRule) Evaluate(w Window) []model.AnomalyFinding {
	totals := w.priorTotals()
	if len(totals) == 0 {
		return nil
	}
	current := w.Current.TotalAmount
	mean := Mean(totals)
	sd := StdDev(totals)
	threshold := mean.Add(r.Sigmas.Mul(sd))
	if !current.GreaterThan(threshold) {
		return nil
	}
	pct, ok := PercentageChange(current, mean)
	if !ok {
		return nil
	}

	severity := model.SeverityMedium
	if pct.GreaterThan(hundred) {
		severity = model.SeverityHigh
	}
	return []model.AnomalyFinding{{
		Type:             model.AnomalySpike,
		Category:         model.TotalAmountCategory,
		Subtype:          "total_amount_spike",
		Current:          current,
		Baseline:         money(mean),
		Delta:            money(current.Sub(mean)),
		PercentageChange: nullable(pct, true),
		ZScore:           nullable(ZScore(current, mean, sd), !sd.IsZero()),
		Severity:         severity,
		Reason: fmt.Sprintf("Сумма счета %s превышает порог %s (среднее %s + %s·σ)",
			current.StringFixed(MoneyPlaces), threshold.StringFixed(MoneyPlaces),
			mean.StringFixed(MoneyPlaces), r.Sigmas.String()),
		SuggestedAction: "Проверьте детализацию счета и подключенные услуги",
	}}
}

// ZScoreRule - модуль z-оценки итога больше Limit
type ZScoreRule struct {
	Limit decimal.Decimal
}

func (ZScoreRule) Name() string { return "z_score" }

func (r ZScoreRule) Evaluate(w Window) []model.AnomalyFinding {
	totals := w.priorTotals()
	if len(totals) == 0 {
		return nil
	}
	current := w.Current.TotalAmount
	mean := Mean(totals)
	z := ZScore(current, mean, StdDev(totals))
	if !z.Abs().GreaterThan(r.Limit) {
		return nil
	}

	direction := "выше"
	if z.IsNegative() {
		direction = "ниже"
	}
	pct, ok := PercentageChange(current, mean)
	return []model.AnomalyFinding{{
		Type:             model.AnomalyStatistical,
		Category:         model.TotalAmountCategory,
		Subtype:          "total_amount_zscore",
		Current:          current,
		Baseline:         money(mean),
		Delta:            money(current.Sub(mean)),
		PercentageChange: nullable(pct, ok),
		ZScore:           nullable(z, true),
		Severity:         model.SeverityMedium,
		Reason: fmt.Sprintf("Сумма счета статистически %s обычной: z = %s",
			direction, z.StringFixed(2)),
		SuggestedAction: "Сравните счет с предыдущими периодами",
	}}
}

// ThresholdSpikeRule - рост итога относительно среднего больше Percent процентов
type ThresholdSpikeRule struct {
	Percent decimal.Decimal
}

func (ThresholdSpikeRule) Name() string { return "threshold_spike" }

func (r ThresholdSpikeRule) Evaluate(w Window) []model.AnomalyFinding {
	totals := w.priorTotals()
	if len(totals) == 0 {
		return nil
	}
	current := w.Current.TotalAmount
	mean := Mean(totals)
	pct, ok := PercentageChange(current, mean)
	if !ok || !pct.GreaterThan(r.Percent) {
		return nil
	}
	return []model.AnomalyFinding{{
		Type:             model.AnomalySpike,
		Category:         model.TotalAmountCategory,
		Subtype:          "total_amount_threshold",
		Current:          current,
		Baseline:         money(mean),
		Delta:            money(current.Sub(mean)),
		PercentageChange: nullable(pct, true),
		Severity:         model.SeverityHigh,
		Reason: fmt.Sprintf("Сумма счета выросла на %s%% относительно среднего %s",
			pct.StringFixed(MoneyPlaces), mean.StringFixed(MoneyPlaces)),
		SuggestedAction: "Проверьте разовые начисления и перерасход пакета",
	}}
}

// NewItemRule - подтип позиции, которого не было в предыдущих счетах
type NewItemRule struct{}

func (NewItemRule) Name() string { return "new_item" }

func (NewItemRule) Evaluate(w Window) []model.AnomalyFinding {
	if len(w.Prior) == 0 {
		return nil
	}
	seen := make(map[string]bool)
	for _, b := range w.Prior {
		for _, it := range w.priorItemsOf(b.ID) {
			seen[it.Subtype] = true
		}
	}

	var order []string
	grouped := make(map[string][]model.BillItem)
	for _, it := range w.CurrentItems {
		if seen[it.Subtype] {
			continue
		}
		if _, ok := grouped[it.Subtype]; !ok {
			order = append(order, it.Subtype)
		}
		grouped[it.Subtype] = append(grouped[it.Subtype], it)
	}

	var findings []model.AnomalyFinding
	for _, subtype := range order {
		items := grouped[subtype]
		amount := sumItems(items, nil)
		findings = append(findings, model.AnomalyFinding{
			Type:             model.AnomalyNewItem,
			Category:         string(items[0].Category),
			Subtype:          subtype,
			Current:          amount,
			Baseline:         decimal.Zero,
			Delta:            amount,
			PercentageChange: nullable(hundred, true),
			Severity:         model.SeverityLow,
			Reason: fmt.Sprintf("Новая позиция в счете: %s (%s)",
				items[0].Description, amount.StringFixed(MoneyPlaces)),
			SuggestedAction: "Убедитесь, что услуга подключена по вашему запросу",
		})
	}
	return findings
}

// RoamingActivationRule - роуминг в текущем счете при его отсутствии в истории
type RoamingActivationRule struct{}

func (RoamingActivationRule) Name() string { return "roaming_activation" }

func (RoamingActivationRule) Evaluate(w Window) []model.AnomalyFinding {
	if len(w.Prior) == 0 || !hasCategory(w.CurrentItems, model.CategoryRoaming) {
		return nil
	}
	for _, b := range w.Prior {
		if hasCategory(w.priorItemsOf(b.ID), model.CategoryRoaming) {
			return nil
		}
	}
	amount := sumItems(w.CurrentItems, inCategory(model.CategoryRoaming))
	return []model.AnomalyFinding{{
		Type:     model.AnomalyRoamingActivation,
		Category: string(model.CategoryRoaming),
		Subtype:  "roaming_activation",
		Current:  amount,
		Baseline: decimal.Zero,
		Delta:    amount,
		Severity: model.SeverityMedium,
		Reason: fmt.Sprintf("Впервые начислен роуминг на сумму %s",
			amount.StringFixed(MoneyPlaces)),
		SuggestedAction: "Подключите роуминг-пакет перед следующей поездкой",
	}}
}

// PremiumSMSSurgeRule - рост платных SMS относительно счетов, где они были
type PremiumSMSSurgeRule struct {
	Percent decimal.Decimal
}

func (PremiumSMSSurgeRule) Name() string { return "premium_sms_surge" }

func (r PremiumSMSSurgeRule) Evaluate(w Window) []model.AnomalyFinding {
	if len(w.Prior) == 0 {
		return nil
	}
	isPremium := inCategory(model.CategoryPremiumSMS)
	current := sumItems(w.CurrentItems, isPremium)
	if !current.IsPositive() {
		return nil
	}

	var perBill []decimal.Decimal
	for _, b := range w.Prior {
		items := w.priorItemsOf(b.ID)
		if hasCategory(items, model.CategoryPremiumSMS) {
			perBill = append(perBill, sumItems(items, isPremium))
		}
	}
	avg := Mean(perBill)
	if !avg.IsPositive() {
		return nil
	}
	pct, ok := PercentageChange(current, avg)
	if !ok || !pct.GreaterThan(r.Percent) {
		return nil
	}
	return []model.AnomalyFinding{{
		Type:             model.AnomalyPremiumSMSIncrease,
		Category:         string(model.CategoryPremiumSMS),
		Subtype:          "premium_sms_increase",
		Current:          current,
		Baseline:         money(avg),
		Delta:            money(current.Sub(avg)),
		PercentageChange: nullable(pct, true),
		Severity:         model.SeverityHigh,
		Reason: fmt.Sprintf("Расходы на платные SMS выросли на %s%%",
			pct.StringFixed(MoneyPlaces)),
		SuggestedAction: "Заблокируйте платные короткие номера",
	}}
}

// CategoryShiftRule - сдвиг суммы категории текущего счета относительно
// суммы той же категории по всем предыдущим счетам окна
type CategoryShiftRule struct {
	Percent decimal.Decimal
}

func (CategoryShiftRule) Name() string { return "category_shift" }

func (r CategoryShiftRule) Evaluate(w Window) []model.AnomalyFinding {
	if len(w.Prior) == 0 {
		return nil
	}
	priorSum := make(map[model.ItemCategory]decimal.Decimal)
	for _, b := range w.Prior {
		for c, v := range categoryTotals(w.priorItemsOf(b.ID)) {
			priorSum[c] = priorSum[c].Add(v)
		}
	}
	current := categoryTotals(w.CurrentItems)

	var findings []model.AnomalyFinding
	for _, category := range model.Categories {
		cur, ok := current[category]
		prior := priorSum[category]
		if !ok || !prior.IsPositive() {
			continue
		}
		pct, _ := PercentageChange(cur, prior)
		if !pct.Abs().GreaterThan(r.Percent) {
			continue
		}

		f := model.AnomalyFinding{
			Category:         string(category),
			Subtype:          "category_shift",
			Current:          cur,
			Baseline:         money(prior),
			Delta:            money(cur.Sub(prior)),
			PercentageChange: nullable(pct, true),
		}
		if pct.IsPositive() {
			f.Type = model.AnomalySpike
			f.Severity = model.SeverityMedium
			f.Reason = fmt.Sprintf("Начисления в категории %s выросли на %s%%", category, pct.StringFixed(MoneyPlaces))
			f.SuggestedAction = "Проверьте потребление в этой категории"
		} else {
			f.Type = model.AnomalyCategoryDecrease
			f.Severity = model.SeverityLow
			f.Reason = fmt.Sprintf("Начисления в категории %s снизились на %s%%", category, pct.Abs().StringFixed(MoneyPlaces))
			f.SuggestedAction = "Действий не требуется"
		}
		findings = append(findings, f)
	}
	return findings
}
