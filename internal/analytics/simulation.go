package analytics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"billing-analytics/internal/model"
)

const whatIfLimit = 5

// ScenarioDescriptor описывает один пункт меню сценариев.
// Build возвращает ok=false, если в каталоге нет нужных тарифов или пакетов.
type ScenarioDescriptor struct {
	ID    string
	Name  string
	Build func(catalog model.Catalog) (model.Scenario, bool)
}

// DefaultMenu - меню сценариев для сравнения и анализа "что если"
func DefaultMenu() []ScenarioDescriptor {
	return []ScenarioDescriptor{
		{ID: "baseline", Name: "Текущая конфигурация", Build: func(model.Catalog) (model.Scenario, bool) {
			return model.Scenario{}, true
		}},
		{ID: "cheapest_plan", Name: "Самый дешевый тариф", Build: func(c model.Catalog) (model.Scenario, bool) {
			plan, ok := cheapestPlan(c)
			return withPlan(plan), ok
		}},
		{ID: "max_quota_plan", Name: "Тариф с наибольшим пакетом интернета", Build: func(c model.Catalog) (model.Scenario, bool) {
			plan, ok := maxQuotaPlan(c)
			return withPlan(plan), ok
		}},
		{ID: "data_addon", Name: "Пакет интернета", Build: func(c model.Catalog) (model.Scenario, bool) {
			addon, ok := dataAddOn(c, false)
			return model.Scenario{AddOnIDs: []uuid.UUID{addon.ID}}, ok
		}},
		{ID: "voice_addon", Name: "Пакет минут", Build: func(c model.Catalog) (model.Scenario, bool) {
			addon, ok := addOnOfType(c, model.AddOnVoice)
			return model.Scenario{AddOnIDs: []uuid.UUID{addon.ID}}, ok
		}},
		{ID: "vas_off", Name: "Без дополнительных услуг", Build: func(model.Catalog) (model.Scenario, bool) {
			return model.Scenario{DisableVAS: true}, true
		}},
		{ID: "premium_sms_off", Name: "Без платных SMS", Build: func(model.Catalog) (model.Scenario, bool) {
			return model.Scenario{BlockPremiumSMS: true}, true
		}},
		{ID: "vas_premium_off", Name: "Без дополнительных услуг и платных SMS", Build: func(model.Catalog) (model.Scenario, bool) {
			return model.Scenario{DisableVAS: true, BlockPremiumSMS: true}, true
		}},
		{ID: "plan_addon_combo", Name: "Средний тариф с пакетом интернета", Build: func(c model.Catalog) (model.Scenario, bool) {
			plan, okPlan := medianPlan(c)
			addon, okAddon := dataAddOn(c, true)
			if !okPlan || !okAddon {
				return model.Scenario{}, false
			}
			s := withPlan(plan)
			s.AddOnIDs = []uuid.UUID{addon.ID}
			return s, true
		}},
	}
}

// Simulator прогоняет меню сценариев через калькулятор
type Simulator struct {
	calc *ScenarioCalculator
	menu []ScenarioDescriptor
}

func NewSimulator(calc *ScenarioCalculator, menu []ScenarioDescriptor) *Simulator {
	if menu == nil {
		menu = DefaultMenu()
	}
	return &Simulator{calc: calc, menu: menu}
}

// Simulate считает один сценарий с пояснениями
func (s *Simulator) Simulate(basis CostBasis, scenario model.Scenario) (model.SimulationResponse, error) {
	result, err := s.calc.Simulate(basis, scenario)
	if err != nil {
		return model.SimulationResponse{}, err
	}
	return model.SimulationResponse{
		Result:          result,
		Details:         ScenarioDetails(result),
		Recommendations: ScenarioRecommendations(result),
	}, nil
}

// Compare считает все применимые сценарии меню, по убыванию экономии
func (s *Simulator) Compare(basis CostBasis) (model.ScenarioComparison, error) {
	results, err := s.run(basis)
	if err != nil {
		return model.ScenarioComparison{}, err
	}
	return model.ScenarioComparison{
		BillID:       basis.Bill.ID,
		CurrentTotal: basis.Bill.TotalAmount,
		Results:      results,
	}, nil
}

// WhatIf оставляет пять лучших сценариев и формирует сводку
func (s *Simulator) WhatIf(basis CostBasis) (model.WhatIfAnalysis, error) {
	results, err := s.run(basis)
	if err != nil {
		return model.WhatIfAnalysis{}, err
	}
	if len(results) > whatIfLimit {
		results = results[:whatIfLimit]
	}

	best, avg := savingsStats(results)
	return model.WhatIfAnalysis{
		BillID:         basis.Bill.ID,
		CurrentTotal:   basis.Bill.TotalAmount,
		Scenarios:      results,
		BestSavings:    best,
		AverageSavings: avg,
		Summary:        whatIfSummary(basis.Bill.TotalAmount, results, best, avg),
	}, nil
}

func (s *Simulator) run(basis CostBasis) ([]model.ScenarioResult, error) {
	catalog := s.calc.Catalog()
	results := make([]model.ScenarioResult, 0, len(s.menu))
	for _, d := range s.menu {
		scenario, ok := d.Build(catalog)
		if !ok {
			continue
		}
		scenario.ID = d.ID
		scenario.Name = d.Name
		result, err := s.calc.Simulate(basis, scenario)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", d.ID, err)
		}
		results = append(results, result)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Savings.GreaterThan(results[j].Savings)
	})
	return results, nil
}

// savingsStats: лучшая экономия и средняя только по сценариям с положительной экономией
func savingsStats(results []model.ScenarioResult) (decimal.Decimal, decimal.Decimal) {
	best := decimal.Zero
	var positive []decimal.Decimal
	for _, r := range results {
		if !r.Savings.IsPositive() {
			continue
		}
		positive = append(positive, r.Savings)
		if r.Savings.GreaterThan(best) {
			best = r.Savings
		}
	}
	return best, money(Mean(positive))
}

func whatIfSummary(current decimal.Decimal, results []model.ScenarioResult, best, avg decimal.Decimal) string {
	if len(results) == 0 {
		return "Не удалось подобрать сценарии для анализа."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Текущая сумма счета: %s. ", current.StringFixed(MoneyPlaces))
	if !best.IsPositive() {
		sb.WriteString("Ни один сценарий не снижает счет, текущая конфигурация оптимальна.")
		return sb.String()
	}
	fmt.Fprintf(&sb, "Лучший сценарий \"%s\" экономит %s. ", results[0].Scenario.Name, best.StringFixed(MoneyPlaces))
	fmt.Fprintf(&sb, "Средняя экономия по выгодным сценариям: %s.", avg.StringFixed(MoneyPlaces))
	return sb.String()
}

func withPlan(plan model.Plan) model.Scenario {
	id := plan.ID
	return model.Scenario{PlanID: &id}
}

func cheapestPlan(c model.Catalog) (model.Plan, bool) {
	if len(c.Plans) == 0 {
		return model.Plan{}, false
	}
	best := c.Plans[0]
	for _, p := range c.Plans[1:] {
		if p.MonthlyPrice.LessThan(best.MonthlyPrice) {
			best = p
		}
	}
	return best, true
}

func maxQuotaPlan(c model.Catalog) (model.Plan, bool) {
	if len(c.Plans) == 0 {
		return model.Plan{}, false
	}
	best := c.Plans[0]
	for _, p := range c.Plans[1:] {
		if p.QuotaGB.GreaterThan(best.QuotaGB) {
			best = p
		}
	}
	return best, true
}

// medianPlan - тариф из середины ценового ряда
func medianPlan(c model.Catalog) (model.Plan, bool) {
	if len(c.Plans) == 0 {
		return model.Plan{}, false
	}
	plans := make([]model.Plan, len(c.Plans))
	copy(plans, c.Plans)
	sort.SliceStable(plans, func(i, j int) bool {
		return plans[i].MonthlyPrice.LessThan(plans[j].MonthlyPrice)
	})
	return plans[len(plans)/2], true
}

func addOnOfType(c model.Catalog, t model.AddOnType) (model.AddOnPack, bool) {
	for _, a := range c.AddOns {
		if a.Type == t {
			return a, true
		}
	}
	return model.AddOnPack{}, false
}

// dataAddOn ищет пакет интернета, при anyFallback подходит первый пакет каталога
func dataAddOn(c model.Catalog, anyFallback bool) (model.AddOnPack, bool) {
	if a, ok := addOnOfType(c, model.AddOnData); ok {
		return a, true
	}
	if anyFallback && len(c.AddOns) > 0 {
		return c.AddOns[0], true
	}
	return model.AddOnPack{}, false
}
