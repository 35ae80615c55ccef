package analytics

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"billing-analytics/internal/model"
)

const noSavingsPriority = 5

// AutofixRecommender перебирает типовые способы снизить счет
type AutofixRecommender struct {
	calc *ScenarioCalculator
}

func NewAutofixRecommender(calc *ScenarioCalculator) *AutofixRecommender {
	return &AutofixRecommender{calc: calc}
}

// Recommend возвращает кандидатов с положительной экономией.
// Список никогда не пуст: при отсутствии экономии в нем одна заглушка NO_SAVINGS.
func (r *AutofixRecommender) Recommend(basis CostBasis) ([]model.AutofixCandidate, error) {
	var candidates []model.AutofixCandidate
	add := func(c model.AutofixCandidate, ok bool, err error) error {
		if err != nil {
			return err
		}
		if ok && c.Savings.IsPositive() {
			candidates = append(candidates, c)
		}
		return nil
	}

	if err := add(r.cheapestPlan(basis)); err != nil {
		return nil, err
	}
	if err := add(r.cancelVAS(basis)); err != nil {
		return nil, err
	}
	if err := add(r.blockPremiumSMS(basis)); err != nil {
		return nil, err
	}
	if err := add(r.dataAddOn(basis)); err != nil {
		return nil, err
	}

	if len(candidates) == 0 {
		return []model.AutofixCandidate{noSavings(basis)}, nil
	}
	return candidates, nil
}

// Prioritize сортирует по приоритету, при равенстве по убыванию экономии
func Prioritize(candidates []model.AutofixCandidate) []model.AutofixCandidate {
	sorted := make([]model.AutofixCandidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority < sorted[j].Priority
		}
		return sorted[i].Savings.GreaterThan(sorted[j].Savings)
	})
	return sorted
}

// Best - кандидат с максимальной экономией
func Best(candidates []model.AutofixCandidate) (model.AutofixCandidate, bool) {
	if len(candidates) == 0 {
		return model.AutofixCandidate{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Savings.GreaterThan(best.Savings) {
			best = c
		}
	}
	return best, true
}

func (r *AutofixRecommender) cheapestPlan(basis CostBasis) (model.AutofixCandidate, bool, error) {
	plan, ok := cheapestPlan(r.calc.Catalog())
	if !ok {
		return model.AutofixCandidate{}, false, nil
	}
	id := plan.ID
	scenario := model.Scenario{ID: "PLAN_CHANGE:" + id.String(), Name: "Переход на " + plan.Name, PlanID: &id}
	result, err := r.calc.Simulate(basis, scenario)
	if err != nil {
		return model.AutofixCandidate{}, false, err
	}
	return candidate(result, model.AutofixPlanChange, 1, model.RiskLow, model.DifficultyEasy,
		fmt.Sprintf("Перейти на тариф %s за %s в месяц", plan.Name, plan.MonthlyPrice.StringFixed(MoneyPlaces))), true, nil
}

func (r *AutofixRecommender) cancelVAS(basis CostBasis) (model.AutofixCandidate, bool, error) {
	if !basis.VAS.IsPositive() {
		return model.AutofixCandidate{}, false, nil
	}
	scenario := model.Scenario{ID: "VAS_CANCEL", Name: "Отключение дополнительных услуг", DisableVAS: true}
	result, err := r.calc.Simulate(basis, scenario)
	if err != nil {
		return model.AutofixCandidate{}, false, err
	}
	return candidate(result, model.AutofixVASCancel, 2, model.RiskLow, model.DifficultyEasy,
		fmt.Sprintf("Отключить дополнительные услуги на %s в месяц", basis.VAS.StringFixed(MoneyPlaces))), true, nil
}

func (r *AutofixRecommender) blockPremiumSMS(basis CostBasis) (model.AutofixCandidate, bool, error) {
	if !basis.PremiumSMS.IsPositive() {
		return model.AutofixCandidate{}, false, nil
	}
	scenario := model.Scenario{ID: "PREMIUM_SMS_BLOCK", Name: "Блокировка платных SMS", BlockPremiumSMS: true}
	result, err := r.calc.Simulate(basis, scenario)
	if err != nil {
		return model.AutofixCandidate{}, false, err
	}
	return candidate(result, model.AutofixPremiumSMSBlock, 3, model.RiskLow, model.DifficultyEasy,
		fmt.Sprintf("Заблокировать платные короткие номера, расход %s", basis.PremiumSMS.StringFixed(MoneyPlaces))), true, nil
}

// dataAddOn: калькулятор учитывает цену пакета, а вытесненный перерасход по
// интернету вычитается здесь, потому что пакеты не меняют потребление в модели расчета
func (r *AutofixRecommender) dataAddOn(basis CostBasis) (model.AutofixCandidate, bool, error) {
	addon, ok := dataAddOn(r.calc.Catalog(), true)
	if !ok || !basis.DataOverage.GreaterThan(addon.Price) {
		return model.AutofixCandidate{}, false, nil
	}
	scenario := model.Scenario{ID: "ADDON_ADD:" + addon.ID.String(), Name: "Пакет " + addon.Name, AddOnIDs: []uuid.UUID{addon.ID}}
	result, err := r.calc.Simulate(basis, scenario)
	if err != nil {
		return model.AutofixCandidate{}, false, err
	}
	result.NewTotal = money(result.NewTotal.Sub(basis.DataOverage))
	result.Savings = result.CurrentTotal.Sub(result.NewTotal)
	return candidate(result, model.AutofixAddOn, 4, model.RiskMedium, model.DifficultyMedium,
		fmt.Sprintf("Подключить пакет %s за %s вместо перерасхода %s",
			addon.Name, addon.Price.StringFixed(MoneyPlaces), basis.DataOverage.StringFixed(MoneyPlaces))), true, nil
}

func candidate(
	result model.ScenarioResult,
	category model.AutofixCategory,
	priority int,
	risk model.Risk,
	difficulty model.Difficulty,
	description string,
) model.AutofixCandidate {
	scenario := result.Scenario
	return model.AutofixCandidate{
		ScenarioID:  scenario.ID,
		Category:    category,
		Title:       scenario.Name,
		Description: description,
		CurrentCost: result.CurrentTotal,
		NewCost:     result.NewTotal,
		Savings:     result.Savings,
		Priority:    priority,
		Risk:        risk,
		Difficulty:  difficulty,
		Valid:       true,
		Status:      model.AutofixPending,
		Scenario:    &scenario,
	}
}

func noSavings(basis CostBasis) model.AutofixCandidate {
	return model.AutofixCandidate{
		ScenarioID:  string(model.AutofixNoSavings),
		Category:    model.AutofixNoSavings,
		Title:       "Экономия не найдена",
		Description: "Текущая конфигурация уже оптимальна для вашего потребления",
		CurrentCost: basis.Bill.TotalAmount,
		NewCost:     basis.Bill.TotalAmount,
		Savings:     decimal.Zero,
		Priority:    noSavingsPriority,
		Risk:        model.RiskNone,
		Difficulty:  model.DifficultyNone,
		Valid:       true,
		Status:      model.AutofixNoAction,
	}
}
