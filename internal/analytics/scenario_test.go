package analytics

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billing-analytics/internal/model"
)

func TestCostBasisSplitsBill(t *testing.T) {
	basis := testBasis()

	assert.True(t, basis.PlanFee.Equal(dec("100")))
	assert.True(t, basis.Metered.Equal(dec("35")))
	assert.True(t, basis.DataOverage.Equal(dec("30")))
	assert.True(t, basis.VAS.Equal(dec("15")))
	assert.True(t, basis.PremiumSMS.Equal(dec("12")))
	assert.True(t, basis.Carried.Equal(dec("25.40")))
	assert.True(t, basis.Residual.Equal(dec("2.60")))
}

func TestBaselineScenarioReproducesBill(t *testing.T) {
	basis := testBasis()
	result, err := NewScenarioCalculator(testCatalog()).Simulate(basis, model.Scenario{})
	require.NoError(t, err)

	assert.True(t, result.NewTotal.Equal(basis.Bill.TotalAmount), "got %s", result.NewTotal)
	assert.True(t, result.Savings.IsZero())
}

func TestPlanChangeRecomputesOverage(t *testing.T) {
	calc := NewScenarioCalculator(testCatalog())
	id := smallPlanID

	result, err := calc.Simulate(testBasis(), model.Scenario{PlanID: &id})
	require.NoError(t, err)

	// 80 + 3 GB * 10 + 15 + 12 + 28
	assert.True(t, result.Breakdown.Overage.Equal(dec("30")))
	assert.True(t, result.NewTotal.Equal(dec("165")), "got %s", result.NewTotal)
	assert.True(t, result.Savings.Equal(dec("25")))
}

func TestTogglesAndAddOns(t *testing.T) {
	calc := NewScenarioCalculator(testCatalog())
	basis := testBasis()

	off, err := calc.Simulate(basis, model.Scenario{DisableVAS: true, BlockPremiumSMS: true})
	require.NoError(t, err)
	assert.True(t, off.Savings.Equal(dec("27")))
	assert.True(t, off.Breakdown.VAS.IsZero())

	withPack, err := calc.Simulate(basis, model.Scenario{AddOnIDs: []uuid.UUID{dataPackID, voicePackID}})
	require.NoError(t, err)
	assert.True(t, withPack.Savings.Equal(dec("-30")))
}

func TestUnknownCatalogEntriesAreNotFound(t *testing.T) {
	calc := NewScenarioCalculator(testCatalog())
	missing := uuid.New()

	_, err := calc.Simulate(testBasis(), model.Scenario{PlanID: &missing})
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = calc.Simulate(testBasis(), model.Scenario{AddOnIDs: []uuid.UUID{missing}})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestHigherOverageRateNeverLowersTotal(t *testing.T) {
	basis := testBasis()
	prev := dec("-1")
	for _, rate := range []string{"0", "0.5", "1", "2.25", "10", "40"} {
		plan := model.Plan{ID: uuid.New(), MonthlyPrice: dec("50"), QuotaGB: dec("5"), QuotaMinutes: dec("100"),
			QuotaSMS: dec("10"), OverageGB: dec(rate), OverageMinute: dec(rate), OverageSMS: dec(rate)}
		calc := NewScenarioCalculator(model.Catalog{Plans: []model.Plan{plan}})
		id := plan.ID

		result, err := calc.Simulate(basis, model.Scenario{PlanID: &id})
		require.NoError(t, err)
		assert.True(t, result.NewTotal.GreaterThanOrEqual(prev), "rate %s: %s < %s", rate, result.NewTotal, prev)
		prev = result.NewTotal
	}
}

func TestScenarioNarrative(t *testing.T) {
	calc := NewScenarioCalculator(testCatalog())
	id := smallPlanID
	result, err := calc.Simulate(testBasis(), model.Scenario{PlanID: &id})
	require.NoError(t, err)

	assert.NotEmpty(t, ScenarioDetails(result))
	recs := ScenarioRecommendations(result)
	require.NotEmpty(t, recs)
	assert.Contains(t, recs[0], "25.00")
}
