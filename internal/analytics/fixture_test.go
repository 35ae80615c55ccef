package analytics

import (
	"github.com/google/uuid"

	"billing-analytics/internal/model"
)

var (
	smallPlanID = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	midPlanID   = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	bigPlanID   = uuid.MustParse("00000000-0000-0000-0000-000000000003")
	dataPackID  = uuid.MustParse("00000000-0000-0000-0000-000000000010")
	voicePackID = uuid.MustParse("00000000-0000-0000-0000-000000000011")
)

func testCatalog() model.Catalog {
	return model.Catalog{
		Plans: []model.Plan{
			{ID: midPlanID, Name: "Mid", QuotaGB: dec("20"), QuotaMinutes: dec("1000"), QuotaSMS: dec("500"),
				MonthlyPrice: dec("120"), OverageGB: dec("8"), OverageMinute: dec("0.4"), OverageSMS: dec("0.2")},
			{ID: smallPlanID, Name: "Small", QuotaGB: dec("10"), QuotaMinutes: dec("600"), QuotaSMS: dec("100"),
				MonthlyPrice: dec("80"), OverageGB: dec("10"), OverageMinute: dec("0.5"), OverageSMS: dec("0.25")},
			{ID: bigPlanID, Name: "Big", QuotaGB: dec("30"), QuotaMinutes: dec("2000"), QuotaSMS: dec("1000"),
				MonthlyPrice: dec("150"), OverageGB: dec("5"), OverageMinute: dec("0.2"), OverageSMS: dec("0.1")},
		},
		AddOns: []model.AddOnPack{
			{ID: voicePackID, Name: "500 dk", Type: model.AddOnVoice, ExtraMinutes: dec("500"), Price: dec("10")},
			{ID: dataPackID, Name: "5 GB", Type: model.AddOnData, ExtraGB: dec("5"), Price: dec("20")},
		},
	}
}

// testBasis: итог 190.00, из них 2.60 не детализированы
func testBasis() CostBasis {
	bill := testBill(3, "190.00")
	items := []model.BillItem{
		testItem(bill, model.CategoryVAS, model.SubtypePlanFee, "100.00"),
		testItem(bill, model.CategoryData, model.SubtypeDataOverage, "30.00"),
		testItem(bill, model.CategoryVoice, model.SubtypeVoiceOverage, "5.00"),
		testItem(bill, model.CategoryVAS, "music", "15.00"),
		testItem(bill, model.CategoryPremiumSMS, "3355", "12.00"),
		testItem(bill, model.CategoryTax, "kdv", "20.00"),
		testItem(bill, model.CategoryOneOff, "sim_change", "5.40"),
	}
	usage := model.UsageSnapshot{
		DataGB:       dec("13"),
		VoiceMinutes: dec("550"),
		SMSCount:     dec("100"),
	}
	return NewCostBasis(bill, items, usage)
}
