package analytics

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"billing-analytics/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testBill(month int, total string) model.Bill {
	start := time.Date(2024, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return model.Bill{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		PeriodStart: start,
		PeriodEnd:   start.AddDate(0, 1, 0),
		IssueDate:   start.AddDate(0, 1, 2),
		TotalAmount: dec(total),
		Currency:    "TRY",
	}
}

func testItem(bill model.Bill, category model.ItemCategory, subtype, amount string) model.BillItem {
	return model.BillItem{
		ID:          uuid.New(),
		BillID:      bill.ID,
		Category:    category,
		Subtype:     subtype,
		Description: subtype,
		Amount:      dec(amount),
		Quantity:    1,
	}
}

func findingsOfType(findings []model.AnomalyFinding, t model.AnomalyType) []model.AnomalyFinding {
	var out []model.AnomalyFinding
	for _, f := range findings {
		if f.Type == t {
			out = append(out, f)
		}
	}
	return out
}
