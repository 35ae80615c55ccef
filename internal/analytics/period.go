package analytics

import (
	"fmt"
	"regexp"
	"time"

	"billing-analytics/internal/model"
)

const periodLayout = "2006-01"

var periodPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// Period - календарный месяц в виде полуинтервала [Start, End)
type Period struct {
	Start time.Time
	End   time.Time
}

// ResolvePeriod разбирает токен вида YYYY-MM
func ResolvePeriod(token string) (Period, error) {
	if !periodPattern.MatchString(token) {
		return Period{}, fmt.Errorf("%w: %q", model.ErrInvalidPeriod, token)
	}
	start, err := time.ParseInLocation(periodLayout, token, time.UTC)
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q", model.ErrInvalidPeriod, token)
	}
	return PeriodOf(start), nil
}

// PeriodOf возвращает месяц, содержащий момент t
func PeriodOf(t time.Time) Period {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Period{Start: start, End: start.AddDate(0, 1, 0)}
}

func (p Period) Token() string {
	return p.Start.Format(periodLayout)
}

// Months - число календарных месяцев в периоде
func (p Period) Months() int {
	return (p.End.Year()-p.Start.Year())*12 + int(p.End.Month()-p.Start.Month())
}

// Label - YYYY-MM для одного месяца, YYYY-MM..YYYY-MM для нескольких
func (p Period) Label() string {
	if p.Months() <= 1 {
		return p.Token()
	}
	return p.Token() + ".." + p.End.AddDate(0, -1, 0).Format(periodLayout)
}

func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Shift сдвигает период на n месяцев
func (p Period) Shift(months int) Period {
	return PeriodOf(p.Start.AddDate(0, months, 0))
}

// Trailing - n месяцев перед периодом, сам период не входит
func (p Period) Trailing(months int) Period {
	return Period{Start: p.Start.AddDate(0, -months, 0), End: p.Start}
}

// Window - n месяцев перед периодом вместе с ним самим
func (p Period) Window(months int) Period {
	return Period{Start: p.Start.AddDate(0, -months, 0), End: p.End}
}

// Last - последние n месяцев, включая сам период
func (p Period) Last(months int) Period {
	if months < 1 {
		months = 1
	}
	return p.Window(months - 1)
}
