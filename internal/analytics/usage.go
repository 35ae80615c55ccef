package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"billing-analytics/internal/model"
)

var (
	mbPerGB        = decimal.NewFromInt(1024)
	trendThreshold = decimal.NewFromInt(10)

	heavyDataGB   = decimal.NewFromInt(10)
	heavyMinutes  = decimal.NewFromInt(1000)
	heavySMSCount = decimal.NewFromInt(500)
)

func orZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}

// Snapshot суммирует суточное потребление, мегабайты переводятся в гигабайты
func Snapshot(rows []model.UsageDaily) model.UsageSnapshot {
	mb, minutes, sms, roaming := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	for _, r := range rows {
		mb = mb.Add(orZero(r.MBUsed))
		minutes = minutes.Add(orZero(r.MinutesUsed))
		sms = sms.Add(orZero(r.SMSUsed))
		roaming = roaming.Add(orZero(r.RoamingMB))
	}
	return model.UsageSnapshot{
		DataGB:       mb.DivRound(mbPerGB, RatioPlaces),
		VoiceMinutes: minutes,
		SMSCount:     sms,
		RoamingGB:    roaming.DivRound(mbPerGB, RatioPlaces),
	}
}

// SummarizeUsage строит сводку потребления за период, период может
// охватывать несколько месяцев
func SummarizeUsage(rows []model.UsageDaily, period Period) model.UsageSummary {
	sorted := make([]model.UsageDaily, 0, len(rows))
	for _, r := range rows {
		if period.Contains(r.UsageDate) {
			sorted = append(sorted, r)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UsageDate.Before(sorted[j].UsageDate)
	})

	totals := Snapshot(sorted)
	summary := model.UsageSummary{
		Period: period.Label(),
		Months: period.Months(),
		Days:   len(sorted),
		Totals: totals,
		Hints:  usageHints(totals),
	}
	if len(sorted) == 0 {
		summary.DataTrend, summary.VoiceTrend, summary.SMSTrend = model.TrendStable, model.TrendStable, model.TrendStable
		summary.Analysis = AnalyzeUsage(summary)
		return summary
	}

	days := decimal.NewFromInt(int64(len(sorted)))
	summary.DailyAverage = model.UsageSnapshot{
		DataGB:       totals.DataGB.DivRound(days, RatioPlaces),
		VoiceMinutes: totals.VoiceMinutes.DivRound(days, MoneyPlaces),
		SMSCount:     totals.SMSCount.DivRound(days, MoneyPlaces),
		RoamingGB:    totals.RoamingGB.DivRound(days, RatioPlaces),
	}

	mb := func(r model.UsageDaily) decimal.Decimal { return orZero(r.MBUsed) }
	minutes := func(r model.UsageDaily) decimal.Decimal { return orZero(r.MinutesUsed) }
	sms := func(r model.UsageDaily) decimal.Decimal { return orZero(r.SMSUsed) }

	var peakMB decimal.Decimal
	summary.PeakDataDay, peakMB = peakDay(sorted, mb)
	summary.MaxDailyDataGB = peakMB.DivRound(mbPerGB, RatioPlaces)
	summary.PeakVoiceDay, _ = peakDay(sorted, minutes)
	summary.PeakSMSDay, _ = peakDay(sorted, sms)
	summary.DataTrend = usageTrend(sorted, mb)
	summary.VoiceTrend = usageTrend(sorted, minutes)
	summary.SMSTrend = usageTrend(sorted, sms)
	summary.Analysis = AnalyzeUsage(summary)
	return summary
}

// AnalyzeUsage описывает каждый вид потребления отдельно
func AnalyzeUsage(s model.UsageSummary) model.UsageAnalysis {
	t, avg := s.Totals, s.DailyAverage
	return model.UsageAnalysis{
		Data: dimensionAnalysis(t.DataGB, avg.DataGB, MoneyPlaces,
			"За период использовано %s ГБ интернета, в среднем %s ГБ в день.",
			"В этом периоде интернет не использовался.", dataHint(t)),
		Voice: dimensionAnalysis(t.VoiceMinutes, avg.VoiceMinutes, 0,
			"За период %s минут разговоров, в среднем %s минут в день.",
			"В этом периоде звонков не было.", voiceHint(t)),
		SMS: dimensionAnalysis(t.SMSCount, avg.SMSCount, 0,
			"За период отправлено %s SMS, в среднем %s в день.",
			"В этом периоде SMS не отправлялись.", smsHint(t)),
		Roaming: dimensionAnalysis(t.RoamingGB, avg.RoamingGB, MoneyPlaces,
			"За период в роуминге использовано %s ГБ, в среднем %s ГБ в день.",
			"В этом периоде роуминг не использовался.", roamingHint(t)),
	}
}

func dimensionAnalysis(total, daily decimal.Decimal, places int32, format, empty, hint string) string {
	if !total.IsPositive() {
		return empty
	}
	text := fmt.Sprintf(format, total.StringFixed(places), daily.StringFixed(places))
	if hint != "" {
		text += " " + hint
	}
	return text
}

func peakDay(rows []model.UsageDaily, value func(model.UsageDaily) decimal.Decimal) (*time.Time, decimal.Decimal) {
	var day *time.Time
	peak := decimal.Zero
	for i := range rows {
		v := value(rows[i])
		if v.GreaterThan(peak) {
			peak = v
			d := rows[i].UsageDate
			day = &d
		}
	}
	return day, peak
}

// usageTrend сравнивает первую и вторую половину периода
func usageTrend(rows []model.UsageDaily, value func(model.UsageDaily) decimal.Decimal) model.UsageTrend {
	half := len(rows) / 2
	first, second := decimal.Zero, decimal.Zero
	for i, r := range rows {
		if i < half {
			first = first.Add(value(r))
		} else {
			second = second.Add(value(r))
		}
	}
	pct, ok := PercentageChange(second, first)
	switch {
	case !ok && second.IsPositive():
		return model.TrendIncreasing
	case !ok:
		return model.TrendStable
	case pct.GreaterThan(trendThreshold):
		return model.TrendIncreasing
	case pct.LessThan(trendThreshold.Neg()):
		return model.TrendDecreasing
	default:
		return model.TrendStable
	}
}

func usageHints(totals model.UsageSnapshot) []string {
	hints := make([]string, 0)
	for _, h := range []string{dataHint(totals), voiceHint(totals), smsHint(totals), roamingHint(totals)} {
		if h != "" {
			hints = append(hints, h)
		}
	}
	return hints
}

func dataHint(t model.UsageSnapshot) string {
	if t.DataGB.GreaterThan(heavyDataGB) {
		return "Высокое потребление интернета: рассмотрите тариф с большим пакетом"
	}
	return ""
}

func voiceHint(t model.UsageSnapshot) string {
	if t.VoiceMinutes.GreaterThan(heavyMinutes) {
		return "Много голосовых вызовов: выгоднее пакет минут"
	}
	return ""
}

func smsHint(t model.UsageSnapshot) string {
	if t.SMSCount.GreaterThan(heavySMSCount) {
		return "Много SMS: подключите пакет сообщений"
	}
	return ""
}

func roamingHint(t model.UsageSnapshot) string {
	if t.RoamingGB.IsPositive() {
		return "Использовался роуминг: перед поездкой подключайте роуминг-пакет"
	}
	return ""
}
