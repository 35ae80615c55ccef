package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"billing-analytics/internal/analytics"
	"billing-analytics/internal/metrics"
	"billing-analytics/internal/model"
)

type narrativeKind string

const (
	narrativeAnomaly narrativeKind = "anomaly"
	narrativeCohort  narrativeKind = "cohort"
	narrativeTax     narrativeKind = "tax"
	narrativeAutofix narrativeKind = "autofix"
	narrativeBill    narrativeKind = "bill"
)

// NarrativeService превращает результаты расчетов в текст для абонента.
// Ошибки сервиса объяснений наружу не выходят: вместо них возвращается шаблонный текст.
type NarrativeService struct {
	explainer Explainer
	logger    *logrus.Logger
}

func NewNarrativeService(explainer Explainer, logger *logrus.Logger) *NarrativeService {
	return &NarrativeService{explainer: explainer, logger: logger}
}

func (s *NarrativeService) generate(ctx context.Context, kind narrativeKind, prompt, fallback string) string {
	if s.explainer == nil {
		metrics.ExplanationRequestsTotal.WithLabelValues(string(kind), "fallback").Inc()
		return fallback
	}

	text, err := s.explainer.Explain(ctx, prompt)
	if err != nil || strings.TrimSpace(text) == "" {
		if !errors.Is(err, errExplainDisabled) {
			s.logger.WithFields(logrus.Fields{
				"kind":  kind,
				"error": err,
			}).Warn("Не удалось получить объяснение, используется шаблон")
		}
		metrics.ExplanationRequestsTotal.WithLabelValues(string(kind), "fallback").Inc()
		return fallback
	}

	metrics.ExplanationRequestsTotal.WithLabelValues(string(kind), "generated").Inc()
	return strings.TrimSpace(text)
}

// Anomaly объясняет набор аномалий одного счета
func (s *NarrativeService) Anomaly(ctx context.Context, report model.AnomalyReport) string {
	if len(report.Findings) == 0 {
		return fmt.Sprintf("В счете за %s аномалий не обнаружено.", report.Period)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Период: %s. Найденные аномалии:\n", report.Period)
	for _, f := range report.Findings {
		fmt.Fprintf(&sb, "- %s (%s/%s): изменение %s, причина: %s\n",
			f.Type, f.Category, f.Subtype, f.Delta.StringFixed(analytics.MoneyPlaces), f.Reason)
	}
	return s.generate(ctx, narrativeAnomaly, sb.String(), anomalyFallback(report))
}

func anomalyFallback(report model.AnomalyReport) string {
	f := report.Findings[0]
	text := fmt.Sprintf("В счете за %s найдено аномалий: %d. Главная: %s в категории %s, изменение %s. %s",
		report.Period, len(report.Findings), f.Type, f.Category, f.Delta.StringFixed(analytics.MoneyPlaces), f.Reason)
	return strings.TrimSpace(text)
}

func (s *NarrativeService) Cohort(ctx context.Context, result model.CohortResult) string {
	prompt := fmt.Sprintf("Тип абонента: %s. Средний счет абонента: %s. Средний счет группы: %s. Оценка: %s.",
		result.UserType,
		result.UserAverage.StringFixed(analytics.MoneyPlaces),
		result.CohortAverage.StringFixed(analytics.MoneyPlaces),
		result.Rating)
	return s.generate(ctx, narrativeCohort, prompt, cohortFallback(result))
}

func cohortFallback(result model.CohortResult) string {
	diff := result.UserAverage.Sub(result.CohortAverage)
	switch {
	case diff.IsPositive():
		return fmt.Sprintf("Вы платите в среднем на %s больше похожих абонентов. Возможно, это связано с высоким потреблением.",
			diff.StringFixed(analytics.MoneyPlaces))
	case diff.IsNegative():
		return fmt.Sprintf("Вы платите в среднем на %s меньше похожих абонентов.",
			diff.Abs().StringFixed(analytics.MoneyPlaces))
	default:
		return "Ваш средний счет совпадает со средним по группе."
	}
}

func (s *NarrativeService) Tax(ctx context.Context, b model.TaxBreakdown) string {
	prompt := fmt.Sprintf("Сумма счетов: %s. Налоги: %s, из них НДС %s. Эффективная ставка: %s.",
		b.TotalAmount.StringFixed(analytics.MoneyPlaces),
		b.TotalTax.StringFixed(analytics.MoneyPlaces),
		b.KDVAmount.StringFixed(analytics.MoneyPlaces),
		b.EffectiveRate.String())
	return s.generate(ctx, narrativeTax, prompt, taxFallback(b))
}

func taxFallback(b model.TaxBreakdown) string {
	return fmt.Sprintf("Всего налогов начислено %s. Эффективная ставка составляет %s%%.",
		b.TotalTax.StringFixed(analytics.MoneyPlaces),
		b.EffectiveRate.Shift(2).StringFixed(analytics.MoneyPlaces))
}

func (s *NarrativeService) Autofix(ctx context.Context, candidates []model.AutofixCandidate) string {
	best, ok := analytics.Best(candidates)
	if !ok || !best.Savings.IsPositive() {
		return "Текущая конфигурация уже оптимальна, экономии не найдено."
	}

	var sb strings.Builder
	for _, c := range candidates {
		fmt.Fprintf(&sb, "- %s: экономия %s\n", c.Title, c.Savings.StringFixed(analytics.MoneyPlaces))
	}
	fallback := fmt.Sprintf("Текущая сумма %s. Лучший вариант \"%s\" сэкономит %s.",
		best.CurrentCost.StringFixed(analytics.MoneyPlaces), best.Title, best.Savings.StringFixed(analytics.MoneyPlaces))
	return s.generate(ctx, narrativeAutofix, sb.String(), fallback)
}

func (s *NarrativeService) Bill(ctx context.Context, explanation model.BillExplanation) string {
	var cats []string
	for _, b := range explanation.Breakdown {
		cats = append(cats, fmt.Sprintf("%s %s", b.Category, b.Total.StringFixed(analytics.MoneyPlaces)))
	}
	main := strings.Join(cats, ", ")
	sum := explanation.Summary

	prompt := fmt.Sprintf("Счет за %s на сумму %s. Категории: %s. Налоги: %s.",
		sum.Period, sum.TotalAmount.StringFixed(analytics.MoneyPlaces), main, sum.Taxes.StringFixed(analytics.MoneyPlaces))
	fallback := fmt.Sprintf("Сумма счета за %s: %s. Основные начисления: %s.",
		sum.Period, sum.TotalAmount.StringFixed(analytics.MoneyPlaces), main)
	return s.generate(ctx, narrativeBill, prompt, fallback)
}
