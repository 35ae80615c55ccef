package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"billing-analytics/internal/metrics"
	"billing-analytics/internal/model"
	"billing-analytics/internal/repository"
)

const (
	DefaultFXRatesURL = "https://www.tcmb.gov.tr/kurlar/today.xml"
	fxRateTTL         = 12 * time.Hour
	fxRatePlaces      = 6
)

// FXService пересчитывает суммы в базовую валюту по курсам центрального банка.
// Курсы в ленте указаны в базовой валюте за Unit единиц иностранной.
type FXService struct {
	httpClient *http.Client
	url        string
	base       string
	cache      repository.RateCache
	logger     *logrus.Logger

	mu sync.Mutex
}

func NewFXService(url, base string, cache repository.RateCache, logger *logrus.Logger) *FXService {
	if url == "" {
		url = DefaultFXRatesURL
	}
	if cache == nil {
		cache = repository.NewMemoryRateCache()
	}
	return &FXService{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		url:    url,
		base:   strings.ToUpper(base),
		cache:  cache,
		logger: logger,
	}
}

func (s *FXService) Base() string {
	return s.base
}

// Convert переводит сумму в базовую валюту с округлением до копеек
func (s *FXService) Convert(ctx context.Context, amount decimal.Decimal, currency string) (decimal.Decimal, error) {
	currency = strings.ToUpper(currency)
	if currency == "" || currency == s.base {
		return amount, nil
	}
	rate, err := s.Rate(ctx, currency)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate).Round(2), nil
}

// Rate возвращает курс валюты, при промахе кэша загружает ленту целиком
func (s *FXService) Rate(ctx context.Context, currency string) (decimal.Decimal, error) {
	currency = strings.ToUpper(currency)
	if rate, ok := s.cache.Get(ctx, currency); ok {
		metrics.FXCacheHitsTotal.Inc()
		return rate, nil
	}
	metrics.FXCacheMissesTotal.Inc()

	s.mu.Lock()
	defer s.mu.Unlock()

	// лента могла загрузиться, пока ждали блокировку
	if rate, ok := s.cache.Get(ctx, currency); ok {
		return rate, nil
	}

	s.logger.WithField("currency", currency).Info("Загрузка курсов валют")
	raw, err := s.fetch(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Ошибка при загрузке курсов валют")
		return decimal.Zero, model.NewCollaboratorError("fx", err)
	}

	rates, err := parseRates(raw)
	if err != nil {
		s.logger.WithError(err).Error("Ошибка при разборе курсов валют")
		return decimal.Zero, model.NewCollaboratorError("fx", err)
	}

	for code, rate := range rates {
		if err := s.cache.Set(ctx, code, rate, fxRateTTL); err != nil {
			s.logger.WithError(err).WithField("currency", code).Warn("Не удалось сохранить курс в кэш")
		}
	}
	s.logger.WithField("currencies", len(rates)).Debug("Курсы валют обновлены")

	rate, ok := rates[currency]
	if !ok {
		return decimal.Zero, model.NewNotFound("currency rate", currency)
	}
	return rate, nil
}

func (s *FXService) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка при выполнении HTTP-запроса: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ошибка при чтении ответа: %w", err)
	}
	return rawBody, nil
}

// parseRates извлекает курс продажи каждой валюты с учетом номинала
func parseRates(rawBody []byte) (map[string]decimal.Decimal, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return nil, fmt.Errorf("ошибка при разборе XML: %w", err)
	}

	elements := doc.FindElements("//Currency")
	if len(elements) == 0 {
		return nil, errors.New("курсы валют не найдены")
	}

	rates := make(map[string]decimal.Decimal, len(elements))
	for _, el := range elements {
		code := el.SelectAttrValue("CurrencyCode", el.SelectAttrValue("Kod", ""))
		selling := el.FindElement("./ForexSelling")
		if code == "" || selling == nil || strings.TrimSpace(selling.Text()) == "" {
			continue
		}

		rate, err := decimal.NewFromString(strings.TrimSpace(selling.Text()))
		if err != nil {
			return nil, fmt.Errorf("ошибка при преобразовании курса %s: %w", code, err)
		}

		unit := decimal.NewFromInt(1)
		if u := el.FindElement("./Unit"); u != nil {
			if parsed, err := decimal.NewFromString(strings.TrimSpace(u.Text())); err == nil && parsed.IsPositive() {
				unit = parsed
			}
		}
		rates[strings.ToUpper(code)] = rate.DivRound(unit, fxRatePlaces)
	}

	if len(rates) == 0 {
		return nil, errors.New("курсы валют не найдены")
	}
	return rates, nil
}
