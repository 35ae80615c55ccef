package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"billing-analytics/internal/metrics"
	"billing-analytics/internal/model"
)

const (
	defaultExplainTimeout = 10 * time.Second
	explainMaxTokens      = 300
	explainFailureLimit   = 3

	explainSystemPrompt = "Ты аналитик счетов мобильного оператора. Объясняй начисления абоненту коротко, " +
		"без жаргона, с конкретными суммами. Отвечай 2-3 предложениями."
)

var errExplainDisabled = errors.New("explanation service is not configured")

// Explainer генерирует текст объяснения по подсказке
type Explainer interface {
	Explain(ctx context.Context, prompt string) (string, error)
}

type ExplainClientConfig struct {
	APIURL  string
	APIKey  string
	Model   string
	Timeout time.Duration
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// ExplainClient обращается к внешней языковой модели через OpenAI-совместимый API.
// Вызовы ограничены по времени и идут через автомат отключения.
type ExplainClient struct {
	cfg        ExplainClientConfig
	enabled    bool
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *logrus.Logger
}

func NewExplainClient(cfg ExplainClientConfig, logger *logrus.Logger) *ExplainClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultExplainTimeout
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "explain-client",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= explainFailureLimit
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"name": name,
				"from": from.String(),
				"to":   to.String(),
			}).Warn("Изменилось состояние автомата отключения")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		},
	})

	return &ExplainClient{
		cfg:     cfg,
		enabled: cfg.APIURL != "" && cfg.APIKey != "",
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		breaker: breaker,
		logger:  logger,
	}
}

func (c *ExplainClient) Enabled() bool {
	return c.enabled
}

func (c *ExplainClient) Explain(ctx context.Context, prompt string) (string, error) {
	if !c.enabled {
		return "", errExplainDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.call(ctx, prompt)
	})
	if err != nil {
		return "", model.NewCollaboratorError("explain", err)
	}
	return result.(string), nil
}

func (c *ExplainClient) call(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: explainSystemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens: explainMaxTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ошибка при выполнении HTTP-запроса: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(raw))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("ошибка при разборе ответа: %w", err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", errors.New("пустой ответ сервиса объяснений")
	}
	return parsed.Choices[0].Message.Content, nil
}
