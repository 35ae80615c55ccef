package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billing-analytics/internal/model"
)

func chatServer(t *testing.T, handler func(w http.ResponseWriter, req chatRequest)) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		handler(w, req)
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func TestExplainClientReturnsFirstChoice(t *testing.T) {
	server, _ := chatServer(t, func(w http.ResponseWriter, req chatRequest) {
		assert.Equal(t, "test-model", req.Model)
		if assert.Len(t, req.Messages, 2) {
			assert.Equal(t, "system", req.Messages[0].Role)
			assert.Equal(t, "Объясни счет", req.Messages[1].Content)
		}

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "Счет вырос из-за роуминга."}},
			},
		})
	})

	client := NewExplainClient(ExplainClientConfig{APIURL: server.URL, APIKey: "test-key", Model: "test-model"}, testLogger())
	require.True(t, client.Enabled())

	text, err := client.Explain(context.Background(), "Объясни счет")
	require.NoError(t, err)
	assert.Equal(t, "Счет вырос из-за роуминга.", text)
}

func TestExplainClientDisabledWithoutKey(t *testing.T) {
	client := NewExplainClient(ExplainClientConfig{APIURL: "http://localhost"}, testLogger())
	assert.False(t, client.Enabled())

	_, err := client.Explain(context.Background(), "prompt")
	assert.ErrorIs(t, err, errExplainDisabled)
}

func TestExplainClientServerErrorIsCollaboratorFailure(t *testing.T) {
	server, _ := chatServer(t, func(w http.ResponseWriter, _ chatRequest) {
		http.Error(w, "overloaded", http.StatusInternalServerError)
	})
	client := NewExplainClient(ExplainClientConfig{APIURL: server.URL, APIKey: "test-key"}, testLogger())

	_, err := client.Explain(context.Background(), "prompt")
	assert.ErrorIs(t, err, model.ErrCollaboratorUnavailable)
}

func TestExplainClientTimesOut(t *testing.T) {
	release := make(chan struct{})
	server, _ := chatServer(t, func(w http.ResponseWriter, _ chatRequest) {
		<-release
	})
	defer close(release)

	client := NewExplainClient(ExplainClientConfig{
		APIURL:  server.URL,
		APIKey:  "test-key",
		Timeout: 50 * time.Millisecond,
	}, testLogger())

	started := time.Now()
	_, err := client.Explain(context.Background(), "prompt")
	assert.ErrorIs(t, err, model.ErrCollaboratorUnavailable)
	assert.Less(t, time.Since(started), 5*time.Second)
}

func TestExplainClientOpensBreakerAfterConsecutiveFailures(t *testing.T) {
	server, calls := chatServer(t, func(w http.ResponseWriter, _ chatRequest) {
		w.WriteHeader(http.StatusBadGateway)
	})
	client := NewExplainClient(ExplainClientConfig{APIURL: server.URL, APIKey: "test-key"}, testLogger())

	for i := 0; i < explainFailureLimit+2; i++ {
		_, err := client.Explain(context.Background(), "prompt")
		assert.ErrorIs(t, err, model.ErrCollaboratorUnavailable)
	}
	assert.Equal(t, int32(explainFailureLimit), atomic.LoadInt32(calls))
}

func TestNarrativeFallsBackWhenExplainerFails(t *testing.T) {
	server, _ := chatServer(t, func(w http.ResponseWriter, _ chatRequest) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	client := NewExplainClient(ExplainClientConfig{APIURL: server.URL, APIKey: "test-key"}, testLogger())
	narrative := NewNarrativeService(client, testLogger())

	text := narrative.Tax(context.Background(), model.TaxBreakdown{
		TotalTax:      dec("20"),
		EffectiveRate: dec("0.1053"),
	})
	assert.Equal(t, "Всего налогов начислено 20.00. Эффективная ставка составляет 10.53%.", text)
}

func TestNarrativeFallsBackOnEmptyText(t *testing.T) {
	narrative := NewNarrativeService(&staticExplainer{text: "   "}, testLogger())

	text := narrative.Cohort(context.Background(), model.CohortResult{
		UserAverage:   dec("150"),
		CohortAverage: dec("100"),
	})
	assert.Equal(t, "Вы платите в среднем на 50.00 больше похожих абонентов. Возможно, это связано с высоким потреблением.", text)
}

func TestNarrativeAutofixWithoutSavings(t *testing.T) {
	explainer := &staticExplainer{text: "не должен вызываться"}
	narrative := NewNarrativeService(explainer, testLogger())

	text := narrative.Autofix(context.Background(), []model.AutofixCandidate{{Savings: dec("0")}})
	assert.Equal(t, "Текущая конфигурация уже оптимальна, экономии не найдено.", text)
	assert.Equal(t, 0, explainer.calls)
}
