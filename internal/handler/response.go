package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"billing-analytics/internal/analytics"
	"billing-analytics/internal/model"
)

type contextKey string

// userIDKey - ключ идентификатора абонента в контексте запроса
const userIDKey contextKey = "userID"

// WithUserID кладет идентификатор абонента в контекст, как это делает AuthMiddleware
func WithUserID(r *http.Request, userID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userIDKey, userID))
}

func currentUser(w http.ResponseWriter, r *http.Request, logger *logrus.Logger) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(userIDKey).(string)
	if !ok {
		logger.Warn("Запрос без авторизации")
		http.Error(w, "Требуется авторизация", http.StatusUnauthorized)
		return uuid.Nil, false
	}

	id, err := uuid.Parse(userID)
	if err != nil {
		logger.WithField("userID", userID).Warn("Неверный формат ID пользователя")
		http.Error(w, "Неверный ID пользователя", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func pathID(w http.ResponseWriter, r *http.Request, name string, logger *logrus.Logger) (uuid.UUID, bool) {
	raw := mux.Vars(r)[name]
	id, err := uuid.Parse(raw)
	if err != nil {
		logger.WithField(name, raw).Warn("Неверный формат идентификатора")
		http.Error(w, "Неверный идентификатор", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// periodParam возвращает период из запроса, по умолчанию текущий месяц
func periodParam(r *http.Request) string {
	if p := r.URL.Query().Get("period"); p != "" {
		return p
	}
	return analytics.PeriodOf(time.Now()).Token()
}

// asOfParam - момент, от которого отсчитываются последние месяцы
func asOfParam(r *http.Request) (time.Time, error) {
	p := r.URL.Query().Get("period")
	if p == "" {
		return time.Now(), nil
	}
	period, err := analytics.ResolvePeriod(p)
	if err != nil {
		return time.Time{}, err
	}
	return period.Start, nil
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}, logger *logrus.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.WithError(err).Error("Ошибка кодирования ответа")
	}
}

// writeError переводит ошибку сервиса в HTTP-статус
func writeError(w http.ResponseWriter, err error, logger *logrus.Logger, message string) {
	switch {
	case errors.Is(err, model.ErrInvalidPeriod):
		logger.WithError(err).Warn(message)
		http.Error(w, "Неверный период (используйте YYYY-MM)", http.StatusBadRequest)
	case errors.Is(err, model.ErrNotFound):
		logger.WithError(err).Warn(message)
		http.Error(w, "Данные не найдены", http.StatusNotFound)
	case errors.Is(err, model.ErrCollaboratorUnavailable):
		logger.WithError(err).Error(message)
		http.Error(w, "Сервис временно недоступен", http.StatusServiceUnavailable)
	default:
		logger.WithError(err).Error(message)
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
	}
}
