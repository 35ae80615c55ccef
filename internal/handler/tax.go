package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"billing-analytics/internal/service"
)

type TaxHandler struct {
	taxService  *service.TaxService
	billService *service.BillService
	logger      *logrus.Logger
}

func NewTaxHandler(taxService *service.TaxService, billService *service.BillService, logger *logrus.Logger) *TaxHandler {
	return &TaxHandler{
		taxService:  taxService,
		billService: billService,
		logger:      logger,
	}
}

func (h *TaxHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/tax/bills/{id}", h.GetBreakdown).Methods("GET")
	router.HandleFunc("/tax/bills/{id}/suggestions", h.GetSuggestions).Methods("GET")
	router.HandleFunc("/tax/trend", h.GetTrend).Methods("GET")
	router.HandleFunc("/tax/compare", h.Compare).Methods("GET")
}

// ownedBill разбирает {id} и проверяет, что счет принадлежит абоненту
func (h *TaxHandler) ownedBill(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return uuid.Nil, false
	}
	billID, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return uuid.Nil, false
	}
	if err := h.billService.CheckOwner(r.Context(), userID, billID); err != nil {
		writeError(w, err, h.logger, "Ошибка проверки счета")
		return uuid.Nil, false
	}
	return billID, true
}

func (h *TaxHandler) GetBreakdown(w http.ResponseWriter, r *http.Request) {
	billID, ok := h.ownedBill(w, r)
	if !ok {
		return
	}

	breakdown, err := h.taxService.Breakdown(r.Context(), billID)
	if err != nil {
		writeError(w, err, h.logger, "Ошибка разложения налогов")
		return
	}
	writeJSON(w, http.StatusOK, breakdown, h.logger)
}

func (h *TaxHandler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	billID, ok := h.ownedBill(w, r)
	if !ok {
		return
	}

	suggestions, err := h.taxService.Suggestions(r.Context(), billID)
	if err != nil {
		writeError(w, err, h.logger, "Ошибка получения рекомендаций по налогам")
		return
	}
	writeJSON(w, http.StatusOK, suggestions, h.logger)
}

// GetTrend суммирует налоги за последние months месяцев (по умолчанию 3)
func (h *TaxHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	months := 0
	if raw := r.URL.Query().Get("months"); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil || m <= 0 {
			h.logger.WithField("months", raw).Warn("Неверное число месяцев")
			http.Error(w, "Неверное число месяцев", http.StatusBadRequest)
			return
		}
		months = m
	}

	h.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"months":  months,
	}).Info("Запрос налоговой динамики")

	trend, err := h.taxService.Trend(r.Context(), userID, months, time.Now())
	if err != nil {
		writeError(w, err, h.logger, "Ошибка расчета налоговой динамики")
		return
	}
	writeJSON(w, http.StatusOK, trend, h.logger)
}

// Compare сравнивает налоги двух счетов абонента
func (h *TaxHandler) Compare(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	var ids [2]uuid.UUID
	for i, name := range []string{"first", "second"} {
		id, err := uuid.Parse(r.URL.Query().Get(name))
		if err != nil {
			h.logger.WithField(name, r.URL.Query().Get(name)).Warn("Неверный идентификатор счета")
			http.Error(w, "Неверный идентификатор счета", http.StatusBadRequest)
			return
		}
		if err := h.billService.CheckOwner(r.Context(), userID, id); err != nil {
			writeError(w, err, h.logger, "Ошибка проверки счета")
			return
		}
		ids[i] = id
	}

	cmp, err := h.taxService.Compare(r.Context(), ids[0], ids[1])
	if err != nil {
		writeError(w, err, h.logger, "Ошибка сравнения налогов")
		return
	}
	writeJSON(w, http.StatusOK, cmp, h.logger)
}
