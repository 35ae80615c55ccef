package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"billing-analytics/internal/service"
)

type BillHandler struct {
	billService  *service.BillService
	usageService *service.UsageService
	logger       *logrus.Logger
}

func NewBillHandler(billService *service.BillService, usageService *service.UsageService, logger *logrus.Logger) *BillHandler {
	return &BillHandler{
		billService:  billService,
		usageService: usageService,
		logger:       logger,
	}
}

func (h *BillHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/bills/{id}/explain", h.Explain).Methods("GET")
	router.HandleFunc("/usage/summary", h.GetUsageSummary).Methods("GET")
	router.HandleFunc("/usage/trend", h.GetUsageTrend).Methods("GET")
}

// Explain объясняет начисления в счете
func (h *BillHandler) Explain(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	billID, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}
	if err := h.billService.CheckOwner(r.Context(), userID, billID); err != nil {
		writeError(w, err, h.logger, "Ошибка проверки счета")
		return
	}

	h.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"bill_id": billID,
	}).Info("Запрос объяснения счета")

	explanation, err := h.billService.Explain(r.Context(), billID)
	if err != nil {
		writeError(w, err, h.logger, "Ошибка объяснения счета")
		return
	}
	writeJSON(w, http.StatusOK, explanation, h.logger)
}

func (h *BillHandler) GetUsageSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	summary, err := h.usageService.Summary(r.Context(), userID, periodParam(r))
	if err != nil {
		writeError(w, err, h.logger, "Ошибка получения сводки потребления")
		return
	}
	writeJSON(w, http.StatusOK, summary, h.logger)
}

func (h *BillHandler) GetUsageTrend(w http.ResponseWriter, r *http.Request) {
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
	asOf, err := asOfParam(r)
	if err != nil {
		writeError(w, err, h.logger, "Неверный период")
		return
	}

	summary, err := h.usageService.Trend(r.Context(), userID, months, asOf)
	if err != nil {
		writeError(w, err, h.logger, "Ошибка расчета динамики потребления")
		return
	}
	writeJSON(w, http.StatusOK, summary, h.logger)
}
