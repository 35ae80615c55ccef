package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"billing-analytics/internal/service"
)

type AnomalyHandler struct {
	anomalyService *service.AnomalyService
	billService    *service.BillService
	logger         *logrus.Logger
}

func NewAnomalyHandler(anomalyService *service.AnomalyService, billService *service.BillService, logger *logrus.Logger) *AnomalyHandler {
	return &AnomalyHandler{
		anomalyService: anomalyService,
		billService:    billService,
		logger:         logger,
	}
}

func (h *AnomalyHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/anomalies", h.GetAnomalies).Methods("GET")
	router.HandleFunc("/anomalies/history", h.GetHistory).Methods("GET")
	router.HandleFunc("/anomalies/summary", h.GetSummary).Methods("GET")
	router.HandleFunc("/bills/{id}/anomalies", h.GetBillAnomalies).Methods("GET")
}

// GetAnomalies проверяет счет абонента за период
func (h *AnomalyHandler) GetAnomalies(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	period := periodParam(r)

	h.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"period":  period,
	}).Info("Запрос аномалий в счете")

	report, err := h.anomalyService.DetectForPeriod(r.Context(), userID, period)
	if err != nil {
		writeError(w, err, h.logger, "Ошибка поиска аномалий")
		return
	}
	writeJSON(w, http.StatusOK, report, h.logger)
}

func (h *AnomalyHandler) GetBillAnomalies(w http.ResponseWriter, r *http.Request) {
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

	report, err := h.anomalyService.DetectForBill(r.Context(), billID)
	if err != nil {
		writeError(w, err, h.logger, "Ошибка поиска аномалий")
		return
	}
	writeJSON(w, http.StatusOK, report, h.logger)
}

// GetHistory - аномалии итоговой суммы за шесть месяцев
func (h *AnomalyHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	asOf, err := asOfParam(r)
	if err != nil {
		writeError(w, err, h.logger, "Неверный период")
		return
	}

	history, err := h.anomalyService.History(r.Context(), userID, asOf)
	if err != nil {
		writeError(w, err, h.logger, "Ошибка получения истории аномалий")
		return
	}
	writeJSON(w, http.StatusOK, history, h.logger)
}

func (h *AnomalyHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	asOf, err := asOfParam(r)
	if err != nil {
		writeError(w, err, h.logger, "Неверный период")
		return
	}

	summary, err := h.anomalyService.Summary(r.Context(), userID, asOf)
	if err != nil {
		writeError(w, err, h.logger, "Ошибка получения сводки аномалий")
		return
	}
	writeJSON(w, http.StatusOK, summary, h.logger)
}
