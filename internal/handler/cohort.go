package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"billing-analytics/internal/service"
)

type CohortHandler struct {
	cohortService *service.CohortService
	logger        *logrus.Logger
}

func NewCohortHandler(cohortService *service.CohortService, logger *logrus.Logger) *CohortHandler {
	return &CohortHandler{cohortService: cohortService, logger: logger}
}

func (h *CohortHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/cohort", h.GetCohort).Methods("GET")
	router.HandleFunc("/cohort/similar", h.GetSimilar).Methods("GET")
}

// GetCohort сравнивает расходы абонента с абонентами того же типа
func (h *CohortHandler) GetCohort(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	period := periodParam(r)

	h.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"period":  period,
	}).Info("Запрос сравнения с когортой")

	result, err := h.cohortService.Analyze(r.Context(), userID, period)
	if err != nil {
		writeError(w, err, h.logger, "Ошибка сравнения с когортой")
		return
	}
	writeJSON(w, http.StatusOK, result, h.logger)
}

func (h *CohortHandler) GetSimilar(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	result, err := h.cohortService.Similar(r.Context(), userID, periodParam(r))
	if err != nil {
		writeError(w, err, h.logger, "Ошибка поиска похожих абонентов")
		return
	}
	writeJSON(w, http.StatusOK, result, h.logger)
}
