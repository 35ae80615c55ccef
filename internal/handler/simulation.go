package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"billing-analytics/internal/analytics"
	"billing-analytics/internal/model"
	"billing-analytics/internal/service"
)

type SimulationHandler struct {
	simulationService *service.SimulationService
	logger            *logrus.Logger
}

func NewSimulationHandler(simulationService *service.SimulationService, logger *logrus.Logger) *SimulationHandler {
	return &SimulationHandler{simulationService: simulationService, logger: logger}
}

func (h *SimulationHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/simulations", h.Simulate).Methods("POST")
	router.HandleFunc("/simulations/compare", h.Compare).Methods("GET")
	router.HandleFunc("/simulations/whatif", h.WhatIf).Methods("GET")
	router.HandleFunc("/autofix", h.GetAutofixes).Methods("GET")
	router.HandleFunc("/autofix/prioritized", h.GetPrioritized).Methods("GET")
	router.HandleFunc("/autofix/best", h.GetBest).Methods("GET")
}

// Simulate пересчитывает счет за период по сценарию из тела запроса
func (h *SimulationHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	var req model.SimulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Warn("Неверный формат запроса сценария")
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}
	if req.Period == "" {
		req.Period = periodParam(r)
	}
	if _, err := analytics.ResolvePeriod(req.Period); err != nil {
		writeError(w, err, h.logger, "Неверный период сценария")
		return
	}

	h.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"period":   req.Period,
		"scenario": req.Scenario.ID,
	}).Info("Запрос расчета сценария")

	resp, err := h.simulationService.Simulate(r.Context(), userID, req)
	if err != nil {
		writeError(w, err, h.logger, "Ошибка расчета сценария")
		return
	}
	writeJSON(w, http.StatusOK, resp, h.logger)
}

func (h *SimulationHandler) Compare(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	cmp, err := h.simulationService.Compare(r.Context(), userID, periodParam(r))
	if err != nil {
		writeError(w, err, h.logger, "Ошибка сравнения сценариев")
		return
	}
	writeJSON(w, http.StatusOK, cmp, h.logger)
}

func (h *SimulationHandler) WhatIf(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	analysis, err := h.simulationService.WhatIf(r.Context(), userID, periodParam(r))
	if err != nil {
		writeError(w, err, h.logger, "Ошибка анализа сценариев")
		return
	}
	writeJSON(w, http.StatusOK, analysis, h.logger)
}

func (h *SimulationHandler) GetAutofixes(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	candidates, err := h.simulationService.Autofixes(r.Context(), userID, periodParam(r))
	if err != nil {
		writeError(w, err, h.logger, "Ошибка подбора рекомендаций")
		return
	}
	writeJSON(w, http.StatusOK, candidates, h.logger)
}

func (h *SimulationHandler) GetPrioritized(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	candidates, err := h.simulationService.PrioritizedAutofixes(r.Context(), userID, periodParam(r))
	if err != nil {
		writeError(w, err, h.logger, "Ошибка подбора рекомендаций")
		return
	}
	writeJSON(w, http.StatusOK, candidates, h.logger)
}

func (h *SimulationHandler) GetBest(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	best, err := h.simulationService.BestAutofix(r.Context(), userID, periodParam(r))
	if err != nil {
		writeError(w, err, h.logger, "Ошибка подбора лучшей рекомендации")
		return
	}
	writeJSON(w, http.StatusOK, best, h.logger)
}
