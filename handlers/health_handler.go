package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Dosada05/hackathon-teams/db"
)

type HealthHandler struct {
	store   db.DocumentStore
	timeout time.Duration
	logger  *slog.Logger
}

func NewHealthHandler(store db.DocumentStore, timeout time.Duration, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{store: store, timeout: timeout, logger: logger}
}

// Healthz всегда отвечает 200, пока процесс жив; состояние хранилища - в теле ответа.
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	storeStatus := "ok"
	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("store ping failed", slog.Any("error", err))
		storeStatus = "unavailable"
	}

	response := jsonResponse{
		"status": "ok",
		"store":  storeStatus,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}
