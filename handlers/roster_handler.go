package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Dosada05/hackathon-teams/events"
	"github.com/Dosada05/hackathon-teams/middleware"
	"github.com/Dosada05/hackathon-teams/models"
	"github.com/Dosada05/hackathon-teams/realtime"
	"github.com/Dosada05/hackathon-teams/services"
)

type RosterHandler struct {
	rosterService services.RosterService
	broadcaster   realtime.Broadcaster
	metrics       *middleware.Metrics
	logger        *slog.Logger
}

// NewRosterHandler - broadcaster и metrics могут быть nil.
func NewRosterHandler(rs services.RosterService, broadcaster realtime.Broadcaster, metrics *middleware.Metrics, logger *slog.Logger) *RosterHandler {
	return &RosterHandler{
		rosterService: rs,
		broadcaster:   broadcaster,
		metrics:       metrics,
		logger:        logger,
	}
}

func (h *RosterHandler) GetCurrentHackathon(w http.ResponseWriter, r *http.Request) {
	id := events.Current()
	cutoff, err := events.Cutoff(id)
	if err != nil {
		serverErrorResponse(w, r, h.logger, err)
		return
	}

	response := jsonResponse{
		"hackathon_id": id,
		"cutoff":       cutoff,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

func (h *RosterHandler) GetRoster(w http.ResponseWriter, r *http.Request) {
	hackathonID, err := hackathonIDFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}

	roster := h.loadRoster(r, hackathonID)
	if err := writeJSON(w, http.StatusOK, jsonResponse{"roster": roster}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

func (h *RosterHandler) JoinPool(w http.ResponseWriter, r *http.Request) {
	hackathonID, err := hackathonIDFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, h.logger, "failed to identify current user")
		return
	}

	entry, err := h.rosterService.JoinPool(r.Context(), currentUserID, hackathonID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	response := jsonResponse{
		"pool_entry": entry,
		"roster":     h.loadRoster(r, hackathonID),
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

// RequestJoin создает заявку в команду и возвращает обновленный список.
// Список и рассылка JOIN_REQUESTED берутся по hackathonId из query (по умолчанию текущий),
// а не по хакатону команды: команда в хранилище не перечитывается.
func (h *RosterHandler) RequestJoin(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}
	hackathonID, err := hackathonIDFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, h.logger, "failed to identify current user")
		return
	}

	joinRequest, err := h.rosterService.RequestJoin(r.Context(), currentUserID, teamID)
	h.metrics.JoinRequest(err == nil)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	if h.broadcaster != nil {
		h.broadcaster.BroadcastToRoom(realtime.RoomForHackathon(hackathonID), realtime.MessageJoinRequested, joinRequest)
	}

	response := jsonResponse{
		"join_request": joinRequest,
		"roster":       h.loadRoster(r, hackathonID),
	}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

// loadRoster при ошибке чтения логирует ее и отдает пустой список.
func (h *RosterHandler) loadRoster(r *http.Request, hackathonID string) *models.Roster {
	roster, err := h.rosterService.LoadRoster(r.Context(), hackathonID, middleware.SessionFromContext(r.Context()))
	if err == nil {
		return roster
	}

	h.logger.Error("failed to load roster, serving empty state",
		slog.String("hackathon_id", hackathonID),
		slog.Bool("store_unavailable", errors.Is(err, services.ErrStoreUnavailable)),
		slog.Any("error", err),
	)
	roster = models.EmptyRoster(hackathonID)
	if cutoff, cutoffErr := events.Cutoff(hackathonID); cutoffErr == nil {
		roster.Cutoff = cutoff
	}
	return roster
}
