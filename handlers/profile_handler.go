package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Dosada05/hackathon-teams/middleware"
	"github.com/Dosada05/hackathon-teams/services"
)

// Запас сверх MaxPhotoSize на служебные части multipart-тела.
const multipartOverhead = 1 << 20

type ProfileHandler struct {
	profileService services.ProfileService
	logger         *slog.Logger
}

func NewProfileHandler(ps services.ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileService: ps,
		logger:         logger,
	}
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := getIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}

	profile, err := h.profileService.GetProfile(r.Context(), userID, middleware.SessionFromContext(r.Context()))
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"profile": profile}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

// GetMyProfile - профиль текущего пользователя, в том числе скрытый.
func (h *ProfileHandler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())
	if !session.Authenticated() {
		unauthorizedResponse(w, r, h.logger, "failed to identify current user")
		return
	}

	profile, err := h.profileService.GetProfile(r.Context(), session.UserID, session)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"profile": profile}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

func (h *ProfileHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, h.logger, "failed to identify current user")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, services.MaxPhotoSize+multipartOverhead)
	if err := r.ParseMultipartForm(services.MaxPhotoSize); err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			mapServiceErrorToHTTP(w, r, h.logger, services.ErrPhotoTooLarge)
			return
		}
		badRequestResponse(w, r, h.logger, err)
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		badRequestResponse(w, r, h.logger, errors.New("content type required"))
		return
	}

	profile, err := h.profileService.UpdatePhoto(r.Context(), currentUserID, contentType, header.Size, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"profile": profile}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}
