package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Dosada05/hackathon-teams/events"
	"github.com/Dosada05/hackathon-teams/services" // Импортируем для маппинга ошибок сервисов
	"github.com/go-chi/chi/v5"
)

type jsonResponse map[string]interface{}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func errorResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger, status int, message interface{}) {
	env := jsonResponse{"error": message}
	if err := writeJSON(w, status, env, nil); err != nil {
		logger.Error("failed to write error response",
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	logger.Error("internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	message := "the server encountered a problem and could not process your request"
	errorResponse(w, r, logger, http.StatusInternalServerError, message)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	errorResponse(w, r, logger, http.StatusBadRequest, err.Error())
}

func notFoundResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger) {
	message := "the requested resource could not be found"
	errorResponse(w, r, logger, http.StatusNotFound, message)
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger, message string) {
	errorResponse(w, r, logger, http.StatusUnauthorized, message)
}

func unavailableResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger, message string) {
	errorResponse(w, r, logger, http.StatusServiceUnavailable, message)
}

// mapServiceErrorToHTTP преобразует ошибки сервисного слоя в HTTP-ответы
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, services.ErrProfileNotFound):
		notFoundResponse(w, r, logger)

	case errors.Is(err, services.ErrValidationFailed),
		errors.Is(err, services.ErrInvalidHackathonID),
		errors.Is(err, services.ErrUnsupportedPhotoType):
		badRequestResponse(w, r, logger, err)
	case errors.Is(err, services.ErrPhotoTooLarge):
		errorResponse(w, r, logger, http.StatusRequestEntityTooLarge, err.Error())

	case errors.Is(err, services.ErrUploadsDisabled):
		unavailableResponse(w, r, logger, services.ErrUploadsDisabled.Error())

	// Ошибки записи: пользователю - общий текст операции, подробности - в лог
	case errors.Is(err, services.ErrJoinRequestFailed):
		operationFailedResponse(w, r, logger, services.ErrJoinRequestFailed, err)
	case errors.Is(err, services.ErrJoinPoolFailed):
		operationFailedResponse(w, r, logger, services.ErrJoinPoolFailed, err)
	case errors.Is(err, services.ErrProfileUpdateFailed):
		operationFailedResponse(w, r, logger, services.ErrProfileUpdateFailed, err)
	case errors.Is(err, services.ErrProfileLoadFailed):
		operationFailedResponse(w, r, logger, services.ErrProfileLoadFailed, err)

	default:
		serverErrorResponse(w, r, logger, err)
	}
}

func operationFailedResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger, op error, err error) {
	logger.Error(op.Error(),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	errorResponse(w, r, logger, http.StatusInternalServerError, op.Error())
}

func getIDFromURL(r *http.Request, paramName string) (string, error) {
	id := chi.URLParam(r, paramName)
	if id == "" {
		return "", fmt.Errorf("missing %s in URL path", paramName)
	}
	return id, nil
}

// hackathonIDFromQuery берет hackathonId из query; без параметра - текущий хакатон.
func hackathonIDFromQuery(r *http.Request) (string, error) {
	id := r.URL.Query().Get("hackathonId")
	if id == "" {
		return events.Current(), nil
	}
	if err := events.Validate(id); err != nil {
		return "", err
	}
	return id, nil
}
