package handlers

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/Dosada05/hackathon-teams/events"
	"github.com/Dosada05/hackathon-teams/realtime"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWebSocketHandler - allowedOrigins как в CORS; пустой список или "*" разрешает все.
func NewWebSocketHandler(hub *realtime.Hub, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger,
	}
}

// ServeWs подписывает клиента на обновления состава команд хакатона.
// Клиент подключается к /ws/hackathons/{hackathonID}
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	hackathonID := chi.URLParam(r, "hackathonID")
	if err := events.Validate(hackathonID); err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отправляет HTTP ошибку клиенту
		h.logger.Warn("failed to upgrade websocket connection",
			slog.String("hackathon_id", hackathonID),
			slog.Any("error", err),
		)
		return
	}

	client := realtime.NewClient(h.hub, conn, realtime.RoomForHackathon(hackathonID))
	if !h.hub.Subscribe(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[strings.ToLower(o)] = true
	}
	if len(set) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return set[strings.ToLower(u.Scheme+"://"+u.Host)]
	}
}
