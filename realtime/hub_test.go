package realtime

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func newHubServer(t *testing.T, hub *Hub, room string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, conn, room)
		if !hub.Subscribe(client) {
			conn.Close()
			return
		}
		go client.WritePump()
		go client.ReadPump()
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestRoomForHackathon(t *testing.T) {
	assert.Equal(t, "hackathon_2024-06", RoomForHackathon("2024-06"))
}

func TestBroadcastToRoomDeliversMessage(t *testing.T) {
	hub := newTestHub(t)
	room := RoomForHackathon("2024-06")
	srv := newHubServer(t, hub, room)
	conn := dial(t, srv)

	require.Eventually(t, func() bool { return hub.RoomSize(room) == 1 }, time.Second, 10*time.Millisecond)

	hub.BroadcastToRoom(room, MessageJoinRequested, map[string]string{"teamId": "t1"})
	hub.BroadcastToRoom(RoomForHackathon("2024-07"), MessageJoinRequested, map[string]string{"teamId": "other"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type    string            `json:"type"`
		RoomID  string            `json:"room_id"`
		Payload map[string]string `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, MessageJoinRequested, msg.Type)
	assert.Equal(t, room, msg.RoomID)
	assert.Equal(t, "t1", msg.Payload["teamId"])
}

func TestClientDisconnectEmptiesRoom(t *testing.T) {
	hub := newTestHub(t)
	room := RoomForHackathon("2024-06")
	srv := newHubServer(t, hub, room)
	conn := dial(t, srv)

	require.Eventually(t, func() bool { return hub.RoomSize(room) == 1 }, time.Second, 10*time.Millisecond)
	conn.Close()
	assert.Eventually(t, func() bool { return hub.RoomSize(room) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestBroadcastToEmptyRoomIsNoop(t *testing.T) {
	hub := newTestHub(t)
	assert.NotPanics(t, func() {
		hub.BroadcastToRoom("hackathon_none", MessageJoinRequested, nil)
	})
}
