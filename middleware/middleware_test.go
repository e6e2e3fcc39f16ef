package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthenticator() *Authenticator {
	return NewAuthenticator("test-secret", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func sessionEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := GetUserIDFromContext(r.Context())
		if err != nil {
			io.WriteString(w, "anonymous")
			return
		}
		io.WriteString(w, userID)
	})
}

func TestSessionMiddleware(t *testing.T) {
	auth := newTestAuthenticator()
	handler := auth.Session(sessionEcho())

	valid, err := auth.IssueToken("user-42", jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
	require.NoError(t, err)
	expired, err := auth.IssueToken("user-42", jwt.MapClaims{"exp": time.Now().Add(-time.Hour).Unix()})
	require.NoError(t, err)
	foreign, err := NewAuthenticator("other-secret", slog.Default()).IssueToken("user-42", nil)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"no header is anonymous", "", http.StatusOK, "anonymous"},
		{"valid token", "Bearer " + valid, http.StatusOK, "user-42"},
		{"expired token", "Bearer " + expired, http.StatusUnauthorized, ""},
		{"wrong secret", "Bearer " + foreign, http.StatusUnauthorized, ""},
		{"not bearer", "Basic abc", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestRequireSession(t *testing.T) {
	auth := newTestAuthenticator()
	handler := auth.Session(RequireSession(sessionEcho()))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "authentication required")

	token, err := auth.IssueToken("u1", nil)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", rec.Body.String())
}

func TestUserIDFromClaims(t *testing.T) {
	id, err := userIDFromClaims(jwt.MapClaims{"user_id": "abc"})
	require.NoError(t, err)
	assert.Equal(t, "abc", id)

	id, err = userIDFromClaims(jwt.MapClaims{"sub": "firebase-uid"})
	require.NoError(t, err)
	assert.Equal(t, "firebase-uid", id)

	id, err = userIDFromClaims(jwt.MapClaims{"user_id": float64(17)})
	require.NoError(t, err)
	assert.Equal(t, "17", id)

	_, err = userIDFromClaims(jwt.MapClaims{})
	assert.ErrorIs(t, err, ErrMissingUserClaim)

	_, err = userIDFromClaims(jwt.MapClaims{"user_id": 1.5})
	assert.Error(t, err)

	_, err = userIDFromClaims(jwt.MapClaims{"user_id": true})
	assert.Error(t, err)
}

func TestMetricsInstrumentUsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(metrics.Instrument)
	r.Get("/teams/{teamID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/teams/"+id, nil))
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.requestTotal.WithLabelValues("GET", "/teams/{teamID}", "418")))

	metrics.JoinRequest(true)
	metrics.JoinRequest(false)
	metrics.JoinRequest(true)
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.joinRequests.WithLabelValues("created")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.joinRequests.WithLabelValues("failed")))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.JoinRequest(true) })
}

func TestRequestLogger(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/pool", nil))

	assert.Contains(t, buf.String(), `"path":"/pool"`)
	assert.Contains(t, buf.String(), `"status":201`)
}

func TestDeadlineSetsContextDeadline(t *testing.T) {
	var hasDeadline bool
	handler := Deadline(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasDeadline = r.Context().Deadline()
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, hasDeadline)
}
