package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/Dosada05/hackathon-teams/db"
	"github.com/Dosada05/hackathon-teams/middleware"
	"github.com/Dosada05/hackathon-teams/models"
	"github.com/Dosada05/hackathon-teams/repositories"
	"github.com/Dosada05/hackathon-teams/services"
	"github.com/Dosada05/hackathon-teams/storage"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHackathon = "2024-06"

type broadcast struct {
	room    string
	msgType string
	payload interface{}
}

type recordingBroadcaster struct {
	mu   sync.Mutex
	sent []broadcast
}

func (b *recordingBroadcaster) BroadcastToRoom(roomID string, msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, broadcast{roomID, msgType, payload})
}

type memoryUploader struct {
	objects map[string][]byte
}

func (u *memoryUploader) Upload(_ context.Context, key string, _ string, reader io.Reader) (*storage.UploadResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	u.objects[key] = data
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *memoryUploader) Delete(_ context.Context, key string) error {
	delete(u.objects, key)
	return nil
}

func (u *memoryUploader) GetPublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

// insertFailingStore отклоняет все вставки.
type insertFailingStore struct {
	*db.MemoryStore
}

func (s insertFailingStore) Insert(context.Context, string, db.Fields) (string, error) {
	return "", errors.New("permission denied")
}

type fixture struct {
	router      *chi.Mux
	auth        *middleware.Authenticator
	broadcaster *recordingBroadcaster
	teams       repositories.TeamRepository
	users       repositories.UserRepository
}

func newFixture(t *testing.T, store db.DocumentStore, uploader storage.FileUploader) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	teamRepo := repositories.NewTeamRepository(store)
	poolRepo := repositories.NewPoolRepository(store)
	joinRepo := repositories.NewJoinRequestRepository(store)
	userRepo := repositories.NewUserRepository(store)

	rosterService := services.NewRosterService(teamRepo, poolRepo, joinRepo, logger)
	profileService := services.NewProfileService(userRepo, uploader, logger)

	f := &fixture{
		auth:        middleware.NewAuthenticator("test-secret", logger),
		broadcaster: &recordingBroadcaster{},
		teams:       teamRepo,
		users:       userRepo,
	}
	rosterHandler := NewRosterHandler(rosterService, f.broadcaster, middleware.NewMetrics(prometheus.NewRegistry()), logger)
	profileHandler := NewProfileHandler(profileService, logger)
	healthHandler := NewHealthHandler(store, time.Second, logger)

	r := chi.NewRouter()
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/hackathons/current", rosterHandler.GetCurrentHackathon)
	r.Get("/docs/openapi.json", OpenAPI)
	r.Group(func(r chi.Router) {
		r.Use(f.auth.Session)
		r.Get("/roster", rosterHandler.GetRoster)
		r.Get("/profiles/me", profileHandler.GetMyProfile)
		r.Get("/profiles/{userID}", profileHandler.GetProfile)
		r.Post("/pool", rosterHandler.JoinPool)
		r.Post("/teams/{teamID}/join-requests", rosterHandler.RequestJoin)
		r.Put("/profiles/me/photo", profileHandler.UploadPhoto)
	})
	f.router = r
	return f
}

func (f *fixture) do(t *testing.T, req *http.Request, userID string) *httptest.ResponseRecorder {
	t.Helper()
	if userID != "" {
		token, err := f.auth.IssueToken(userID, nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) createTeam(t *testing.T, members ...string) *models.Team {
	t.Helper()
	team := &models.Team{HackathonID: testHackathon, MemberIDs: members, CreatorID: members[0]}
	require.NoError(t, f.teams.Create(context.Background(), team))
	return team
}

type rosterBody struct {
	Roster struct {
		HackathonID string `json:"hackathon_id"`
		Open        []struct {
			ID             string `json:"id"`
			OpenSlots      int    `json:"open_slots"`
			CanRequestJoin bool   `json:"can_request_join"`
		} `json:"open"`
		Full []struct {
			ID string `json:"id"`
		} `json:"full"`
		IsInPool bool `json:"is_in_pool"`
	} `json:"roster"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func TestGetRoster(t *testing.T) {
	f := newFixture(t, db.NewMemoryStore(), nil)
	open := f.createTeam(t, "a", "b")
	full := f.createTeam(t, "c", "d", "e")

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/roster?hackathonId="+testHackathon, nil), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body rosterBody
	decode(t, rec, &body)
	assert.Equal(t, testHackathon, body.Roster.HackathonID)
	require.Len(t, body.Roster.Open, 1)
	assert.Equal(t, open.ID, body.Roster.Open[0].ID)
	assert.Equal(t, 1, body.Roster.Open[0].OpenSlots)
	assert.False(t, body.Roster.Open[0].CanRequestJoin)
	require.Len(t, body.Roster.Full, 1)
	assert.Equal(t, full.ID, body.Roster.Full[0].ID)
}

func TestGetRosterMalformedHackathonID(t *testing.T) {
	f := newFixture(t, db.NewMemoryStore(), nil)
	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/roster?hackathonId=June", nil), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRosterStoreUnavailableServesEmptyRoster(t *testing.T) {
	f := newFixture(t, db.NewUnavailableStore(errors.New("no project id")), nil)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/roster?hackathonId="+testHackathon, nil), "viewer")
	require.Equal(t, http.StatusOK, rec.Code)

	var body rosterBody
	decode(t, rec, &body)
	assert.Empty(t, body.Roster.Open)
	assert.Empty(t, body.Roster.Full)
	assert.False(t, body.Roster.IsInPool)
}

func TestJoinPoolThenRequestJoin(t *testing.T) {
	store := db.NewMemoryStore()
	f := newFixture(t, store, nil)
	team := f.createTeam(t, "a", "b")

	rec := f.do(t, httptest.NewRequest(http.MethodPost, "/pool?hackathonId="+testHackathon, nil), "viewer")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var poolBody rosterBody
	decode(t, rec, &poolBody)
	assert.True(t, poolBody.Roster.IsInPool)
	require.Len(t, poolBody.Roster.Open, 1)
	assert.True(t, poolBody.Roster.Open[0].CanRequestJoin)

	// повторное вступление не дублирует запись
	rec = f.do(t, httptest.NewRequest(http.MethodPost, "/pool?hackathonId="+testHackathon, nil), "viewer")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, store.Count(models.CollectionPool))

	rec = f.do(t, httptest.NewRequest(http.MethodPost, "/teams/"+team.ID+"/join-requests?hackathonId="+testHackathon, nil), "viewer")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body struct {
		JoinRequest models.JoinRequest `json:"join_request"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "viewer", body.JoinRequest.UserID)
	assert.Equal(t, team.ID, body.JoinRequest.TeamID)
	assert.Equal(t, models.JoinRequestPending, body.JoinRequest.Status)
	assert.Equal(t, 1, store.Count(models.CollectionJoinRequests))

	require.Len(t, f.broadcaster.sent, 1)
	assert.Equal(t, "hackathon_"+testHackathon, f.broadcaster.sent[0].room)
	assert.Equal(t, "JOIN_REQUESTED", f.broadcaster.sent[0].msgType)
}

func TestRequestJoinRequiresSession(t *testing.T) {
	f := newFixture(t, db.NewMemoryStore(), nil)
	rec := f.do(t, httptest.NewRequest(http.MethodPost, "/teams/t1/join-requests", nil), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestJoinWriteFailure(t *testing.T) {
	f := newFixture(t, insertFailingStore{db.NewMemoryStore()}, nil)

	rec := f.do(t, httptest.NewRequest(http.MethodPost, "/teams/t1/join-requests?hackathonId="+testHackathon, nil), "viewer")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	decode(t, rec, &body)
	assert.Equal(t, "failed to send join request", body["error"])
	assert.Empty(t, f.broadcaster.sent)
}

func TestGetCurrentHackathon(t *testing.T) {
	f := newFixture(t, db.NewMemoryStore(), nil)
	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/hackathons/current", nil), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		HackathonID string    `json:"hackathon_id"`
		Cutoff      time.Time `json:"cutoff"`
	}
	decode(t, rec, &body)
	assert.Regexp(t, `^\d{4}-\d{2}$`, body.HackathonID)
	assert.Equal(t, body.HackathonID, body.Cutoff.Format("2006-01"))
}

func TestGetProfile(t *testing.T) {
	f := newFixture(t, db.NewMemoryStore(), nil)
	ctx := context.Background()
	require.NoError(t, f.users.Upsert(ctx, &models.UserProfile{ID: "public", DisplayName: "Ada", Visible: true}))
	require.NoError(t, f.users.Upsert(ctx, &models.UserProfile{ID: "private", DisplayName: "Bob"}))

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/profiles/public", nil), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"display_name": "Ada"`)

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/profiles/private", nil), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/profiles/private", nil), "private")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/profiles/missing", nil), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func photoRequest(t *testing.T, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="photo"; filename="me.png"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, "/profiles/me/photo", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadPhoto(t *testing.T) {
	uploader := &memoryUploader{objects: map[string][]byte{}}
	f := newFixture(t, db.NewMemoryStore(), uploader)

	rec := f.do(t, photoRequest(t, "image/png", []byte("png-bytes")), "u1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "https://cdn.example.com/avatars/u1/")
	assert.Len(t, uploader.objects, 1)

	rec = f.do(t, photoRequest(t, "image/gif", []byte("gif")), "u1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadPhotoWithoutStorage(t *testing.T) {
	f := newFixture(t, db.NewMemoryStore(), nil)
	rec := f.do(t, photoRequest(t, "image/png", []byte("png")), "u1")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthz(t *testing.T) {
	f := newFixture(t, db.NewUnavailableStore(errors.New("down")), nil)
	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	decode(t, rec, &body)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "unavailable", body["store"])
}

func TestOpenAPIDocumentIsValidJSON(t *testing.T) {
	f := newFixture(t, db.NewMemoryStore(), nil)
	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/docs/openapi.json", nil), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var doc map[string]interface{}
	decode(t, rec, &doc)
	assert.Contains(t, doc["paths"], "/roster")
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://teams.example.com"})

	req := httptest.NewRequest(http.MethodGet, "/ws/hackathons/2024-06", nil)
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://teams.example.com")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, check(req))

	assert.True(t, originChecker(nil)(req))
	assert.True(t, originChecker([]string{"*"})(req))
}

func TestGetMyProfile(t *testing.T) {
	f := newFixture(t, db.NewMemoryStore(), nil)
	require.NoError(t, f.users.Upsert(context.Background(), &models.UserProfile{ID: "u1", DisplayName: "Hidden"}))
	require.NoError(t, f.users.Upsert(context.Background(), &models.UserProfile{ID: "me", DisplayName: "Literal", Visible: true}))

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/profiles/me", nil), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/profiles/me", nil), "u1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id": "u1"`)
	assert.NotContains(t, rec.Body.String(), "Literal")
}

func TestRequestJoinBroadcastsToQueryHackathonRoom(t *testing.T) {
	f := newFixture(t, db.NewMemoryStore(), nil)
	team := f.createTeam(t, "a", "b")

	rec := f.do(t, httptest.NewRequest(http.MethodPost, "/teams/"+team.ID+"/join-requests?hackathonId=2024-07", nil), "viewer")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	require.Len(t, f.broadcaster.sent, 1)
	assert.Equal(t, "hackathon_2024-07", f.broadcaster.sent[0].room)

	var body rosterBody
	decode(t, rec, &body)
	assert.Equal(t, "2024-07", body.Roster.HackathonID)
}

func TestMapServiceErrorToHTTP(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"profile not found", services.ErrProfileNotFound, http.StatusNotFound, "the requested resource could not be found"},
		{"validation", fmt.Errorf("%w: user id is required", services.ErrValidationFailed), http.StatusBadRequest, "validation failed: user id is required"},
		{"photo type", services.ErrUnsupportedPhotoType, http.StatusBadRequest, services.ErrUnsupportedPhotoType.Error()},
		{"photo size", services.ErrPhotoTooLarge, http.StatusRequestEntityTooLarge, services.ErrPhotoTooLarge.Error()},
		{"uploads disabled", services.ErrUploadsDisabled, http.StatusServiceUnavailable, services.ErrUploadsDisabled.Error()},
		{"join request write", fmt.Errorf("%w: %w", services.ErrJoinRequestFailed, errors.New("deadline exceeded")), http.StatusInternalServerError, "failed to send join request"},
		{"pool write", fmt.Errorf("%w: boom", services.ErrJoinPoolFailed), http.StatusInternalServerError, "failed to join the pool"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "the server encountered a problem and could not process your request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mapServiceErrorToHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil), logger, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]string
			decode(t, rec, &body)
			assert.Equal(t, tt.wantError, body["error"])
		})
	}
}
