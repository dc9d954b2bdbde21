package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planmeet/internal/adapters/auth"
	"planmeet/internal/adapters/email"
	"planmeet/internal/adapters/ical"
	"planmeet/internal/delivery/http/controllers"
	"planmeet/internal/domain"
	"planmeet/internal/repository/memory"
	"planmeet/internal/services"
)

type rejectAllVerifier struct{}

func (rejectAllVerifier) Verify(string) (int64, error) { return 0, errors.New("bad token") }

// Protected routes must 401 before touching any service; the controllers here
// carry nil services, so reaching one would panic.
func TestRouterRequiresAuth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mux := NewRouter(
		logger,
		rejectAllVerifier{},
		prometheus.NewRegistry(),
		controllers.NewAuthController(logger, nil, time.Hour, false),
		controllers.NewEventController(logger, nil),
		controllers.NewParticipantController(logger, nil),
	)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/events"},
		{http.MethodGet, "/api/events"},
		{http.MethodGet, "/api/events/1"},
		{http.MethodGet, "/api/events/invite/AB12CD"},
		{http.MethodPost, "/api/events/1/participants"},
		{http.MethodGet, "/api/events/1/participants"},
		{http.MethodPut, "/api/events/1/availability"},
		{http.MethodGet, "/api/events/1/calendar.ics"},
		{http.MethodPost, "/api/events/1/invitations"},
		{http.MethodGet, "/api/events/1/invitations"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			req := httptest.NewRequest(rt.method, rt.path, nil)
			req.Header.Set("Authorization", "Bearer whatever")
			rr := httptest.NewRecorder()
			mux.ServeHTTP(rr, req)
			require.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mux := NewRouter(
		logger,
		rejectAllVerifier{},
		prometheus.NewRegistry(),
		controllers.NewAuthController(logger, nil, time.Hour, false),
		controllers.NewEventController(logger, nil),
		controllers.NewParticipantController(logger, nil),
	)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
}

// newTestRouter assembles the router over the memory store and the real
// adapters, as serve does with STORAGE_DRIVER=memory.
func newTestRouter(t *testing.T) *http.ServeMux {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()

	hasher := auth.NewBcryptHasher(4) // bcrypt.MinCost, keeps the test fast
	issuer, verifier := auth.NewJWTCodec("test-secret")
	mailer, err := email.NewMailer(email.MailerConfig{Provider: "noop"})
	require.NoError(t, err)

	emailSvc := services.NewEmailService(mailer, email.NewTemplateRenderer())
	authSvc := services.NewAuthService(store.Users(), hasher, issuer, time.Hour)
	eventSvc := services.NewEventService(store.Events(), store.Users(), store.Invitations(),
		emailSvc, "http://localhost:8080", 5*time.Second)
	partSvc := services.NewParticipantService(store.Events(), store.Participants(),
		store.Users(), ical.NewExporter())

	return NewRouter(
		logger,
		verifier,
		prometheus.NewRegistry(),
		controllers.NewAuthController(logger, authSvc, time.Hour, false),
		controllers.NewEventController(logger, eventSvc),
		controllers.NewParticipantController(logger, partSvc),
	)
}

func doJSON(t *testing.T, mux *http.ServeMux, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

// registerUser signs a user up and logs them in, returning the bearer token
// and the assigned user id.
func registerUser(t *testing.T, mux *http.ServeMux, username string) (string, int64) {
	t.Helper()
	creds := map[string]string{"username": username, "password": "secret1"}

	rr := doJSON(t, mux, http.MethodPost, "/api/auth/signup", "", creds)
	require.Equal(t, http.StatusCreated, rr.Code, "signup %s: %s", username, rr.Body.String())

	rr = doJSON(t, mux, http.MethodPost, "/api/auth/login", "", creds)
	require.Equal(t, http.StatusOK, rr.Code, "login %s: %s", username, rr.Body.String())

	var body struct {
		Data struct {
			Token string       `json:"token"`
			User  *domain.User `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	require.NotEmpty(t, body.Data.Token)
	require.NotNil(t, body.Data.User)
	return body.Data.Token, body.Data.User.ID
}

// Walks the whole flow through the assembled mux: a planner creates an event,
// a second user resolves the invite code, joins, and submits availability.
func TestRouterSchedulingFlow(t *testing.T) {
	mux := newTestRouter(t)

	alice, _ := registerUser(t, mux, "alice")
	bob, bobID := registerUser(t, mux, "bob")
	carol, _ := registerUser(t, mux, "carol")

	// Alice creates the event.
	rr := doJSON(t, mux, http.MethodPost, "/api/events", alice, map[string]string{
		"title":     "Rehearsal 1",
		"dateRange": `{"start":"2024-06-01T00:00:00.000Z","end":"2024-06-08T00:00:00.000Z"}`,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var created struct {
		Data *domain.Event `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
	require.NotNil(t, created.Data)
	require.Len(t, created.Data.InviteCode, 6)
	eventPath := fmt.Sprintf("/api/events/%d", created.Data.ID)

	// Bob resolves the invite code to Alice's event.
	rr = doJSON(t, mux, http.MethodGet, "/api/events/invite/"+created.Data.InviteCode, bob, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var looked struct {
		Data *domain.Event `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&looked))
	require.Equal(t, created.Data.ID, looked.Data.ID)

	// Bob joins with no availability yet.
	rr = doJSON(t, mux, http.MethodPost, eventPath+"/participants", bob,
		map[string]string{"availability": "[]"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var joined struct {
		Data *domain.Participant `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&joined))
	assert.Equal(t, bobID, joined.Data.UserID)

	// Bob submits his available day; the listing echoes the exact string.
	const avail = `["2024-06-01T00:00:00.000Z"]`
	rr = doJSON(t, mux, http.MethodPut, eventPath+"/availability", bob,
		map[string]string{"availability": avail})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	listParticipants := func() []*domain.Participant {
		rr := doJSON(t, mux, http.MethodGet, eventPath+"/participants", alice, nil)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		var body struct {
			Data []*domain.Participant `json:"data"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		return body.Data
	}

	participants := listParticipants()
	require.Len(t, participants, 1)
	assert.Equal(t, bobID, participants[0].UserID)
	assert.Equal(t, avail, participants[0].Availability)

	// Carol never joined: her update succeeds but changes nothing.
	rr = doJSON(t, mux, http.MethodPut, eventPath+"/availability", carol,
		map[string]string{"availability": "[]"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	participants = listParticipants()
	require.Len(t, participants, 1)
	assert.Equal(t, avail, participants[0].Availability)

	// The planner can pull the calendar feed.
	rr = doJSON(t, mux, http.MethodGet, eventPath+"/calendar.ics", alice, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "BEGIN:VCALENDAR")

	// Bad ids.
	rr = doJSON(t, mux, http.MethodGet, "/api/events/999999", alice, nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
	rr = doJSON(t, mux, http.MethodGet, "/api/events/abc", alice, nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}
