package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventmanager/internal/delivery/http/helpers"
	"eventmanager/internal/delivery/http/middleware"
	"eventmanager/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const (
	testEventID    = "6f1c7a52-3f7e-4d7b-9a43-0a4f5b8e2c11"
	testPersonID   = "0b9a3d2e-5c41-4e8f-8d6a-7f2e1c3b4a55"
	testCourtesyID = "c2d4e6f8-1a3b-4c5d-8e7f-9a0b1c2d3e4f"
	testUserID     = "staff-1"
)

// fakeCourtesyService implements domain.CourtesyService for handler tests.
type fakeCourtesyService struct {
	err          error
	courtesy     *domain.Courtesy
	list         []*domain.Courtesy
	stats        *domain.CourtesyStats
	lastGrant    domain.GrantRequest
	lastGrantor  string
	lastCancel   domain.CancelRequest
	lastID       string
	lastScope    domain.CourtesyScope
	lastCanceler string
}

func (f *fakeCourtesyService) Grant(ctx context.Context, req domain.GrantRequest, grantorID string) (*domain.Courtesy, error) {
	f.lastGrant, f.lastGrantor = req, grantorID
	return f.courtesy, f.err
}

func (f *fakeCourtesyService) Cancel(ctx context.Context, id string, req domain.CancelRequest, cancellerID string) (*domain.Courtesy, error) {
	f.lastID, f.lastCancel, f.lastCanceler = id, req, cancellerID
	return f.courtesy, f.err
}

func (f *fakeCourtesyService) FindByEvent(ctx context.Context, eventID string) ([]*domain.Courtesy, error) {
	f.lastID = eventID
	return f.list, f.err
}

func (f *fakeCourtesyService) FindByPerson(ctx context.Context, personID string) ([]*domain.Courtesy, error) {
	f.lastID = personID
	return f.list, f.err
}

func (f *fakeCourtesyService) FindOne(ctx context.Context, id string) (*domain.Courtesy, error) {
	f.lastID = id
	return f.courtesy, f.err
}

func (f *fakeCourtesyService) GrantSpeakerCourtesies(ctx context.Context, eventID string, scope domain.CourtesyScope, grantorID string) ([]*domain.Courtesy, error) {
	f.lastID, f.lastScope, f.lastGrantor = eventID, scope, grantorID
	return f.list, f.err
}

func (f *fakeCourtesyService) GetEventStats(ctx context.Context, eventID string) (*domain.CourtesyStats, error) {
	f.lastID = eventID
	return f.stats, f.err
}

type echoLocalizer struct{}

func (echoLocalizer) Localize(locale, key string, args ...any) string { return key }

// newCourtesyMux mounts the controller the way the router does, with the user already authenticated.
func newCourtesyMux(svc domain.CourtesyService, authenticated bool) http.Handler {
	ctrl := NewCourtesyController(testLogger, svc, echoLocalizer{})
	mux := http.NewServeMux()
	mux.HandleFunc("POST /events/{eventID}/courtesies", ctrl.Grant)
	mux.HandleFunc("POST /events/{eventID}/courtesies/speakers", ctrl.GrantSpeakerCourtesies)
	mux.HandleFunc("GET /events/{eventID}/courtesies", ctrl.ListByEvent)
	mux.HandleFunc("GET /events/{eventID}/courtesies/stats", ctrl.Stats)
	mux.HandleFunc("GET /persons/{personID}/courtesies", ctrl.ListByPerson)
	mux.HandleFunc("GET /courtesies/{courtesyID}", ctrl.Get)
	mux.HandleFunc("POST /courtesies/{courtesyID}/cancel", ctrl.Cancel)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if authenticated {
			r = r.WithContext(middleware.SetUserID(r.Context(), testUserID))
		}
		mux.ServeHTTP(w, r)
	})
}

func do(t *testing.T, h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) *helpers.APIError {
	t.Helper()
	var env helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	require.NotNil(t, env.Error)
	return env.Error
}

func TestCourtesyController_Grant(t *testing.T) {
	granted := &domain.Courtesy{ID: testCourtesyID, EventID: testEventID, Status: domain.CourtesyStatusActive}

	tests := []struct {
		name       string
		body       string
		svc        *fakeCourtesyService
		path       string
		auth       bool
		wantStatus int
		wantKey    string
	}{
		{
			name:       "created",
			body:       `{"person_id":"` + testPersonID + `","type":"VIP","scope":"FULL_EVENT"}`,
			svc:        &fakeCourtesyService{courtesy: granted},
			auth:       true,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "malformed event id",
			path:       "/events/not-a-uuid/courtesies",
			body:       `{"type":"VIP","scope":"FULL_EVENT"}`,
			svc:        &fakeCourtesyService{},
			auth:       true,
			wantStatus: http.StatusBadRequest,
			wantKey:    domain.KeyBadRequest,
		},
		{
			name:       "malformed block id",
			body:       `{"person_id":"` + testPersonID + `","type":"VIP","scope":"SPECIFIC_BLOCKS","specific_block_ids":["b1"]}`,
			svc:        &fakeCourtesyService{},
			auth:       true,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown field",
			body:       `{"person_id":"` + testPersonID + `","type":"VIP","scope":"FULL_EVENT","price":10}`,
			svc:        &fakeCourtesyService{},
			auth:       true,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unauthenticated",
			body:       `{"person_id":"` + testPersonID + `","type":"VIP","scope":"FULL_EVENT"}`,
			svc:        &fakeCourtesyService{},
			wantStatus: http.StatusUnauthorized,
			wantKey:    domain.KeyUnauthorized,
		},
		{
			name:       "already granted",
			body:       `{"person_id":"` + testPersonID + `","type":"VIP","scope":"FULL_EVENT"}`,
			svc:        &fakeCourtesyService{err: domain.Conflict(domain.KeyAlreadyGranted, "dup")},
			auth:       true,
			wantStatus: http.StatusConflict,
			wantKey:    domain.KeyAlreadyGranted,
		},
		{
			name:       "event not found",
			body:       `{"person_id":"` + testPersonID + `","type":"VIP","scope":"FULL_EVENT"}`,
			svc:        &fakeCourtesyService{err: domain.NotFound(domain.KeyEventNotFound, "event")},
			auth:       true,
			wantStatus: http.StatusNotFound,
			wantKey:    domain.KeyEventNotFound,
		},
		{
			name:       "invalid scope",
			body:       `{"person_id":"` + testPersonID + `","type":"VIP","scope":"ALL"}`,
			svc:        &fakeCourtesyService{err: domain.Invalid(domain.KeyInvalidScope, "scope")},
			auth:       true,
			wantStatus: http.StatusBadRequest,
			wantKey:    domain.KeyInvalidScope,
		},
		{
			name:       "infrastructure failure",
			body:       `{"person_id":"` + testPersonID + `","type":"VIP","scope":"FULL_EVENT"}`,
			svc:        &fakeCourtesyService{err: errors.New("db down")},
			auth:       true,
			wantStatus: http.StatusInternalServerError,
			wantKey:    domain.KeyInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.path
			if path == "" {
				path = "/events/" + testEventID + "/courtesies"
			}
			rr := do(t, newCourtesyMux(tt.svc, tt.auth), http.MethodPost, path, tt.body)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusCreated {
				var env CourtesySuccessResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
				require.NotNil(t, env.Data)
				assert.Equal(t, testCourtesyID, env.Data.ID)
				assert.Equal(t, testEventID, tt.svc.lastGrant.EventID)
				assert.Equal(t, testUserID, tt.svc.lastGrantor)
				return
			}
			if tt.wantKey != "" {
				assert.Equal(t, tt.wantKey, decodeError(t, rr).Key)
			}
		})
	}
}

func TestCourtesyController_GrantLocale(t *testing.T) {
	svc := &fakeCourtesyService{courtesy: &domain.Courtesy{ID: testCourtesyID}}
	h := newCourtesyMux(svc, true)
	path := "/events/" + testEventID + "/courtesies"
	body := `{"person_data":{"first_name":"Ada","last_name":"Lovelace","email":"ada@example.com"},"type":"PRESS","scope":"FULL_EVENT"}`

	rr := do(t, h, http.MethodPost, path, body, "Accept-Language", "es-AR,es;q=0.9")
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "es", svc.lastGrant.Locale)
	require.NotNil(t, svc.lastGrant.PersonData)
	assert.Equal(t, "ada@example.com", svc.lastGrant.PersonData.Email)

	body = `{"person_id":"` + testPersonID + `","type":"PRESS","scope":"FULL_EVENT","locale":"en"}`
	rr = do(t, h, http.MethodPost, path, body, "Accept-Language", "es")
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "en", svc.lastGrant.Locale)
}

func TestCourtesyController_GrantSpeakerCourtesies(t *testing.T) {
	path := "/events/" + testEventID + "/courtesies/speakers"

	t.Run("returns created count", func(t *testing.T) {
		svc := &fakeCourtesyService{list: []*domain.Courtesy{{ID: "a"}, {ID: "b"}}}
		rr := do(t, newCourtesyMux(svc, true), http.MethodPost, path, `{"scope":"ASSIGNED_SESSIONS_ONLY"}`)

		require.Equal(t, http.StatusCreated, rr.Code)
		var env GrantSpeakerCourtesiesSuccessResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
		assert.Equal(t, 2, env.Data.Created)
		assert.Len(t, env.Data.Courtesies, 2)
		assert.Equal(t, domain.CourtesyScopeAssignedSession, svc.lastScope)
		assert.Equal(t, testUserID, svc.lastGrantor)
	})

	t.Run("nothing created", func(t *testing.T) {
		svc := &fakeCourtesyService{}
		rr := do(t, newCourtesyMux(svc, true), http.MethodPost, path, `{"scope":"FULL_EVENT"}`)

		require.Equal(t, http.StatusCreated, rr.Code)
		var env GrantSpeakerCourtesiesSuccessResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
		assert.Equal(t, 0, env.Data.Created)
		assert.NotNil(t, env.Data.Courtesies)
	})

	t.Run("no speakers", func(t *testing.T) {
		svc := &fakeCourtesyService{err: domain.NotFound(domain.KeyNoSpeakers, "none")}
		rr := do(t, newCourtesyMux(svc, true), http.MethodPost, path, `{"scope":"FULL_EVENT"}`)

		require.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, domain.KeyNoSpeakers, decodeError(t, rr).Key)
	})
}

func TestCourtesyController_Lists(t *testing.T) {
	list := make([]*domain.Courtesy, 5)
	for i := range list {
		list[i] = &domain.Courtesy{ID: string(rune('a' + i))}
	}

	tests := []struct {
		name      string
		path      string
		wantItems int
		wantTotal int
		wantID    string
	}{
		{"by event default page", "/events/" + testEventID + "/courtesies", 5, 5, testEventID},
		{"by event second page", "/events/" + testEventID + "/courtesies?page=2&page_size=2", 2, 5, testEventID},
		{"by person", "/persons/" + testPersonID + "/courtesies?page_size=3", 3, 5, testPersonID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeCourtesyService{list: list}
			rr := do(t, newCourtesyMux(svc, true), http.MethodGet, tt.path, "")

			require.Equal(t, http.StatusOK, rr.Code)
			var env CourtesyListSuccessResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
			assert.Len(t, env.Data.Items, tt.wantItems)
			assert.Equal(t, tt.wantTotal, env.Data.Pagination.Total)
			assert.Equal(t, tt.wantID, svc.lastID)
		})
	}

	t.Run("malformed person id", func(t *testing.T) {
		rr := do(t, newCourtesyMux(&fakeCourtesyService{}, true), http.MethodGet, "/persons/p-1/courtesies", "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestCourtesyController_Get(t *testing.T) {
	path := "/courtesies/" + testCourtesyID

	svc := &fakeCourtesyService{courtesy: &domain.Courtesy{ID: testCourtesyID, Registration: &domain.Registration{ID: "r-1"}}}
	rr := do(t, newCourtesyMux(svc, true), http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var env CourtesySuccessResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	require.NotNil(t, env.Data.Registration)
	assert.Equal(t, "r-1", env.Data.Registration.ID)

	svc = &fakeCourtesyService{err: domain.NotFound(domain.KeyCourtesyNotFound, "missing")}
	rr = do(t, newCourtesyMux(svc, true), http.MethodGet, path, "")
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, domain.KeyCourtesyNotFound, decodeError(t, rr).Key)
}

func TestCourtesyController_Cancel(t *testing.T) {
	path := "/courtesies/" + testCourtesyID + "/cancel"

	tests := []struct {
		name       string
		body       string
		svc        *fakeCourtesyService
		auth       bool
		wantStatus int
		wantKey    string
	}{
		{
			name:       "cancelled",
			body:       `{"reason":"duplicate grant"}`,
			svc:        &fakeCourtesyService{courtesy: &domain.Courtesy{ID: testCourtesyID, Status: domain.CourtesyStatusCancelled}},
			auth:       true,
			wantStatus: http.StatusOK,
		},
		{
			name:       "not active",
			body:       `{"reason":"again"}`,
			svc:        &fakeCourtesyService{err: domain.Conflict(domain.KeyNotActive, "cancelled")},
			auth:       true,
			wantStatus: http.StatusConflict,
			wantKey:    domain.KeyNotActive,
		},
		{
			name:       "reason required",
			body:       `{"reason":""}`,
			svc:        &fakeCourtesyService{err: domain.Invalid(domain.KeyCancelReasonRequired, "reason")},
			auth:       true,
			wantStatus: http.StatusBadRequest,
			wantKey:    domain.KeyCancelReasonRequired,
		},
		{
			name:       "unauthenticated",
			body:       `{"reason":"x"}`,
			svc:        &fakeCourtesyService{},
			wantStatus: http.StatusUnauthorized,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, newCourtesyMux(tt.svc, tt.auth), http.MethodPost, path, tt.body)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, testCourtesyID, tt.svc.lastID)
				assert.Equal(t, testUserID, tt.svc.lastCanceler)
				assert.Equal(t, "duplicate grant", tt.svc.lastCancel.Reason)
			}
			if tt.wantKey != "" {
				assert.Equal(t, tt.wantKey, decodeError(t, rr).Key)
			}
		})
	}
}

func TestCourtesyController_Stats(t *testing.T) {
	stats := &domain.CourtesyStats{
		EventID: testEventID, Total: 3, Active: 2, Cancelled: 1,
		ByType: map[domain.CourtesyType]int{domain.CourtesyTypeVIP: 3},
	}
	svc := &fakeCourtesyService{stats: stats}
	rr := do(t, newCourtesyMux(svc, true), http.MethodGet, "/events/"+testEventID+"/courtesies/stats", "")

	require.Equal(t, http.StatusOK, rr.Code)
	var env CourtesyStatsSuccessResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	assert.Equal(t, 3, env.Data.Total)
	assert.Equal(t, 3, env.Data.ByType[domain.CourtesyTypeVIP])
}
