package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/volunteerhub/volunteer-signup/internal/auth"
	"github.com/volunteerhub/volunteer-signup/internal/config"
	"github.com/volunteerhub/volunteer-signup/internal/dateutil"
	"github.com/volunteerhub/volunteer-signup/internal/model"
	"github.com/volunteerhub/volunteer-signup/internal/service"
	"github.com/volunteerhub/volunteer-signup/internal/service/ports/mocks"
)

type testEnv struct {
	router  chi.Router
	events  *mocks.EventRepo
	signups *mocks.SignupRepo
	queries *mocks.InquiryRepo
	teams   *mocks.TeamRepo
	auth    *auth.Service
}

// newTestEnv wires real services over mock repositories behind the same
// routes the server registers.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		events:  &mocks.EventRepo{},
		signups: &mocks.SignupRepo{},
		queries: &mocks.InquiryRepo{},
		teams:   &mocks.TeamRepo{},
	}
	env.auth = auth.NewService(config.AuthConfig{
		AdminEmail:    "admin@volunteer-app.com",
		AdminPassword: "admin-secret",
		Accounts:      map[string]string{"user@volunteer-app.com": "user-secret"},
		JWTSecret:     "test-signing-key",
		SessionTTL:    time.Hour,
	})

	notifier := &mocks.Notifier{}
	catalog := service.NewCatalogService(env.events, notifier)
	admission := service.NewAdmissionService(env.events, env.signups, notifier)
	inquiries := service.NewInquiryService(env.queries, notifier)
	roster := service.NewRosterService(env.teams, env.signups, notifier)
	h := New(catalog, admission, inquiries, roster, env.auth)

	r := chi.NewRouter()
	r.Get("/health", HealthCheck)
	r.Post("/auth/signin", h.SignIn)
	r.Post("/auth/signout", h.SignOut)
	r.Get("/events", h.ListEvents)
	r.Get("/events/{id}", h.GetEvent)
	r.Post("/events/{id}/signups", h.SubmitSignup)
	r.Get("/events/{id}/signups", h.ListEventSignups)
	r.Get("/signups", h.MySignups)
	r.Get("/occupancy", h.Occupancy)
	r.Post("/inquiries", h.SubmitInquiry)
	r.Get("/inquiries", h.ListInquiries)
	r.Get("/teams", h.ListTeams)
	r.Get("/teams/{id}", h.GetTeam)
	r.Group(func(r chi.Router) {
		r.Use(env.auth.RequireAdmin)
		r.Post("/events", h.CreateEvent)
		r.Put("/events/{id}", h.UpdateEvent)
		r.Delete("/events/{id}", h.DeleteEvent)
		r.Delete("/signups/{id}", h.RemoveSignup)
		r.Post("/inquiries/{id}/answer", h.AnswerInquiry)
		r.Post("/teams", h.CreateTeam)
		r.Post("/teams/{id}/members", h.AddTeamMember)
		r.Delete("/teams/{id}/members/{memberID}", h.RemoveTeamMember)
		r.Post("/teams/{id}/members/{memberID}/move", h.MoveTeamMember)
		r.Put("/teams/{id}/area", h.UpdateTeamArea)
		r.Delete("/teams/{id}", h.DeleteTeam)
		r.Get("/teams/candidates", h.ListTeamCandidates)
	})

	env.router = r
	return env
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	token, _, err := e.auth.SignIn("admin@volunteer-app.com", "admin-secret")
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func testDate(t *testing.T, s string) dateutil.CalendarDate {
	t.Helper()
	d, err := dateutil.Normalize(s)
	require.NoError(t, err)
	return d
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestSignInEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/signin", "", map[string]string{
		"email": "admin@volunteer-app.com", "password": "admin-secret",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "admin", resp.Role)
}

func TestSignInEndpoint_BadCredentials(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/signin", "", map[string]string{
		"email": "admin@volunteer-app.com", "password": "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListEvents_EmptyCatalogIsJSONArray(t *testing.T) {
	env := newTestEnv(t)
	env.events.On("List", mock.Anything).Return(nil, nil)

	rec := env.do(t, http.MethodGet, "/events", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGetEvent_NotFound(t *testing.T) {
	env := newTestEnv(t)
	env.events.On("GetByID", mock.Anything, "missing").Return(nil, model.ErrNotFound)

	rec := env.do(t, http.MethodGet, "/events/missing", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateEvent_RequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	userToken, _, err := env.auth.SignIn("user@volunteer-app.com", "user-secret")
	require.NoError(t, err)

	body := map[string]any{"title": "호별 방문", "date": "2025-03-01", "type": "houseVisit", "capacity": 10}

	rec := env.do(t, http.MethodPost, "/events", "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/events", userToken, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateEvent_AsAdmin(t *testing.T) {
	env := newTestEnv(t)
	env.events.On("Create", mock.Anything, mock.MatchedBy(func(e *model.Event) bool {
		return e.Title == "호별 방문" && e.Capacity == 10 && e.Occupancy == 0
	})).Return(nil)

	rec := env.do(t, http.MethodPost, "/events", env.adminToken(t), map[string]any{
		"title": "호별 방문", "date": "2025-03-01", "type": "houseVisit", "capacity": 10,
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	env.events.AssertExpectations(t)
}

func TestCreateEvent_UnknownFieldRejected(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/events", env.adminToken(t), map[string]any{
		"title": "봉사", "date": "2025-03-01", "type": "various", "capacity": 5,
		"occupancy": 99,
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitSignup_FullEventConflict(t *testing.T) {
	env := newTestEnv(t)
	env.events.On("GetByID", mock.Anything, "ev1").
		Return(&model.Event{ID: "ev1", Date: testDate(t, "2025-03-01"), Capacity: 2, Occupancy: 1}, nil)
	env.signups.On("Admit", mock.Anything, "ev1", "김철수", model.VehicleNo).
		Return(nil, model.ErrEventClosed)

	rec := env.do(t, http.MethodPost, "/events/ev1/signups", "", map[string]string{
		"volunteer_name": "김철수",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "event is fully booked", resp.Error)
}

func TestSubmitSignup_Accepted(t *testing.T) {
	env := newTestEnv(t)
	env.events.On("GetByID", mock.Anything, "ev1").
		Return(&model.Event{ID: "ev1", Date: testDate(t, "2025-03-01"), Capacity: 2}, nil)
	env.signups.On("Admit", mock.Anything, "ev1", "김철수", model.VehicleYes).
		Return(&model.Signup{ID: "s1", EventID: "ev1", VolunteerName: "김철수"}, nil)

	rec := env.do(t, http.MethodPost, "/events/ev1/signups", "", map[string]string{
		"volunteer_name": "김철수", "vehicle_support": "yes",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	var signup model.Signup
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &signup))
	assert.Equal(t, "s1", signup.ID)
}

func TestMySignups_NameRequired(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/signups", "", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRemoveSignup_AdminOnly(t *testing.T) {
	env := newTestEnv(t)
	env.signups.On("Remove", mock.Anything, "s1").Return(nil)

	rec := env.do(t, http.MethodDelete, "/signups/s1", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodDelete, "/signups/s1", env.adminToken(t), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAnswerInquiry_UsesSessionIdentity(t *testing.T) {
	env := newTestEnv(t)
	env.queries.On("Answer", mock.Anything, "q1", "가능합니다", "admin@volunteer-app.com").Return(nil)

	rec := env.do(t, http.MethodPost, "/inquiries/q1/answer", env.adminToken(t), map[string]string{
		"answer": "가능합니다",
	})

	assert.Equal(t, http.StatusNoContent, rec.Code)
	env.queries.AssertExpectations(t)
}

func TestMoveTeamMember(t *testing.T) {
	env := newTestEnv(t)
	env.teams.On("MoveMember", mock.Anything, "teamA", "teamB", "m1").Return(nil)

	rec := env.do(t, http.MethodPost, "/teams/teamA/members/m1/move", env.adminToken(t), map[string]string{
		"to_team_id": "teamB",
	})

	assert.Equal(t, http.StatusNoContent, rec.Code)
	env.teams.AssertExpectations(t)
}

func TestListTeamCandidates(t *testing.T) {
	env := newTestEnv(t)
	env.signups.On("ListByEventType", mock.Anything, model.TypeHouseVisit).Return([]model.Signup{
		{ID: "s1", VolunteerName: "김철수", VehicleSupport: model.VehicleYes},
	}, nil)

	rec := env.do(t, http.MethodGet, "/teams/candidates?type=houseVisit", env.adminToken(t), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var candidates []model.TeamMember
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &candidates))
	require.Len(t, candidates, 1)
	assert.Equal(t, "김철수", candidates[0].Name)
}

func TestListTeamCandidates_BadType(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/teams/candidates?type=picnic", env.adminToken(t), nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOccupancy_Listing(t *testing.T) {
	env := newTestEnv(t)
	env.signups.On("OccupancyByEventDate", mock.Anything).Return(nil, nil)

	rec := env.do(t, http.MethodGet, "/occupancy", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}
