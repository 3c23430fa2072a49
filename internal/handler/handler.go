// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/volunteerhub/volunteer-signup/internal/auth"
	"github.com/volunteerhub/volunteer-signup/internal/dateutil"
	"github.com/volunteerhub/volunteer-signup/internal/model"
	"github.com/volunteerhub/volunteer-signup/internal/service"
)

// Handler holds all HTTP handlers for the volunteer signup API.
type Handler struct {
	catalog   *service.CatalogService
	admission *service.AdmissionService
	inquiries *service.InquiryService
	roster    *service.RosterService
	auth      *auth.Service
}

// New constructs a Handler.
func New(
	catalog *service.CatalogService,
	admission *service.AdmissionService,
	inquiries *service.InquiryService,
	roster *service.RosterService,
	authSvc *auth.Service,
) *Handler {
	return &Handler{
		catalog:   catalog,
		admission: admission,
		inquiries: inquiries,
		roster:    roster,
		auth:      authSvc,
	}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeServiceError maps domain errors to HTTP statuses. Persistence
// failures become a generic "try again" message; the client re-invokes
// the action, nothing retries automatically.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrValidation), errors.Is(err, dateutil.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrAuthFailure):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, model.ErrEventClosed):
		writeError(w, http.StatusConflict, "event is fully booked")
	default:
		writeError(w, http.StatusInternalServerError, "something went wrong, please try again")
	}
}

// ─── Auth ─────────────────────────────────────────────────────────────────────

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInResponse struct {
	Token   string       `json:"token"`
	Session auth.Session `json:"session"`
	Role    auth.Role    `json:"role"`
}

// SignIn handles POST /auth/signin
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	token, session, err := h.auth.SignIn(req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, signInResponse{Token: token, Session: session, Role: h.auth.Role(session)})
}

// SignOut handles POST /auth/signout. Sessions are stateless tokens, so
// signing out is the client discarding its token.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// ─── Events ───────────────────────────────────────────────────────────────────

// ListEvents handles GET /events
// Returns the catalog in date order with the type-rank tie-break.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.catalog.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// GetEvent handles GET /events/{id}
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// CreateEvent handles POST /events (admin)
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	event, err := h.catalog.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// UpdateEvent handles PUT /events/{id} (admin)
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	event, err := h.catalog.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// DeleteEvent handles DELETE /events/{id} (admin)
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ─── Signups ──────────────────────────────────────────────────────────────────

// SubmitSignup handles POST /events/{id}/signups
// Performs the capacity-guarded admission for the specified event.
func (h *Handler) SubmitSignup(w http.ResponseWriter, r *http.Request) {
	var req model.SubmitSignupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	signup, err := h.admission.Submit(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, signup)
}

// ListEventSignups handles GET /events/{id}/signups
func (h *Handler) ListEventSignups(w http.ResponseWriter, r *http.Request) {
	signups, err := h.admission.ListByEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if signups == nil {
		signups = []model.Signup{}
	}
	writeJSON(w, http.StatusOK, signups)
}

// MySignups handles GET /signups?name=
// The volunteer's own signups, orphans included with a null event block.
func (h *Handler) MySignups(w http.ResponseWriter, r *http.Request) {
	details, err := h.admission.MySignups(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// RemoveSignup handles DELETE /signups/{id} (admin)
func (h *Handler) RemoveSignup(w http.ResponseWriter, r *http.Request) {
	if err := h.admission.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Occupancy handles GET /occupancy
// The full-scan (event, date) aggregation used for display and auditing.
func (h *Handler) Occupancy(w http.ResponseWriter, r *http.Request) {
	counts, err := h.admission.Occupancy(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to aggregate occupancy")
		return
	}
	if counts == nil {
		counts = []model.OccupancyCount{}
	}
	writeJSON(w, http.StatusOK, counts)
}

// ─── Inquiries ────────────────────────────────────────────────────────────────

// SubmitInquiry handles POST /inquiries
func (h *Handler) SubmitInquiry(w http.ResponseWriter, r *http.Request) {
	var req model.SubmitInquiryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	inquiry, err := h.inquiries.Submit(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, inquiry)
}

// ListInquiries handles GET /inquiries
func (h *Handler) ListInquiries(w http.ResponseWriter, r *http.Request) {
	inquiries, err := h.inquiries.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list inquiries")
		return
	}
	if inquiries == nil {
		inquiries = []model.Inquiry{}
	}
	writeJSON(w, http.StatusOK, inquiries)
}

// AnswerInquiry handles POST /inquiries/{id}/answer (admin)
// The answering identity comes from the verified admin session.
func (h *Handler) AnswerInquiry(w http.ResponseWriter, r *http.Request) {
	var req model.AnswerInquiryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if err := h.inquiries.Answer(r.Context(), chi.URLParam(r, "id"), req.Answer, session.Email); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
