package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/volunteerhub/volunteer-signup/internal/model"
)

// Team roster handlers. All of these sit behind the admin middleware
// except ListTeams, which backs the public team-status page.

// ListTeams handles GET /teams
func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.roster.ListTeams(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list teams")
		return
	}
	if teams == nil {
		teams = []model.Team{}
	}
	writeJSON(w, http.StatusOK, teams)
}

// GetTeam handles GET /teams/{id}
func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	team, err := h.roster.GetTeam(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, team)
}

// CreateTeam handles POST /teams (admin)
func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var req model.CreateTeamRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	team, err := h.roster.CreateTeam(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, team)
}

// AddTeamMember handles POST /teams/{id}/members (admin)
func (h *Handler) AddTeamMember(w http.ResponseWriter, r *http.Request) {
	var member model.TeamMember
	if err := decodeJSON(r, &member); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := h.roster.AddMember(r.Context(), chi.URLParam(r, "id"), member); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveTeamMember handles DELETE /teams/{id}/members/{memberID} (admin)
func (h *Handler) RemoveTeamMember(w http.ResponseWriter, r *http.Request) {
	err := h.roster.RemoveMember(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "memberID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type moveMemberRequest struct {
	ToTeamID string `json:"to_team_id"`
}

// MoveTeamMember handles POST /teams/{id}/members/{memberID}/move (admin)
// Moves the member into the destination team atomically.
func (h *Handler) MoveTeamMember(w http.ResponseWriter, r *http.Request) {
	var req moveMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	err := h.roster.MoveMember(r.Context(), chi.URLParam(r, "id"), req.ToTeamID, chi.URLParam(r, "memberID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type updateAreaRequest struct {
	Area string `json:"area"`
}

// UpdateTeamArea handles PUT /teams/{id}/area (admin)
func (h *Handler) UpdateTeamArea(w http.ResponseWriter, r *http.Request) {
	var req updateAreaRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := h.roster.UpdateArea(r.Context(), chi.URLParam(r, "id"), req.Area); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteTeam handles DELETE /teams/{id} (admin)
func (h *Handler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	if err := h.roster.DeleteTeam(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListTeamCandidates handles GET /teams/candidates?type= (admin)
// Volunteers whose originating event matches the requested team type.
func (h *Handler) ListTeamCandidates(w http.ResponseWriter, r *http.Request) {
	t := model.EventType(r.URL.Query().Get("type"))
	candidates, err := h.roster.ListCandidates(r.Context(), t)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, candidates)
}
