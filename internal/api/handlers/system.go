package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/CALILU/cardtradr/internal/api/response"
	"github.com/CALILU/cardtradr/internal/session"
)

// SystemHandler serves provider status and session endpoints.
type SystemHandler struct {
	client   CatalogClient
	sessions *session.Provider
	version  string
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(client CatalogClient, sessions *session.Provider, version string) *SystemHandler {
	return &SystemHandler{client: client, sessions: sessions, version: version}
}

// GetStatus reports provider reachability and the session call counter.
func (h *SystemHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]interface{}{
		"providerHealthy": h.client.CheckHealth(r.Context()),
		"sessionCalls":    h.client.SessionCalls(),
	})
}

// GetVersion returns the server version.
func (h *SystemHandler) GetVersion(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{"version": h.version})
}

// GetSession returns the current session, or null when signed out.
func (h *SystemHandler) GetSession(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, h.sessions.Current())
}

// SignIn establishes and persists a session.
func (h *SystemHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID string `json:"userId"`
		Email  string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}

	if err := h.sessions.SignIn(r.Context(), body.UserID, body.Email); err != nil {
		response.BadRequest(w, err)
		return
	}
	response.Success(w, h.sessions.Current())
}

// SignOut clears the session.
func (h *SystemHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.SignOut(r.Context()); err != nil {
		response.InternalError(w, err)
		return
	}
	response.NoContent(w)
}
