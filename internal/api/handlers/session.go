package handlers

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/rafag508/mycollection/internal/controllers"
	"github.com/rafag508/mycollection/internal/session"
	"github.com/sirupsen/logrus"
)

// SessionHandler exposes the session mode flag and the explicit-reload hook
type SessionHandler struct {
	session *session.Session
	ctrls   *controllers.Set
	logger  *logrus.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sess *session.Session, ctrls *controllers.Set, logger *logrus.Logger) *SessionHandler {
	return &SessionHandler{
		session: sess,
		ctrls:   ctrls,
		logger:  logger,
	}
}

type sessionRequest struct {
	Guest bool `json:"guest"`
}

// ServeHTTP toggles the guest flag. Switching mode takes effect on the next
// cache call; no store re-initialization happens.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	h.session.SetGuest(req.Guest)
	h.logger.WithField("guest", req.Guest).Info("Session mode changed")
	w.WriteHeader(http.StatusNoContent)
}

// ReloadHandler clears every collection's once-per-session sync guard,
// allowing one fresh reconciliation per explicit reload.
type ReloadHandler struct {
	ctrls  *controllers.Set
	logger *logrus.Logger
}

// NewReloadHandler creates a new reload handler
func NewReloadHandler(ctrls *controllers.Set, logger *logrus.Logger) *ReloadHandler {
	return &ReloadHandler{ctrls: ctrls, logger: logger}
}

// ServeHTTP handles the reload endpoint
func (h *ReloadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.ctrls.ResetSessionGuards()
	h.logger.Info("Session sync guards reset")
	w.WriteHeader(http.StatusNoContent)
}
