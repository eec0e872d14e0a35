package handlers

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/rafag508/mycollection/internal/models"
	"github.com/sirupsen/logrus"
)

// StatusHandler reports smart-sync diagnostics
type StatusHandler struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(db *models.Database, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{
		db:     db,
		logger: logger,
	}
}

// StatusResponse represents the status response
type StatusResponse struct {
	LastRunAt      *time.Time     `json:"last_run_at,omitempty"`
	LastRunSynced  int            `json:"last_run_synced"`
	LastRunSkipped int            `json:"last_run_skipped"`
	LastRunErrored int            `json:"last_run_errored"`
	TrackedItems   int            `json:"tracked_items"`
	ItemsByStatus  map[string]int `json:"items_by_status"`
	FailingItems   int            `json:"failing_items"`
}

// ServeHTTP handles the status endpoint
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	metas, err := h.db.GetAllSyncMeta()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get sync bookkeeping")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	response := StatusResponse{
		TrackedItems:  len(metas),
		ItemsByStatus: make(map[string]int),
	}

	for _, meta := range metas {
		response.ItemsByStatus[string(meta.LastStatus)]++
	}

	if failing, err := h.db.GetFailingSyncMeta(1); err == nil {
		response.FailingItems = len(failing)
	}

	if run, err := h.db.GetSyncRun(); err == nil && run != nil {
		response.LastRunAt = &run.FinishedAt
		response.LastRunSynced = run.Synced
		response.LastRunSkipped = run.Skipped
		response.LastRunErrored = run.Errored
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
