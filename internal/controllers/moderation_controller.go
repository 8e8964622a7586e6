package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/Duffman2k/duffvouchbot/internal/models"
	"github.com/Duffman2k/duffvouchbot/internal/providers"
	"github.com/Duffman2k/duffvouchbot/internal/services"
	json "github.com/goccy/go-json"
)

// ModerationController exposes read-only views of the review queue and the
// activity ledger to operators.
type ModerationController struct {
	approvals services.ApprovalServiceInterface
	ledger    services.LedgerServiceInterface
	logger    providers.Logger
}

type activityResponse struct {
	UserID         string     `json:"user_id"`
	DisplayName    string     `json:"display_name"`
	WindowCount    int        `json:"window_count"`
	TotalApprovals int        `json:"total_approvals"`
	IsPromoted     bool       `json:"is_promoted"`
	LastApproval   *time.Time `json:"last_approval,omitempty"`
}

func NewModerationController(approvals services.ApprovalServiceInterface, ledger services.LedgerServiceInterface, logger providers.Logger) *ModerationController {
	return &ModerationController{
		approvals: approvals,
		ledger:    ledger,
		logger:    logger,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func (mc *ModerationController) Pending(w http.ResponseWriter, _ *http.Request) {
	pending := mc.approvals.ListPending()
	views := make([]models.SubmissionView, 0, len(pending))
	for _, sub := range pending {
		views = append(views, sub.View())
	}
	writeJSON(w, http.StatusOK, views)
}

func (mc *ModerationController) Activity(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	if userID == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	rec, err := mc.ledger.Activity(r.Context(), userID)
	if errors.Is(err, models.ErrNotFound) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	if err != nil {
		mc.logger.Errorf(providers.TypeHTTP, "Activity lookup for %s failed: %v", userID, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	resp := activityResponse{
		UserID:         rec.UserID,
		DisplayName:    rec.DisplayName,
		WindowCount:    rec.WindowCount(),
		TotalApprovals: rec.TotalApprovalsEver,
		IsPromoted:     rec.IsPromoted,
	}
	if last, ok := rec.LastApproval(); ok {
		resp.LastApproval = &last
	}
	writeJSON(w, http.StatusOK, resp)
}
