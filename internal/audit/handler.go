package audit

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"gatepass/internal/policy"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/platform/httputil"
	"gatepass/pkg/requestcontext"
)

// Handler exposes the audit trail read-only. Viewing the trail rides on the
// users read permission, which keeps it away from the security role.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/audit", h.list)
}

type entryResponse struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Username  string            `json:"username"`
	Action    string            `json:"action"`
	Old       map[string]string `json:"old,omitempty"`
	New       map[string]string `json:"new,omitempty"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	role := policy.Role(requestcontext.Role(r.Context()))
	if err := policy.Enforce(role, policy.ResourceUsers, policy.ActionRead); err != nil {
		httputil.WriteError(w, err)
		return
	}
	entries, err := h.service.List(r.Context(), r.URL.Query().Get("username"))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "audit store unavailable"))
		return
	}
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryResponse{
			ID:        e.ID,
			Timestamp: e.Timestamp,
			Username:  e.Username,
			Action:    string(e.Action),
			Old:       e.Old,
			New:       e.New,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}
