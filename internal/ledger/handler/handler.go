package handler

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"gatepass/internal/ledger/models"
	"gatepass/internal/ledger/service"
	"gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/platform/httputil"
)

// Handler exposes the transaction ledger: paged listing, aggregate summary,
// CSV export, and the super-admin reset.
type Handler struct {
	service *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{service: svc}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/logs", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/summary", h.summary)
		r.Get("/export", h.export)
		r.Delete("/", h.clear)
	})
}

type entryResponse struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	PlateNumber  string    `json:"plate_number"`
	Driver       string    `json:"driver"`
	Action       string    `json:"action"`
	Gate         string    `json:"gate"`
	Remarks      string    `json:"remarks,omitempty"`
	LoggedBy     string    `json:"logged_by"`
	AccessStatus string    `json:"access_status"`
}

type summaryResponse struct {
	TotalIn     int            `json:"total_in"`
	TotalOut    int            `json:"total_out"`
	CurrentlyIn int            `json:"currently_in"`
	PerGate     map[string]int `json:"per_gate"`
}

// filterFromQuery reads list constraints off the query string. Times are
// RFC 3339; a malformed value is a validation error rather than silently
// ignored.
func filterFromQuery(r *http.Request) (models.Filter, error) {
	q := r.URL.Query()
	f := models.Filter{
		PlateNumber: q.Get("plate"),
		Gate:        q.Get("gate"),
	}
	if action := q.Get("action"); action != "" {
		parsed, err := domain.ParseTxAction(action)
		if err != nil {
			return f, dErrors.Wrap(err, dErrors.CodeValidation, "invalid action filter")
		}
		f.Action = parsed
	}
	if since := q.Get("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return f, dErrors.Wrap(err, dErrors.CodeValidation, "invalid since filter")
		}
		f.Since = t
	}
	if until := q.Get("until"); until != "" {
		t, err := time.Parse(time.RFC3339, until)
		if err != nil {
			return f, dErrors.Wrap(err, dErrors.CodeValidation, "invalid until filter")
		}
		f.Until = t
	}
	if limit := q.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			return f, dErrors.New(dErrors.CodeValidation, "invalid limit filter")
		}
		f.Limit = n
	}
	return f, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	entries, err := h.service.List(r.Context(), f)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryResponse{
			ID:           e.ID,
			Timestamp:    e.Timestamp,
			PlateNumber:  e.PlateNumber,
			Driver:       e.Driver,
			Action:       e.Action.String(),
			Gate:         e.Gate,
			Remarks:      e.Remarks,
			LoggedBy:     e.LoggedBy,
			AccessStatus: e.AccessStatus,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	s, err := h.service.Summarize(r.Context(), f)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summaryResponse{
		TotalIn:     s.TotalIn,
		TotalOut:    s.TotalOut,
		CurrentlyIn: s.CurrentlyIn,
		PerGate:     s.PerGate,
	})
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	// Buffered so a permission or store error still gets a clean JSON
	// envelope instead of half a CSV.
	var buf bytes.Buffer
	if err := h.service.ExportCSV(r.Context(), f, &buf); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="transaction-log.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Clear(r.Context()); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
