package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"gatepass/internal/gate/models"
	"gatepass/internal/gate/service"
	"gatepass/pkg/platform/httputil"
)

type Handler struct {
	service *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{service: svc}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/gates", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
	})
}

type gateRequest struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

type gateResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toResponse(g *models.Gate) gateResponse {
	return gateResponse{ID: g.ID, Name: g.Name, CreatedAt: g.CreatedAt, UpdatedAt: g.UpdatedAt}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[gateRequest](w, r)
	if !ok {
		return
	}
	created, err := h.service.Create(r.Context(), &models.Gate{ID: req.ID, Name: req.Name})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(created))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[gateRequest](w, r)
	if !ok {
		return
	}
	updated, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), &models.Gate{Name: req.Name})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(updated))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	g, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(g))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	gates, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]gateResponse, 0, len(gates))
	for i := range gates {
		out = append(out, toResponse(&gates[i]))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}
