package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"gatepass/internal/driver/models"
	"gatepass/internal/driver/service"
	"gatepass/pkg/platform/httputil"
)

type Handler struct {
	service *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{service: svc}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/drivers", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/name/{name}", h.getByName)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.remove)
	})
}

type driverRequest struct {
	Name       string `json:"name"`
	Department string `json:"department"`
	Phone      string `json:"phone"`
	Status     string `json:"status,omitempty"`
}

type driverResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Department string    `json:"department"`
	Phone      string    `json:"phone"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (req driverRequest) toModel() *models.Driver {
	return &models.Driver{
		Name:       req.Name,
		Department: req.Department,
		Phone:      req.Phone,
		Status:     models.DriverStatus(req.Status),
	}
}

func toResponse(d *models.Driver) driverResponse {
	return driverResponse{
		ID:         d.ID,
		Name:       d.Name,
		Department: d.Department,
		Phone:      d.Phone,
		Status:     string(d.Status),
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[driverRequest](w, r)
	if !ok {
		return
	}
	created, err := h.service.Create(r.Context(), req.toModel())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(created))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[driverRequest](w, r)
	if !ok {
		return
	}
	updated, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req.toModel())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(updated))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(d))
}

func (h *Handler) getByName(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.GetByName(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(d))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	drivers, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]driverResponse, 0, len(drivers))
	for i := range drivers {
		out = append(out, toResponse(&drivers[i]))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
