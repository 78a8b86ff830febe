package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"gatepass/internal/vehicle/models"
	"gatepass/internal/vehicle/service"
	"gatepass/pkg/domain"
	"gatepass/pkg/platform/httputil"
)

// Handler exposes vehicle CRUD over HTTP.
type Handler struct {
	service *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{service: svc}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/vehicles", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Get("/plate/{plate}", h.getByPlate)
		r.Put("/{id}", h.update)
		r.Patch("/{id}/driver", h.updateDriver)
		r.Delete("/{id}", h.remove)
	})
}

type vehicleRequest struct {
	PlateNumber     string   `json:"plate_number"`
	MakeModel       string   `json:"make_model"`
	Color           string   `json:"color"`
	Department      string   `json:"department"`
	Year            int      `json:"year"`
	Type            string   `json:"type"`
	CurrentDriver   string   `json:"current_driver"`
	AssignedDrivers []string `json:"assigned_drivers"`
	AccessStatus    string   `json:"access_status"`
	AllowedGates    string   `json:"allowed_gates"`
	OneTimePass     bool     `json:"one_time_pass"`
}

type vehicleResponse struct {
	ID              string    `json:"id"`
	PlateNumber     string    `json:"plate_number"`
	MakeModel       string    `json:"make_model"`
	Color           string    `json:"color"`
	Department      string    `json:"department"`
	Year            int       `json:"year"`
	Type            string    `json:"type"`
	Status          string    `json:"status"`
	CurrentDriver   string    `json:"current_driver"`
	AssignedDrivers []string  `json:"assigned_drivers"`
	AccessStatus    string    `json:"access_status"`
	AllowedGates    string    `json:"allowed_gates"`
	OneTimePass     bool      `json:"one_time_pass"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (req vehicleRequest) toModel() *models.Vehicle {
	return &models.Vehicle{
		PlateNumber:     req.PlateNumber,
		MakeModel:       req.MakeModel,
		Color:           req.Color,
		Department:      req.Department,
		Year:            req.Year,
		Type:            req.Type,
		CurrentDriver:   req.CurrentDriver,
		AssignedDrivers: req.AssignedDrivers,
		AccessStatus:    req.AccessStatus,
		AllowedGates:    req.AllowedGates,
		OneTimePass:     req.OneTimePass,
	}
}

func toResponse(v *models.Vehicle) vehicleResponse {
	return vehicleResponse{
		ID:              v.ID,
		PlateNumber:     v.PlateNumber,
		MakeModel:       v.MakeModel,
		Color:           v.Color,
		Department:      v.Department,
		Year:            v.Year,
		Type:            v.Type,
		Status:          v.Status.String(),
		CurrentDriver:   v.CurrentDriver,
		AssignedDrivers: v.AssignedDrivers,
		AccessStatus:    v.AccessStatus,
		AllowedGates:    v.AllowedGates,
		OneTimePass:     v.OneTimePass,
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[vehicleRequest](w, r)
	if !ok {
		return
	}
	v := req.toModel()
	v.Status = domain.TxActionOut
	created, err := h.service.Create(r.Context(), v)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(created))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[vehicleRequest](w, r)
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

type updateDriverRequest struct {
	Driver string `json:"driver"`
}

func (h *Handler) updateDriver(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[updateDriverRequest](w, r)
	if !ok {
		return
	}
	if err := h.service.UpdateDriver(r.Context(), chi.URLParam(r, "id"), req.Driver); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(v))
}

func (h *Handler) getByPlate(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.GetByPlate(r.Context(), chi.URLParam(r, "plate"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(v))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]vehicleResponse, 0, len(vehicles))
	for i := range vehicles {
		out = append(out, toResponse(&vehicles[i]))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	downgraded, err := h.service.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"downgraded": downgraded})
}
