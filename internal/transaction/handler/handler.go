package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"gatepass/internal/transaction"
	"gatepass/pkg/platform/httputil"
)

// Handler exposes the gate transaction endpoints.
type Handler struct {
	processor *transaction.Processor
}

func New(processor *transaction.Processor) *Handler {
	return &Handler{processor: processor}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/transactions", h.create)
	r.Post("/transactions/scan", h.scan)
}

type createRequest struct {
	PlateOrID string `json:"plate_or_id"`
	Action    string `json:"action"`
	GateID    string `json:"gate_id"`
	Driver    string `json:"driver,omitempty"`
	Remarks   string `json:"remarks,omitempty"`
}

type scanRequest struct {
	Code    string `json:"code"`
	GateID  string `json:"gate_id"`
	Remarks string `json:"remarks,omitempty"`
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

type vehicleStateResponse struct {
	ID            string `json:"id"`
	PlateNumber   string `json:"plate_number"`
	Status        string `json:"status"`
	CurrentDriver string `json:"current_driver,omitempty"`
	OneTimePass   bool   `json:"one_time_pass"`
}

type createResponse struct {
	Entry   entryResponse        `json:"entry"`
	Vehicle vehicleStateResponse `json:"vehicle"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[createRequest](w, r)
	if !ok {
		return
	}
	result, err := h.processor.Process(r.Context(), transaction.Request{
		PlateOrID: req.PlateOrID,
		Action:    req.Action,
		GateID:    req.GateID,
		Driver:    req.Driver,
		Remarks:   req.Remarks,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(result))
}

func (h *Handler) scan(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[scanRequest](w, r)
	if !ok {
		return
	}
	result, err := h.processor.ProcessScan(r.Context(), req.Code, req.GateID, req.Remarks)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(result))
}

func toResponse(result *transaction.Result) createResponse {
	return createResponse{
		Entry: entryResponse{
			ID:           result.Entry.ID,
			Timestamp:    result.Entry.Timestamp,
			PlateNumber:  result.Entry.PlateNumber,
			Driver:       result.Entry.Driver,
			Action:       result.Entry.Action.String(),
			Gate:         result.Entry.Gate,
			Remarks:      result.Entry.Remarks,
			LoggedBy:     result.Entry.LoggedBy,
			AccessStatus: result.Entry.AccessStatus,
		},
		Vehicle: vehicleStateResponse{
			ID:            result.Vehicle.ID,
			PlateNumber:   result.Vehicle.PlateNumber,
			Status:        result.Vehicle.Status.String(),
			CurrentDriver: result.Vehicle.CurrentDriver,
			OneTimePass:   result.Vehicle.OneTimePass,
		},
	}
}
