// README: Vehicle handlers for fleet administration and availability lookup.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"motorpool/internal/http/middleware"
	"motorpool/internal/modules/ride"
	"motorpool/internal/modules/vehicle"
	"motorpool/internal/types"
)

type VehicleHandler struct {
	vehicles *vehicle.Service
	rides    *ride.Service
}

func NewVehicleHandler(vehicles *vehicle.Service, rides *ride.Service) *VehicleHandler {
	return &VehicleHandler{vehicles: vehicles, rides: rides}
}

type vehicleResponse struct {
	ID           string  `json:"id"`
	PlateNumber  string  `json:"plate_number"`
	Type         string  `json:"type"`
	FuelType     string  `json:"fuel_type"`
	Status       string  `json:"status"`
	FreezeReason *string `json:"freeze_reason,omitempty"`
	MileageKm    float64 `json:"mileage_km"`
	Archived     bool    `json:"archived"`
}

func toVehicleResponse(v *vehicle.Vehicle) vehicleResponse {
	return vehicleResponse{
		ID:           string(v.ID),
		PlateNumber:  v.PlateNumber,
		Type:         v.Type,
		FuelType:     v.FuelType,
		Status:       string(v.Status),
		FreezeReason: v.FreezeReason,
		MileageKm:    v.MileageKm,
		Archived:     v.Archived,
	}
}

func toVehicleResponses(vs []*vehicle.Vehicle) []vehicleResponse {
	out := make([]vehicleResponse, 0, len(vs))
	for _, v := range vs {
		out = append(out, toVehicleResponse(v))
	}
	return out
}

type createVehicleRequest struct {
	PlateNumber string `json:"plate_number"`
	Type        string `json:"type"`
	FuelType    string `json:"fuel_type"`
}

func (h *VehicleHandler) Create(c *gin.Context) {
	var req createVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	v := &vehicle.Vehicle{
		ID:          types.ID(uuid.NewString()),
		PlateNumber: req.PlateNumber,
		Type:        req.Type,
		FuelType:    req.FuelType,
	}
	if err := h.vehicles.Create(c.Request.Context(), v); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, toVehicleResponse(v))
}

func (h *VehicleHandler) Get(c *gin.Context) {
	v, err := h.vehicles.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toVehicleResponse(v))
}

// FindAvailable answers "which vehicles are free over this window", the
// read-only pre-check riders use before submitting a request.
func (h *VehicleHandler) FindAvailable(c *gin.Context) {
	start, err := time.Parse(time.RFC3339, c.Query("start_at"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid start_at")
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end_at"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid end_at")
		return
	}
	vehicles, err := h.vehicles.FindAvailable(c.Request.Context(),
		types.Window{Start: start, End: end}, c.Query("type"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"vehicles": toVehicleResponses(vehicles)})
}

type freezeRequest struct {
	Reason string `json:"reason"`
}

func (h *VehicleHandler) Freeze(c *gin.Context) {
	var req freezeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.vehicles.Freeze(c.Request.Context(), types.ID(c.Param("id")), req.Reason); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *VehicleHandler) Unfreeze(c *gin.Context) {
	if err := h.vehicles.Unfreeze(c.Request.Context(), types.ID(c.Param("id"))); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Withdraw pulls a vehicle from service and cancels its future rides,
// flagging the riders to rebook.
func (h *VehicleHandler) Withdraw(c *gin.Context) {
	var req freezeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Reason == "" {
		writeError(c, http.StatusBadRequest, "reason required")
		return
	}
	err := h.rides.HandleVehicleUnavailable(c.Request.Context(),
		types.ID(c.Param("id")), middleware.Actor(c), req.Reason)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *VehicleHandler) Archive(c *gin.Context) {
	if err := h.vehicles.Archive(c.Request.Context(), types.ID(c.Param("id"))); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
