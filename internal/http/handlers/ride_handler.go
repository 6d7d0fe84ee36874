// README: Ride handlers for the booking lifecycle.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"motorpool/internal/http/middleware"
	"motorpool/internal/modules/ride"
	"motorpool/internal/modules/vehicle"
	"motorpool/internal/types"
)

type RideHandler struct {
	rides    *ride.Service
	vehicles *vehicle.Service
}

func NewRideHandler(rides *ride.Service, vehicles *vehicle.Service) *RideHandler {
	return &RideHandler{rides: rides, vehicles: vehicles}
}

type rideRequest struct {
	OverrideUserID   *string   `json:"override_user_id"`
	VehicleID        *string   `json:"vehicle_id"`
	Type             string    `json:"type"`
	StartAt          time.Time `json:"start_at"`
	EndAt            time.Time `json:"end_at"`
	StartLocation    string    `json:"start_location"`
	StopLocation     string    `json:"stop_location"`
	EstimatedKm      float64   `json:"estimated_km"`
	ExtendedReason   *string   `json:"extended_reason"`
	FourByFourReason *string   `json:"four_by_four_reason"`
}

type rideResponse struct {
	ID             string     `json:"id"`
	RequesterID    string     `json:"requester_id"`
	OverrideUserID *string    `json:"override_user_id,omitempty"`
	VehicleID      *string    `json:"vehicle_id,omitempty"`
	Type           string     `json:"type"`
	StartAt        time.Time  `json:"start_at"`
	EndAt          time.Time  `json:"end_at"`
	StartLocation  string     `json:"start_location"`
	StopLocation   string     `json:"stop_location"`
	EstimatedKm    float64    `json:"estimated_km"`
	ActualKm       *float64   `json:"actual_km,omitempty"`
	Status         string     `json:"status"`
	SubmittedAt    time.Time  `json:"submitted_at"`
	ActualPickupAt *time.Time `json:"actual_pickup_at,omitempty"`
	CompletionDate *time.Time `json:"completion_date,omitempty"`
	CancelReason   *string    `json:"cancel_reason,omitempty"`
}

func toRideResponse(r *ride.Ride) rideResponse {
	resp := rideResponse{
		ID:             string(r.ID),
		RequesterID:    string(r.RequesterID),
		Type:           string(r.Type),
		StartAt:        r.Window.Start,
		EndAt:          r.Window.End,
		StartLocation:  r.StartLocation,
		StopLocation:   r.StopLocation,
		EstimatedKm:    r.EstimatedKm,
		ActualKm:       r.ActualKm,
		Status:         string(r.Status),
		SubmittedAt:    r.SubmittedAt,
		ActualPickupAt: r.ActualPickupAt,
		CompletionDate: r.CompletionDate,
		CancelReason:   r.CancelReason,
	}
	if r.OverrideUserID != nil {
		v := string(*r.OverrideUserID)
		resp.OverrideUserID = &v
	}
	if r.VehicleID != nil {
		v := string(*r.VehicleID)
		resp.VehicleID = &v
	}
	return resp
}

func optionalID(v *string) *types.ID {
	if v == nil || *v == "" {
		return nil
	}
	id := types.ID(*v)
	return &id
}

func (h *RideHandler) Create(c *gin.Context) {
	var req rideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	id, err := h.rides.Create(c.Request.Context(), ride.CreateCommand{
		Actor:            middleware.Actor(c),
		OverrideUserID:   optionalID(req.OverrideUserID),
		VehicleID:        optionalID(req.VehicleID),
		Type:             ride.Type(req.Type),
		Window:           types.Window{Start: req.StartAt, End: req.EndAt},
		StartLocation:    req.StartLocation,
		StopLocation:     req.StopLocation,
		EstimatedKm:      req.EstimatedKm,
		ExtendedReason:   req.ExtendedReason,
		FourByFourReason: req.FourByFourReason,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	r, err := h.rides.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, toRideResponse(r))
}

func (h *RideHandler) Get(c *gin.Context) {
	r, err := h.rides.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toRideResponse(r))
}

func (h *RideHandler) Update(c *gin.Context) {
	var req rideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	err := h.rides.Update(c.Request.Context(), ride.UpdateCommand{
		Actor:            middleware.Actor(c),
		RideID:           types.ID(c.Param("id")),
		OverrideUserID:   optionalID(req.OverrideUserID),
		VehicleID:        optionalID(req.VehicleID),
		Type:             ride.Type(req.Type),
		Window:           types.Window{Start: req.StartAt, End: req.EndAt},
		StartLocation:    req.StartLocation,
		StopLocation:     req.StopLocation,
		EstimatedKm:      req.EstimatedKm,
		ExtendedReason:   req.ExtendedReason,
		FourByFourReason: req.FourByFourReason,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type approveRequest struct {
	VehicleID *string `json:"vehicle_id"`
}

func (h *RideHandler) Approve(c *gin.Context) {
	var req approveRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	err := h.rides.Approve(c.Request.Context(), ride.ApproveCommand{
		RideID:    types.ID(c.Param("id")),
		Actor:     middleware.Actor(c),
		VehicleID: optionalID(req.VehicleID),
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

func (h *RideHandler) Reject(c *gin.Context) {
	var req reasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Reason == "" {
		writeError(c, http.StatusBadRequest, "reason required")
		return
	}
	err := h.rides.Reject(c.Request.Context(), ride.RejectCommand{
		RideID: types.ID(c.Param("id")),
		Actor:  middleware.Actor(c),
		Reason: req.Reason,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RideHandler) Start(c *gin.Context) {
	err := h.rides.Start(c.Request.Context(), ride.StartCommand{
		RideID:  types.ID(c.Param("id")),
		ActorID: middleware.Actor(c).UserID,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type completeRequest struct {
	ActualKm       *float64 `json:"actual_km"`
	EmergencyEvent *string  `json:"emergency_event"`
}

func (h *RideHandler) Complete(c *gin.Context) {
	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	err := h.rides.Complete(c.Request.Context(), ride.CompleteCommand{
		RideID:         types.ID(c.Param("id")),
		Actor:          middleware.Actor(c),
		ActualKm:       req.ActualKm,
		EmergencyEvent: req.EmergencyEvent,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RideHandler) Cancel(c *gin.Context) {
	var req reasonRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	err := h.rides.Cancel(c.Request.Context(), ride.CancelCommand{
		RideID: types.ID(c.Param("id")),
		Actor:  middleware.Actor(c),
		Reason: req.Reason,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AvailableVehicles lists vehicles free for an approved ride's window,
// optionally filtered by vehicle type.
func (h *RideHandler) AvailableVehicles(c *gin.Context) {
	vehicles, err := h.rides.AvailableVehicles(
		c.Request.Context(),
		types.ID(c.Param("id")),
		h.vehicles,
		c.Query("type"),
	)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"vehicles": toVehicleResponses(vehicles)})
}
