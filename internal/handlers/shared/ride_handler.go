package handlers

import (
	"ridedeck/internal/middleware"
	"ridedeck/internal/models"
	"ridedeck/internal/services"
	"ridedeck/internal/utils"
	"ridedeck/internal/validators"

	"github.com/gin-gonic/gin"
)

type RideHandler struct {
	rideService services.RideService
}

func NewRideHandler(rideService services.RideService) *RideHandler {
	return &RideHandler{
		rideService: rideService,
	}
}

// BookRide creates a searching ride for the rider
func (h *RideHandler) BookRide(c *gin.Context) {
	var request validators.BookRideRequest
	if !bindRequest(c, &request) {
		return
	}
	if !h.canActFor(c, request.RiderID) {
		return
	}

	ride, err := h.rideService.BookRide(c.Request.Context(), &request)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Ride booked successfully", ride)
}

// GetAvailableRides is the driver feed of rides still searching for a driver
func (h *RideHandler) GetAvailableRides(c *gin.Context) {
	rides, err := h.rideService.GetAvailableRides(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if rides == nil {
		rides = []*models.RideDetails{}
	}

	utils.SuccessResponseWithMeta(c, "Available rides retrieved", rides, &utils.Meta{Count: len(rides)})
}

// GetActiveRide returns the user's current ride, or null when there is none
func (h *RideHandler) GetActiveRide(c *gin.Context) {
	userID, ok := pathObjectID(c, "userId", "user")
	if !ok {
		return
	}

	ride, err := h.rideService.GetActiveRide(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if ride == nil {
		utils.SuccessResponse(c, "No active ride", nil)
		return
	}

	utils.SuccessResponse(c, "Active ride retrieved", ride)
}

func (h *RideHandler) AcceptRide(c *gin.Context) {
	var request validators.AcceptRideRequest
	if !bindRequest(c, &request) {
		return
	}
	if !h.canActFor(c, request.DriverID) {
		return
	}

	ride, err := h.rideService.AcceptRide(c.Request.Context(), &request)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride accepted", ride.WithoutOTP())
}

// UpdateStatus starts, completes or cancels a ride
func (h *RideHandler) UpdateStatus(c *gin.Context) {
	var request validators.UpdateRideStatusRequest
	if !bindRequest(c, &request) {
		return
	}

	if userID, role, ok := middleware.CurrentUser(c); ok && role != string(models.UserRoleAdmin) {
		rideID, err := validators.ParseObjectID(request.RideID)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid ride ID")
			return
		}
		if !h.rideService.IsParticipant(c.Request.Context(), userID, rideID) {
			utils.ForbiddenResponse(c)
			return
		}
	}

	ride, err := h.rideService.UpdateStatus(c.Request.Context(), &request)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride status updated", ride.WithoutOTP())
}

// GetHistory lists the user's completed and cancelled rides, newest first
func (h *RideHandler) GetHistory(c *gin.Context) {
	userID, ok := pathObjectID(c, "userId", "user")
	if !ok {
		return
	}

	rides, err := h.rideService.GetHistory(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if rides == nil {
		rides = []*models.RideDetails{}
	}

	utils.SuccessResponseWithMeta(c, "Ride history retrieved", rides, &utils.Meta{Count: len(rides)})
}

func (h *RideHandler) canActFor(c *gin.Context, rawID string) bool {
	id, err := validators.ParseObjectID(rawID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID")
		return false
	}
	if !middleware.CanActFor(c, id) {
		utils.ForbiddenResponse(c)
		return false
	}
	return true
}
