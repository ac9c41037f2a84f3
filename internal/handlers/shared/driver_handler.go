package handlers

import (
	"ridedeck/internal/middleware"
	"ridedeck/internal/models"
	"ridedeck/internal/services"
	"ridedeck/internal/utils"
	"ridedeck/internal/validators"

	"github.com/gin-gonic/gin"
)

type DriverHandler struct {
	driverService services.DriverService
}

func NewDriverHandler(driverService services.DriverService) *DriverHandler {
	return &DriverHandler{
		driverService: driverService,
	}
}

// ActivateSubscription charges the plan price and activates the plan
func (h *DriverHandler) ActivateSubscription(c *gin.Context) {
	var request validators.SubscriptionRequest
	if !bindRequest(c, &request) {
		return
	}

	driverID, err := validators.ParseObjectID(request.UserID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID")
		return
	}
	if !middleware.CanActFor(c, driverID) {
		utils.ForbiddenResponse(c)
		return
	}

	result, err := h.driverService.ActivateSubscription(c.Request.Context(), driverID, models.SubscriptionPlan(request.Plan))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Subscription activated", result)
}

// SetStatus toggles whether the driver is online
func (h *DriverHandler) SetStatus(c *gin.Context) {
	var request validators.DriverStatusRequest
	if !bindRequest(c, &request) {
		return
	}

	driverID, err := validators.ParseObjectID(request.UserID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID")
		return
	}
	if !middleware.CanActFor(c, driverID) {
		utils.ForbiddenResponse(c)
		return
	}

	result, err := h.driverService.SetOnlineStatus(c.Request.Context(), driverID, *request.IsOnline)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	message := "Driver is now offline"
	if result.IsOnline {
		message = "Driver is now online"
	}
	utils.SuccessResponse(c, message, result)
}
