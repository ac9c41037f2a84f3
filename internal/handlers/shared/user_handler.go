package handlers

import (
	"ridedeck/internal/services"
	"ridedeck/internal/utils"
	"ridedeck/internal/validators"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

func (h *UserHandler) GetUser(c *gin.Context) {
	userID, ok := pathObjectID(c, "id", "user")
	if !ok {
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "User retrieved successfully", user)
}

// UpdateProfile changes name, email or phone. An empty email removes it.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := pathObjectID(c, "id", "user")
	if !ok {
		return
	}

	var request validators.UpdateProfileRequest
	if !bindRequest(c, &request) {
		return
	}
	if !request.ValidateEmail() {
		utils.ValidationErrorResponse(c, map[string]string{"email": "Invalid email format"})
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, &request)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Profile updated successfully", user)
}
