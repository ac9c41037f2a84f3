package handlers

import (
	"errors"

	"ridedeck/internal/services"
	"ridedeck/internal/utils"
	"ridedeck/internal/validators"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register creates a rider or driver account and returns it with a token
func (h *AuthHandler) Register(c *gin.Context) {
	var request validators.RegisterRequest
	if !bindRequest(c, &request) {
		return
	}

	response, err := h.authService.Register(c.Request.Context(), &request)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "User registered successfully", response)
}

// Login looks the account up by phone and issues a token
func (h *AuthHandler) Login(c *gin.Context) {
	var request validators.LoginRequest
	if !bindRequest(c, &request) {
		return
	}

	response, err := h.authService.Login(c.Request.Context(), &request)
	if err != nil {
		// An unknown phone is a client error on login, not a missing resource.
		if errors.Is(err, services.ErrUserNotFound) {
			utils.BadRequestResponse(c, services.ErrUserNotFound.Error())
			return
		}
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Login successful", response)
}
