package handlers

import (
	"errors"
	"net/http"

	"ridedeck/internal/services"
	"ridedeck/internal/utils"
	"ridedeck/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// bindRequest decodes the JSON body into request and runs the struct
// validators. It writes the error response itself and reports false on
// failure.
func bindRequest(c *gin.Context, request interface{}) bool {
	if err := c.ShouldBindJSON(request); err != nil {
		utils.BadRequestResponse(c, "Invalid request body: "+err.Error())
		return false
	}
	if errs := validators.ValidateStruct(request); errs != nil {
		utils.ValidationErrorResponse(c, errs.Details())
		return false
	}
	return true
}

// pathObjectID parses an id path parameter.
func pathObjectID(c *gin.Context, param, label string) (primitive.ObjectID, bool) {
	id, err := validators.ParseObjectID(c.Param(param))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+label+" ID")
		return primitive.NilObjectID, false
	}
	return id, true
}

// handleServiceError maps domain errors onto the response envelope.
func handleServiceError(c *gin.Context, err error) {
	var validationErrs validators.ValidationErrors
	if errors.As(err, &validationErrs) {
		utils.ValidationErrorResponse(c, validationErrs.Details())
		return
	}

	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrRideNotFound):
		utils.NotFoundResponse(c, rootMessage(err))

	case errors.Is(err, services.ErrUserExists):
		utils.ConflictResponse(c, rootMessage(err))

	case errors.Is(err, services.ErrActiveRideExists),
		errors.Is(err, services.ErrRideAlreadyAccepted),
		errors.Is(err, services.ErrInvalidOTP),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidPlan):
		utils.BadRequestResponse(c, rootMessage(err))

	case errors.Is(err, services.ErrInvalidTransition):
		utils.BadRequestResponse(c, err.Error())

	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidToken):
		utils.UnauthorizedResponse(c, rootMessage(err))

	case errors.Is(err, services.ErrNotDriver):
		utils.ErrorResponse(c, http.StatusForbidden, utils.CodeForbidden, rootMessage(err))

	case errors.Is(err, services.ErrPaymentFailed):
		utils.ErrorResponse(c, http.StatusPaymentRequired, utils.CodePayment, err.Error())

	default:
		utils.InternalServerErrorResponse(c, err)
	}
}

// rootMessage returns the message of the domain sentinel err wraps, so
// driver detail never reaches the client for expected failures.
func rootMessage(err error) string {
	for _, sentinel := range []error{
		services.ErrUserNotFound,
		services.ErrRideNotFound,
		services.ErrUserExists,
		services.ErrActiveRideExists,
		services.ErrRideAlreadyAccepted,
		services.ErrInvalidOTP,
		services.ErrInvalidStatus,
		services.ErrInvalidPlan,
		services.ErrInvalidCredentials,
		services.ErrInvalidToken,
		services.ErrNotDriver,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
