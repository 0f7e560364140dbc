package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/project-tracker/internal/services"
)

const (
	msgAuthenticationRequired = "Authentication required"
	msgNotAuthenticated       = "Not authenticated"
	msgInternalServerError    = "Internal server error"
	msgInvalidRequestBody     = "Invalid request body"
	msgInvalidDueDate         = "Invalid due date"
	msgProjectNotFound        = "Project not found"
	msgTaskNotFound           = "Task not found"
)

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	c.AbortWithStatusJSON(err.Code, gin.H{"error": err.Message})
}

func newInternalError() apiError {
	return newAPIError(http.StatusInternalServerError, msgInternalServerError)
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

func newUnauthorizedError(message string) apiError {
	return newAPIError(http.StatusUnauthorized, message)
}

func newNotFoundError(message string) apiError {
	return newAPIError(http.StatusNotFound, message)
}

func newConflictError(message string) apiError {
	return newAPIError(http.StatusConflict, message)
}

// serviceError maps an error returned by a service to the response
// the client sees. Unknown errors never leak their details.
func serviceError(err error) apiError {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return newBadRequestError(validationErr.Message)
	case errors.Is(err, services.ErrValidation):
		return newBadRequestError(err.Error())
	case errors.Is(err, services.ErrProjectNotFound):
		return newNotFoundError(msgProjectNotFound)
	case errors.Is(err, services.ErrTaskNotFound):
		return newNotFoundError(msgTaskNotFound)
	case errors.Is(err, services.ErrUserAlreadyExists):
		return newConflictError("User already exists")
	case errors.Is(err, services.ErrInvalidCredentials):
		return newUnauthorizedError("Invalid credentials")
	default:
		return newInternalError()
	}
}
