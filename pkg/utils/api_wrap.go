package utils

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func traceID(c *gin.Context) string {
	if v, ok := c.Get("trace_id"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: message,
		TraceID: traceID(c),
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, message string) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: traceID(c),
	})
}

// HandleServiceError maps service errors onto HTTP statuses. Expected,
// user-recoverable conditions are never logged here; only server faults are.
func HandleServiceError(c *gin.Context, err error) {
	var limitErr *LimitReachedError

	switch {
	case errors.As(err, &limitErr):
		c.JSON(http.StatusForbidden, APIResponse{
			Status:  "error",
			Code:    http.StatusForbidden,
			Message: limitErr.Error(),
			TraceID: traceID(c),
			Data:    gin.H{"used": limitErr.Used, "limit": limitErr.Limit},
		})
	case errors.Is(err, ErrAccountNotFound):
		RespondError(c, http.StatusNotFound, "Account not found")
	case errors.Is(err, ErrEmailAlreadyExists):
		RespondError(c, http.StatusBadRequest, "User already exists")
	case errors.Is(err, ErrInvalidCredentials):
		RespondError(c, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, ErrAccountNotVerified):
		RespondError(c, http.StatusUnauthorized, "Please verify your email to log in.")
	case errors.Is(err, ErrAlreadyVerified):
		RespondError(c, http.StatusBadRequest, "Account already verified.")
	case errors.Is(err, ErrInvalidVerificationCode):
		RespondError(c, http.StatusBadRequest, "Invalid verification code.")
	case errors.Is(err, ErrUnknownPlan):
		RespondError(c, http.StatusBadRequest, "Invalid plan selected.")
	case errors.Is(err, ErrPaymentVerification):
		RespondError(c, http.StatusBadRequest, "Payment verification failed. Please contact support.")
	case errors.Is(err, ErrEmailDelivery):
		log.Printf("Email delivery error: %v", err)
		RespondError(c, http.StatusInternalServerError, "Email could not be sent. Please try again.")
	case errors.Is(err, ErrDatabaseError):
		log.Printf("Database error: %v", err)
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	default:
		log.Printf("Unknown error: %v", err)
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	}
}
