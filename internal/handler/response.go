package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// APIResponse is the envelope used for error responses. Successful searches
// return the result payload directly with no envelope.
type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// BlockedResponse is the fixed shape returned when the moderation gate
// rejects an image.
type BlockedResponse struct {
	Status   int    `json:"status"`
	Message  string `json:"message"`
	Category string `json:"category"`
}

// Error sends an error response using the shared envelope format.
func Error(c echo.Context, status int, message string) error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	payload := APIResponse{
		Status:  "error",
		Message: message,
	}
	return c.JSON(status, payload)
}

// Blocked sends the moderation rejection response.
func Blocked(c echo.Context, reason, category string) error {
	payload := BlockedResponse{
		Status:   http.StatusUnprocessableEntity,
		Message:  reason,
		Category: category,
	}
	return c.JSON(http.StatusUnprocessableEntity, payload)
}
