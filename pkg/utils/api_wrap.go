package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	Stage   string      `json:"stage,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	traceID := c.GetString("trace_id")
	c.JSON(http.StatusOK, APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: message,
		TraceID: traceID,
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, message string) {
	traceID := c.GetString("trace_id")
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: traceID,
	})
}

// HandleServiceError maps the pipeline error taxonomy onto HTTP codes.
// Every terminal failure names the stage that failed; raw low-level errors
// never reach the caller.
func HandleServiceError(c *gin.Context, err error) {
	traceID := c.GetString("trace_id")

	code := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, ErrInvalidRequest):
		code = http.StatusBadRequest
		message = "Invalid trip request"
	case errors.Is(err, ErrGenerationUnavailable):
		code = http.StatusBadGateway
		message = "Itinerary generation is currently unavailable"
	case errors.Is(err, ErrFatalGeneration):
		code = http.StatusBadGateway
		message = "Itinerary generation rejected the request"
	case errors.Is(err, ErrItineraryUnproducible):
		code = http.StatusBadGateway
		message = "Could not produce a valid itinerary"
	case errors.Is(err, ErrExportFailure):
		code = http.StatusInternalServerError
		message = "Could not render the itinerary document"
	}

	if detail := DetailOf(err); detail != "" {
		message = message + ": " + detail
	}

	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		Stage:   StageOf(err),
		TraceID: traceID,
	})
}
