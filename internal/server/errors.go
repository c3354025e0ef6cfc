package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sentioxyz/aptos-core/internal/tracer"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeAPIError(c *gin.Context, status int, msg string) {
	c.JSON(status, ErrorResponse{Error: msg})
}

// statusFor maps a trace failure to its HTTP status.
func statusFor(err error) int {
	switch tracer.Outcome(err) {
	case "invalid":
		return http.StatusBadRequest
	case "not_found":
		return http.StatusNotFound
	case "timeout":
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
