package api

import (
	"errors"
	"net/http"

	"gamestore/internal/service"
	"gamestore/internal/store"
	"gamestore/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps service and store errors to HTTP responses. Unknown
// errors are logged and reported without details.
func respondError(c *gin.Context, err error) {
	switch {
	case service.IsValidation(err), errors.Is(err, store.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not found",
			"details": err.Error(),
		})
	case errors.Is(err, service.ErrRequestInProgress):
		c.JSON(http.StatusConflict, gin.H{
			"error": "A request with this idempotency key is still in progress",
		})
	case errors.Is(err, store.ErrConcurrencyConflict):
		c.JSON(http.StatusConflict, gin.H{
			"error": "The resource was modified by another request",
		})
	default:
		util.LoggerFrom(c.Request.Context()).Error("Request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}

func respondNotFound(c *gin.Context, what string) {
	c.JSON(http.StatusNotFound, gin.H{
		"error": what + " not found",
	})
}

func respondBadBody(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request body",
		"details": err.Error(),
	})
}
