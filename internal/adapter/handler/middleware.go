package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rl1809/warehouse-inventory/internal/platform/observability"
)

// Correlation tags the request context with the caller's correlation ID, or a
// fresh one, and echoes it in the response.
func Correlation() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(observability.CorrelationHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(observability.CorrelationHeader, id)
		c.Request = c.Request.WithContext(observability.WithCorrelationID(c.Request.Context(), id))
		c.Next()
	}
}
