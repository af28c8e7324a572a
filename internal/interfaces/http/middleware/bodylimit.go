package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/erp/sallabridge/internal/interfaces/http/dto"
)

// BodyLimit rejects requests whose body exceeds maxBytes. Webhook
// payloads are small, so a tight cap keeps a misbehaving sender from
// tying up the server.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse(dto.ErrCodeBadRequest, "request body too large"))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
