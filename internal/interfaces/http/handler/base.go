package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/erp/sallabridge/internal/domain/salla"
	"github.com/erp/sallabridge/internal/interfaces/http/dto"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return c.GetHeader("X-Request-ID")
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Accepted sends a 202 accepted response
func (h *BaseHandler) Accepted(c *gin.Context, data any) {
	c.JSON(http.StatusAccepted, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// SyncResult sends a sync outcome. Successes and skips are 200; failures map
// to the status of their underlying platform error.
func (h *BaseHandler) SyncResult(c *gin.Context, result salla.SyncResult) {
	body := dto.SyncResultResponse{
		Outcome:  result.Outcome.String(),
		RemoteID: result.RemoteID,
		Reason:   result.Reason,
		Message:  result.Message,
	}
	if result.Outcome != salla.OutcomeError {
		h.Success(c, body)
		return
	}

	code := errorCode(result.Err)
	c.JSON(dto.GetHTTPStatus(code), dto.Response{
		Success: false,
		Data:    body,
		Error: &dto.ErrorInfo{
			Code:      code,
			Message:   result.Message,
			RequestID: getRequestID(c),
		},
	})
}

// HandleSyncError converts platform and domain errors to HTTP responses
func (h *BaseHandler) HandleSyncError(c *gin.Context, err error) {
	code := errorCode(err)
	h.Error(c, dto.GetHTTPStatus(code), code, err.Error())
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return dto.ErrCodeInternal
	case salla.IsNotFound(err):
		return dto.ErrCodeNotFound
	case salla.IsAuthentication(err):
		return dto.ErrCodeUnauthorized
	default:
		if _, ok := salla.IsValidation(err); ok {
			return dto.ErrCodeValidation
		}
		if _, ok := salla.IsRateLimit(err); ok {
			return dto.ErrCodeRateLimited
		}
		if salla.IsTransient(err) {
			return dto.ErrCodeUpstream
		}
		return dto.ErrCodeInternal
	}
}
