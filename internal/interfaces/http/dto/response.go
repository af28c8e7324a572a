package dto

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data interface{}) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// NewErrorResponseWithRequestID creates an error response carrying the
// request id for correlation.
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:      code,
			Message:   message,
			RequestID: requestID,
		},
	}
}

// SyncResultResponse is the body returned by manual sync triggers.
type SyncResultResponse struct {
	Outcome  string `json:"outcome"`
	RemoteID string `json:"remote_id,omitempty"`
	Reason   string `json:"reason,omitempty"`
	Message  string `json:"message,omitempty"`
}

// ImportSummaryResponse is the body returned by bulk import triggers.
type ImportSummaryResponse struct {
	Pages     int `json:"pages"`
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

// WebhookAckResponse acknowledges a verified webhook delivery.
type WebhookAckResponse struct {
	Status string `json:"status"`
	Event  string `json:"event"`
}
