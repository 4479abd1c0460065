package utils

import "net/http"

// APIResponse is the envelope every endpoint responds with.
type APIResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

func NewResponse(statusCode int, data any, message string) APIResponse {
	return APIResponse{
		StatusCode: statusCode,
		Data:       data,
		Message:    message,
		Success:    statusCode < http.StatusBadRequest,
	}
}

// APIError is an error that knows which HTTP status it maps to.
type APIError struct {
	StatusCode int
	Message    string
}

func NewAPIError(statusCode int, message string) *APIError {
	return &APIError{StatusCode: statusCode, Message: message}
}

func (e *APIError) Error() string {
	return e.Message
}

func BadRequest(message string) *APIError   { return NewAPIError(http.StatusBadRequest, message) }
func Unauthorized(message string) *APIError { return NewAPIError(http.StatusUnauthorized, message) }
func Forbidden(message string) *APIError    { return NewAPIError(http.StatusForbidden, message) }
func NotFound(message string) *APIError     { return NewAPIError(http.StatusNotFound, message) }
func Conflict(message string) *APIError     { return NewAPIError(http.StatusConflict, message) }
