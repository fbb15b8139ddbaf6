package dto

import "github.com/bizhub/backend/internal/domain/shared"

// Response is the envelope of every API response. Data is always written,
// null on failures and on successes without a body, so clients can tell the
// two shapes apart by the success flag alone.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data"`
	Message string     `json:"message,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
}

// ErrorInfo describes a failed request
type ErrorInfo struct {
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	RequestID string             `json:"request_id,omitempty"`
	Details   []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail names one invalid request field
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Meta is pagination metadata on list responses
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

func NewSuccessResponse(data any) Response {
	return Response{Success: true, Data: data}
}

// NewSuccessResponseWithMessage adds a human readable message
func NewSuccessResponseWithMessage(data any, message string) Response {
	return Response{Success: true, Data: data, Message: message}
}

// NewSuccessResponseWithMeta builds a list response. Page and size are
// normalized the same way repositories normalize them.
func NewSuccessResponseWithMeta(data any, total int64, page, pageSize int) Response {
	f := shared.Filter{Page: page, PageSize: pageSize}.Normalize()
	p := shared.NewPaginated[struct{}](nil, total, f.Page, f.PageSize)
	return Response{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Total:      p.Total,
			Page:       p.Page,
			PageSize:   p.PageSize,
			TotalPages: p.TotalPages,
		},
	}
}

func NewErrorResponse(code, message string) Response {
	return Response{Success: false, Error: &ErrorInfo{Code: code, Message: message}}
}

// NewErrorResponseWithRequestID echoes the request id so a report can be
// matched to its log line
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	return Response{Success: false, Error: &ErrorInfo{Code: code, Message: message, RequestID: requestID}}
}

func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:      ErrCodeValidation,
			Message:   message,
			RequestID: requestID,
			Details:   details,
		},
	}
}

// IDRequest binds an :id path parameter
type IDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}
