package common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response standard API response envelope
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// Meta pagination metadata
type Meta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

// ErrorInfo error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// NewMeta creates Meta with computed total_pages
func NewMeta(page, perPage int, total int64) *Meta {
	totalPages := total / int64(perPage)
	if total%int64(perPage) > 0 {
		totalPages++
	}
	return &Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Success returns a success response
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// SuccessWithMeta returns a success response with pagination
func SuccessWithMeta(c *gin.Context, data interface{}, meta *Meta) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data, Meta: meta})
}

// Created returns a 201 Created response
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

// ErrorResponse returns an error response with the given status
func ErrorResponse(c *gin.Context, status int, message string, err error) {
	info := &ErrorInfo{
		Code:    errorCode(status),
		Message: message,
	}
	if err != nil {
		info.Details = err.Error()
	}
	c.JSON(status, Response{Success: false, Error: info})
}

// FailFromError maps a business error onto the right HTTP status.
// Unrecognized errors are infrastructure failures and render as 500.
func FailFromError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		ErrorResponse(c, http.StatusNotFound, "resource not found", err)
	case errors.Is(err, ErrPermissionDenied):
		ErrorResponse(c, http.StatusForbidden, "permission denied", err)
	case errors.Is(err, ErrInvalidState):
		ErrorResponse(c, http.StatusConflict, "conflicting state", err)
	case errors.Is(err, ErrValidation):
		ErrorResponse(c, http.StatusBadRequest, "invalid request", err)
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidToken), errors.Is(err, ErrExpiredToken):
		ErrorResponse(c, http.StatusUnauthorized, "unauthorized", err)
	default:
		ErrorResponse(c, http.StatusInternalServerError, "internal error", err)
	}
}

// errorCode generates error code from HTTP status
func errorCode(status int) string {
	switch status {
	case 400:
		return "BAD_REQUEST"
	case 401:
		return "UNAUTHORIZED"
	case 403:
		return "FORBIDDEN"
	case 404:
		return "NOT_FOUND"
	case 409:
		return "CONFLICT"
	case 500:
		return "INTERNAL_SERVER_ERROR"
	default:
		return "ERROR"
	}
}
