package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError es el error estándar que cruza la frontera HTTP de los flujos programáticos.
type AppError struct {
	Code       string
	Message    string
	Detail     string
	HTTPStatus int
	Err        error // causa original, solo para logs
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// Is matchea por Code, así errors.Is(err, ErrMissingEmail) funciona sobre copias.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

func New(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// FromError convierte cualquier error en AppError; lo desconocido es 500.
func FromError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return ErrInternal.WithCause(err)
}

// WithDetail devuelve una copia; los errores base son globales y no se mutan.
func (e *AppError) WithDetail(detail string) *AppError {
	cp := *e
	cp.Detail = detail
	return &cp
}

func (e *AppError) WithCause(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// 400

var (
	ErrBadRequest = New(http.StatusBadRequest, "bad_request",
		"The request is malformed or missing parameters.")
	ErrInvalidJSON = New(http.StatusBadRequest, "invalid_json",
		"The request body is not valid JSON.")
	ErrMissingField = New(http.StatusBadRequest, "missing_field",
		"A required field is missing.")
	ErrMissingCode = New(http.StatusBadRequest, "missing_code",
		"The authorization code is missing.")
	ErrInvalidProvider = New(http.StatusBadRequest, "invalid_provider",
		"Unknown or unconfigured provider.")
	ErrInvalidIntegration = New(http.StatusBadRequest, "invalid_integration",
		"The integration does not exist or belongs to another account.")
	ErrMissingEmail = New(http.StatusBadRequest, "missing_email",
		"The verified token does not carry an email address.")
	ErrBodyTooLarge = New(http.StatusRequestEntityTooLarge, "body_too_large",
		"The request body exceeds the maximum size.")
)

// 401 / 404 / 405 / 429

var (
	ErrUnauthorized = New(http.StatusUnauthorized, "unauthorized",
		"Authentication is required.")
	ErrInvalidPartnerToken = New(http.StatusUnauthorized, "invalid_partner_token",
		"The partner token could not be verified.")
	ErrNotFound = New(http.StatusNotFound, "not_found",
		"The requested resource was not found.")
	ErrMethodNotAllowed = New(http.StatusMethodNotAllowed, "method_not_allowed",
		"The HTTP method is not allowed for this resource.")
	ErrRateLimitExceeded = New(http.StatusTooManyRequests, "rate_limit_exceeded",
		"Too many requests. Try again later.")
)

// 500+

var (
	ErrInternal = New(http.StatusInternalServerError, "internal_error",
		"An internal error occurred.")
	ErrConfiguration = New(http.StatusInternalServerError, "configuration_error",
		"The server is missing required configuration.")
	ErrUpstream = New(http.StatusInternalServerError, "upstream_error",
		"An upstream provider call failed.")
	ErrBridgeFailed = New(http.StatusInternalServerError, "bridge_failed",
		"The local account could not be provisioned.")
	ErrServiceUnavailable = New(http.StatusServiceUnavailable, "service_unavailable",
		"The service is temporarily unavailable.")
)
