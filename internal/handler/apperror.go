package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrMissingToken       = &AppError{http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header required"}
	ErrInvalidToken       = &AppError{http.StatusUnauthorized, "INVALID_TOKEN", "Token is invalid or expired"}
	ErrInvalidCredentials = &AppError{http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password"}
	ErrLoginLocked        = &AppError{http.StatusForbidden, "LOGIN_LOCKED", "You have been locked out, please contact support"}
	ErrInvalidRequest     = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed   = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound   = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrInternalError      = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}
	ErrServiceUnavailable = &AppError{http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Service temporarily unavailable, please retry"}

	ErrEmailTaken      = &AppError{http.StatusConflict, "EMAIL_TAKEN", "Email already in use"}
	ErrUsernameTaken   = &AppError{http.StatusConflict, "USERNAME_TAKEN", "Username already in use"}
	ErrUserNotFound    = &AppError{http.StatusNotFound, "USER_NOT_FOUND", "User not found"}
	ErrAccountNotFound = &AppError{http.StatusNotFound, "ACCOUNT_NOT_FOUND", "Account not found"}
)
