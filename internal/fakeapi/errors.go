package fakeapi

import (
	"errors"
	"net/http"
)

// Errors returned by the store. Each maps to one status and detail message.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrUnauthorized       = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidDepartment  = errors.New("invalid department")
	ErrInvalidVersion     = errors.New("invalid version")
	ErrBadDepartmentIDs   = errors.New("bad department ids")
)

// MapError translates a store error to a status code and detail message.
func MapError(err error) (status int, detail string) {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "Document not found"
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, "Not allowed"
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, "Not authenticated"
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusBadRequest, "Invalid email or password"
	case errors.Is(err, ErrEmailTaken):
		return http.StatusBadRequest, "Email already registered"
	case errors.Is(err, ErrInvalidDepartment):
		return http.StatusBadRequest, "Invalid department_id"
	case errors.Is(err, ErrInvalidVersion):
		return http.StatusBadRequest, "Invalid version"
	case errors.Is(err, ErrBadDepartmentIDs):
		return http.StatusBadRequest, "permission_department_ids must be comma-separated integers"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
