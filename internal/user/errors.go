package user

import "github.com/wichananm65/account-service/internal/apperror"

var (
	ErrMissingFields      = apperror.New(apperror.Validation, "Missing required fields")
	ErrWeakPassword       = apperror.New(apperror.Validation, "Password must be at least 8 characters long")
	ErrPasswordTooLong    = apperror.New(apperror.Validation, "Password must be at most 72 bytes long")
	ErrInvalidBody        = apperror.New(apperror.Validation, "Invalid request body")
	ErrInvalidUserID      = apperror.New(apperror.Validation, "Invalid user id")
	ErrDuplicateEmail     = apperror.New(apperror.Conflict, "User with this email already exists")
	ErrNotFound           = apperror.New(apperror.NotFound, "User not found")
	ErrTargetNotFound     = apperror.New(apperror.NotFound, "User to delete not found")
	ErrInvalidCredentials = apperror.New(apperror.Auth, "Invalid credentials")
	ErrListForbidden      = apperror.New(apperror.Forbidden, "Unauthorized access, admin can access this page")
	ErrDeleteForbidden    = apperror.New(apperror.Forbidden, "Unauthorized access, admin privilege required")
	ErrAdminProtected     = apperror.New(apperror.Forbidden, "Cannot delete other admins")
	ErrPayloadTooLarge    = apperror.New(apperror.Payload, "Maximum total file size is 50MB")
)
