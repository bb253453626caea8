package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrDatabaseQuery      = errors.New("database query failed")
	ErrDatabaseConnection = errors.New("database connection failed")
)

// Database & Storage Specific Errors
var (
	ErrUniqueConstraintViolation = errors.New("unique constraint violation")
	ErrForeignKeyConstraint      = errors.New("foreign key constraint violation")
	ErrStorageUpload             = errors.New("storage upload failed")
)

// NewDatabaseError creates a new database error with details about the operation.
// Errors that are already ApiErrs pass through untouched.
func NewDatabaseError(operation, entity string, cause error) *ApiErr {
	var apiErr *ApiErr
	if errors.As(cause, &apiErr) {
		return apiErr
	}

	details := fmt.Sprintf("Failed to %s %s", operation, entity)

	if cause != nil {
		if errors.Is(cause, gorm.ErrRecordNotFound) {
			return &ApiErr{
				StatusCode: http.StatusNotFound,
				err:        fmt.Errorf("%s %w", entity, ErrNotFound),
				Cause:      cause,
			}
		}
		if errors.Is(cause, gorm.ErrDuplicatedKey) {
			return NewUniqueConstraintViolationError(entity, cause)
		}
		if errors.Is(cause, gorm.ErrForeignKeyViolated) {
			return NewForeignKeyConstraintError(entity, cause)
		}

		errStr := strings.ToLower(cause.Error())
		switch {
		case strings.Contains(errStr, "duplicate key"), strings.Contains(errStr, "unique constraint"):
			return NewUniqueConstraintViolationError(entity, cause)
		case strings.Contains(errStr, "foreign key constraint"):
			return NewForeignKeyConstraintError(entity, cause)
		case strings.Contains(errStr, "connection refused"), strings.Contains(errStr, "bad connection"):
			return &ApiErr{
				StatusCode: http.StatusServiceUnavailable,
				err:        ErrDatabaseConnection,
				Details:    "Unable to connect to database",
				Cause:      cause,
			}
		}
	}

	// Generic database error
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrDatabaseQuery,
		Details:    details,
		Cause:      cause,
	}
}

func NewUniqueConstraintViolationError(entity string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusConflict,
		err:        fmt.Errorf("%s already exists: %w", entity, ErrUniqueConstraintViolation),
		Cause:      cause,
	}
}

func NewForeignKeyConstraintError(entity string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        fmt.Errorf("invalid reference in %s: %w", entity, ErrForeignKeyConstraint),
		Details:    "The referenced resource does not exist or cannot be linked",
		Cause:      cause,
	}
}

func NewStorageUploadError(object string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadGateway,
		err:        ErrStorageUpload,
		Details:    fmt.Sprintf("Could not store %s", object),
		Cause:      cause,
	}
}

func IsUniqueConstraintViolationError(err error) bool {
	return errors.Is(err, ErrUniqueConstraintViolation)
}
