package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestConstructorsKeepMessages(t *testing.T) {
	err := NewValidationError("preview", "Preview must be 100 characters or less")

	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, "Preview must be 100 characters or less", err.Message())
	assert.Equal(t, "preview", err.Field)
	assert.ErrorIs(t, err, ErrValidation)

	notFound := NewNotFoundError("Builder not found")
	assert.Equal(t, "Builder not found", notFound.Error())
	assert.True(t, IsNotFound(notFound))
	assert.ErrorIs(t, NewForbiddenError("nope"), ErrForbidden)
	assert.Equal(t, http.StatusConflict, NewConflictError("Username is already taken").StatusCode)
}

func TestNewDatabaseError(t *testing.T) {
	t.Run("record not found", func(t *testing.T) {
		err := NewDatabaseError("find", "Project", fmt.Errorf("query: %w", gorm.ErrRecordNotFound))

		assert.Equal(t, http.StatusNotFound, err.StatusCode)
		assert.Equal(t, "Project not found", err.Message())
		assert.True(t, IsNotFound(err))
	})

	t.Run("api errors pass through", func(t *testing.T) {
		original := NewNotFoundError("Vote not found")

		assert.Same(t, original, NewDatabaseError("delete", "Vote", original))
	})

	t.Run("duplicate key", func(t *testing.T) {
		err := NewDatabaseError("update", "Builder", gorm.ErrDuplicatedKey)

		assert.Equal(t, http.StatusConflict, err.StatusCode)
		assert.True(t, IsUniqueConstraintViolationError(err))
	})

	t.Run("unknown failures are internal", func(t *testing.T) {
		cause := errors.New("syntax error at or near")
		err := NewDatabaseError("find", "Projects", cause)

		assert.True(t, err.IsServerError())
		assert.Contains(t, err.GetFullError(), "syntax error")
	})
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, StatusOf(Unauthorized))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("plain")))
}
