package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneKeepsIdentity(t *testing.T) {
	err := Clone(ErrInvalidState, "Booking is no longer pending")

	assert.Equal(t, "Booking is no longer pending", err.Message)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.True(t, errors.Is(err, ErrInvalidState))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "invalid state transition", ErrInvalidState.Message)
}

func TestFromErrorWrapsUnknownErrors(t *testing.T) {
	wrapped := FromError(fmt.Errorf("query bookings: %w", sql.ErrConnDone))

	assert.Equal(t, ErrInternal.Code, wrapped.Code)
	assert.Equal(t, http.StatusInternalServerError, wrapped.Status)
	assert.True(t, errors.Is(wrapped, sql.ErrConnDone))
	assert.Nil(t, FromError(nil))
}

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	typed := Clone(ErrNotFound, "Booking not found")
	assert.Same(t, typed, FromError(fmt.Errorf("accept: %w", typed)))
}
