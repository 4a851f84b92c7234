package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("load timetable: %w", Clone(ErrNotFound, "timetable not found"))

	got := FromError(wrapped)
	require.NotNil(t, got)
	assert.Equal(t, ErrNotFound.Code, got.Code)
	assert.Equal(t, http.StatusNotFound, got.Status)
	assert.Equal(t, "timetable not found", got.Message)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	cause := errors.New("connection reset")

	got := FromError(cause)
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.ErrorIs(t, got, cause)
	assert.Nil(t, FromError(nil))
}

func TestCloneDoesNotMutateOriginal(t *testing.T) {
	clone := Clone(ErrMalformedConstraint, "constraint 4 is malformed")
	assert.Equal(t, "constraint 4 is malformed", clone.Message)
	assert.Equal(t, "constraint data is malformed", ErrMalformedConstraint.Message)
	assert.Equal(t, http.StatusUnprocessableEntity, clone.Status)
}

func TestWrapFormatsCause(t *testing.T) {
	err := Wrap(errors.New("boom"), ErrInternal.Code, ErrInternal.Status, "failed to generate timetable")
	assert.Equal(t, "failed to generate timetable: boom", err.Error())
}
