package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithKeepsSentinelIdentity(t *testing.T) {
	cause := errors.New("connection reset")
	err := ErrCatalogUnavailable.With(cause, "umd.io unreachable")

	assert.True(t, errors.Is(err, ErrCatalogUnavailable))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrCourseNotFound))
	assert.Equal(t, http.StatusBadGateway, err.Status)
	assert.Equal(t, "umd.io unreachable: connection reset", err.Error())
	assert.Equal(t, "course catalog unavailable", ErrCatalogUnavailable.Message)
	assert.Nil(t, ErrCatalogUnavailable.Err)
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	wrapped := fmt.Errorf("load: %w", Clone(ErrCourseNotFound, "CMSC999 not found"))
	got := FromError(wrapped)
	assert.Equal(t, "COURSE_NOT_FOUND", got.Code)
	assert.Equal(t, "CMSC999 not found", got.Message)

	internal := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, internal.Code)
	assert.Equal(t, http.StatusInternalServerError, internal.Status)
}
