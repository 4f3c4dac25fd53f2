package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIError_WithDetailsDoesNotMutateSentinel(t *testing.T) {
	withDetails := ErrNotFound.WithDetails("Profile not found.")

	assert.Nil(t, ErrNotFound.Details)
	assert.Equal(t, "Profile not found.", withDetails.Details)
	assert.Equal(t, http.StatusNotFound, withDetails.StatusCode)
}

func TestAPIError_IsMatchesByCode(t *testing.T) {
	wrapped := fmt.Errorf("repository: %w", ErrNotFound.WithDetails("x"))

	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrConflict))
	assert.False(t, errors.Is(errors.New("plain"), ErrNotFound))
}

func TestIsAPIError(t *testing.T) {
	apiErr, ok := IsAPIError(fmt.Errorf("wrapped: %w", ErrForbidden.WithMessage("Accès refusé.")))
	assert.True(t, ok)
	assert.Equal(t, "Accès refusé.", apiErr.Message)

	_, ok = IsAPIError(errors.New("plain"))
	assert.False(t, ok)
}
