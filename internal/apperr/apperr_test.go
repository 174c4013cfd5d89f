package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:     http.StatusBadRequest,
		KindConflict:       http.StatusBadRequest,
		KindAuthentication: http.StatusUnauthorized,
		KindAuthorization:  http.StatusForbidden,
		KindNotFound:       http.StatusNotFound,
		KindNotImplemented: http.StatusNotImplemented,
		KindInternal:       http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, kind.Status())
	}
}

func TestAsFindsWrappedError(t *testing.T) {
	wrapped := fmt.Errorf("create bin: %w", Conflict("Bin code already exists", "dup"))

	got := As(wrapped)
	require.NotNil(t, got)
	assert.Equal(t, KindConflict, got.Kind)
	assert.Equal(t, "Bin code already exists", got.Summary)
}

func TestAsDefaultsToInternal(t *testing.T) {
	cause := errors.New("connection reset")

	got := As(cause)
	assert.Equal(t, KindInternal, got.Kind)
	assert.ErrorIs(t, got, cause)
}
