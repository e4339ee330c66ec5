package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneMatchesTemplateByCode(t *testing.T) {
	err := Clone(ErrPlacementRejected, "room R1 is occupied")

	assert.True(t, errors.Is(err, ErrPlacementRejected))
	assert.False(t, errors.Is(err, ErrOverrideRequired))
	assert.Equal(t, "room R1 is occupied", err.Message)
	assert.Equal(t, "placement rejected", ErrPlacementRejected.Message, "template is untouched")
}

func TestStoreWrapsCause(t *testing.T) {
	err := Store(sql.ErrConnDone, "failed to load rooms")

	assert.Equal(t, http.StatusServiceUnavailable, err.Status)
	assert.True(t, errors.Is(err, ErrStore))
	assert.True(t, errors.Is(err, sql.ErrConnDone))
	assert.Contains(t, err.Error(), "failed to load rooms")
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	wrapped := fmt.Errorf("auto-assign: %w", ErrPassInProgress)
	got := FromError(wrapped)
	require.NotNil(t, got)
	assert.Equal(t, http.StatusConflict, got.Status)

	plain := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, plain.Code)
	assert.Equal(t, http.StatusInternalServerError, plain.Status)
}

func TestTaxonomyStatuses(t *testing.T) {
	cases := map[*Error]int{
		ErrValidation:        http.StatusBadRequest,
		ErrNotFound:          http.StatusNotFound,
		ErrStore:             http.StatusServiceUnavailable,
		ErrPassInProgress:    http.StatusConflict,
		ErrPlacementRejected: http.StatusUnprocessableEntity,
		ErrOverrideRequired:  http.StatusPreconditionRequired,
	}
	for e, status := range cases {
		assert.Equal(t, status, e.Status, e.Code)
	}
}
