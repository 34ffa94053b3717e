package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindsSurviveWrapping(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("edit comment: %w", Forbidden("only the author can edit comment %d", 7))

	assert.ErrorIs(t, err, ErrForbidden)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.True(t, IsClientError(err))
	assert.Equal(t, "only the author can edit comment 7", Reason(err))
}

func TestReasonOfBareKind(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "no change", Reason(ErrNoChange))
}

func TestInternalErrorIsNotClientError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("insert comment: %w", errors.New("connection reset by peer"))
	assert.False(t, IsClientError(err))
	assert.Equal(t, err.Error(), Reason(err))
}
