package ports

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollaboratorErrorUnwrap(t *testing.T) {
	t.Parallel()

	base := errors.New("boom")
	err := fmt.Errorf("summarize: %w", NewCollaboratorError("chatgpt", FailureQuota, base))

	kind, ok := FailureKindOf(err)
	require.True(t, ok)
	assert.Equal(t, FailureQuota, kind)
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "chatgpt quota failure")
}

func TestNewCollaboratorErrorDeadline(t *testing.T) {
	t.Parallel()

	err := NewCollaboratorError("ml", FailureTransient, fmt.Errorf("post: %w", context.DeadlineExceeded))
	assert.Equal(t, FailureTimeout, err.Kind)
}

func TestFailureKindOfPlainError(t *testing.T) {
	t.Parallel()

	_, ok := FailureKindOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestKindForStatus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, FailureAuth, KindForStatus(http.StatusUnauthorized))
	assert.Equal(t, FailureAuth, KindForStatus(http.StatusForbidden))
	assert.Equal(t, FailureQuota, KindForStatus(http.StatusTooManyRequests))
	assert.Equal(t, FailureTimeout, KindForStatus(http.StatusGatewayTimeout))
	assert.Equal(t, FailureTransient, KindForStatus(http.StatusBadGateway))
	assert.Equal(t, FailureMalformed, KindForStatus(http.StatusBadRequest))
}

func TestKindForTransportError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, FailureTimeout, KindForTransportError(fmt.Errorf("do: %w", context.DeadlineExceeded)))
	assert.Equal(t, FailureTransient, KindForTransportError(errors.New("connection refused")))
}
