package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorIs(t *testing.T) {
	wrapped := ErrStorage.WithMessage("insert failed").WithCause(errors.New("connection refused"))

	assert.True(t, errors.Is(wrapped, ErrStorage))
	assert.False(t, errors.Is(wrapped, ErrConfig))

	// Matching survives an extra fmt wrap.
	doubled := fmt.Errorf("run aborted: %w", wrapped)
	assert.True(t, errors.Is(doubled, ErrStorage))
}

func TestErrorString(t *testing.T) {
	err := ErrSource.WithMessage("portal unreachable").WithCause(errors.New("dial timeout"))
	assert.Equal(t, "SOURCE_ERROR: portal unreachable (caused by: dial timeout)", err.Error())

	bare := ErrDuplicateKey
	assert.Equal(t, "DUPLICATE_KEY: record already persisted", bare.Error())
}

func TestWithCauseDoesNotMutateSentinel(t *testing.T) {
	_ = ErrConfig.WithCause(errors.New("boom"))
	assert.Nil(t, ErrConfig.Cause)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want bool
	}{
		{name: "storage defaults retryable", err: ErrStorage, want: true},
		{name: "source defaults retryable", err: ErrSource, want: true},
		{name: "config never retryable", err: ErrConfig, want: false},
		{name: "duplicate never retryable", err: ErrDuplicateKey, want: false},
		{name: "explicit fatal wins", err: ErrStorage.AsFatal(), want: false},
		{name: "explicit retryable wins", err: ErrConfig.AsRetryable(), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.IsRetryable())
			assert.Equal(t, !tt.want, tt.err.IsFatal())
		})
	}
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrStorage))

	cause := errors.New("bad connection")
	err := Wrap(cause, ErrStorage)
	require.NotNil(t, err)
	assert.True(t, errors.Is(err, ErrStorage))
	assert.True(t, errors.Is(err, cause))
}
