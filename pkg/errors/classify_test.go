package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		category Category
		message  string
	}{
		{
			name:     "validation",
			err:      &ErrValidation{Errors: []string{"缺少電話", "統一編號必須是 8 位數字"}},
			category: CategoryValidation,
			message:  "資料驗證失敗: 缺少電話, 統一編號必須是 8 位數字",
		},
		{
			name:     "network",
			err:      NewNetworkError("submit", stderrors.New("connection refused")),
			category: CategoryNetwork,
			message:  MessageNetwork,
		},
		{
			name:     "timeout",
			err:      NewNetworkError("submit", context.DeadlineExceeded),
			category: CategoryTimeout,
			message:  MessageTimeout,
		},
		{
			name:     "forbidden",
			err:      &ErrConfiguration{StatusCode: 403, Reason: "denied"},
			category: CategoryConfiguration,
			message:  MessagePermission,
		},
		{
			name:     "not found",
			err:      &ErrConfiguration{StatusCode: 404, Reason: "missing"},
			category: CategoryConfiguration,
			message:  MessageEndpoint,
		},
		{
			name:     "server",
			err:      &ErrServer{StatusCode: 500, Message: "Exception"},
			category: CategoryServer,
			message:  MessageServer,
		},
		{
			name:     "wrapped server",
			err:      fmt.Errorf("attempt 2: %w", &ErrServer{StatusCode: 502}),
			category: CategoryServer,
			message:  MessageServer,
		},
		{
			name:     "unknown",
			err:      stderrors.New("odd"),
			category: CategoryUnknown,
			message:  "送出失敗: odd。請稍後再試或聯繫我們 (help@example.com)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.category, CategoryOf(tt.err))
			assert.Equal(t, tt.message, Classify(tt.err, "help@example.com"))
		})
	}
}

func TestClassifyNil(t *testing.T) {
	assert.Equal(t, Category(""), CategoryOf(nil))
	assert.Empty(t, Classify(nil, "x"))
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(&ErrValidation{Errors: []string{"x"}}))
	assert.True(t, IsRetryable(&ErrServer{StatusCode: 500}))
	assert.True(t, IsRetryable(NewNetworkError("submit", stderrors.New("reset"))))
}

func TestNetworkErrorUnwrap(t *testing.T) {
	err := NewNetworkError("probe", context.DeadlineExceeded)
	assert.True(t, err.Timeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
