// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/deepresearch/pkg/capability"
)

func init() {
	// Use a tiny base delay so tests finish quickly.
	BaseDelay = 1 * time.Millisecond
}

func TestDo_ImmediateSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 3, func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_TransientThenSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 3, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("timeout")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	want := errors.New("still broken")
	err := Do(context.Background(), 3, func(context.Context) error {
		calls++
		return want
	})
	assert.ErrorIs(t, err, want)
	assert.Equal(t, 3, calls)
}

func TestDo_AuthNeverRetried(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 3, func(context.Context) error {
		calls++
		return capability.NewAuthError("tavily", errors.New("401"))
	})
	assert.True(t, capability.IsAuthError(err))
	assert.Equal(t, 1, calls, "auth failures must fail immediately")
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	prev := BaseDelay
	BaseDelay = 50 * time.Millisecond
	defer func() { BaseDelay = prev }()

	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()
	err := Do(ctx, 3, func(context.Context) error {
		calls++
		return errors.New("transient")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDo_DefaultAttempts(t *testing.T) {
	calls := 0
	_ = Do(context.Background(), 0, func(context.Context) error {
		calls++
		return errors.New("transient")
	})
	assert.Equal(t, 3, calls)
}
