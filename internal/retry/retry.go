// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retry wraps capability calls with exponential backoff. Credential
// failures are never retried; everything else is treated as transient.
package retry

import (
	"context"
	"time"

	"github.com/pdiddy/deepresearch/pkg/capability"
)

// BaseDelay controls the base duration for exponential backoff. The delay
// doubles each attempt: 1 s, 2 s, 4 s. Tests override this to avoid real
// sleeps.
var BaseDelay = 1 * time.Second

const defaultAttempts = 3

// Do invokes fn up to attempts times, sleeping with exponential backoff
// between failures. When attempts is 0 the default (3) is used. An auth
// failure (capability.KindAuth) aborts immediately without further
// attempts. If the context is cancelled during a backoff wait, Do returns
// ctx.Err(). After exhausting attempts the last error is returned.
func Do(ctx context.Context, attempts int, fn func(ctx context.Context) error) error {
	if attempts <= 0 {
		attempts = defaultAttempts
	}

	var err error
	delay := BaseDelay
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		err = fn(ctx)
		if err == nil {
			return nil
		}
		if capability.IsAuthError(err) {
			return err
		}
	}
	return err
}
