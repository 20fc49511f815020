// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/deepresearch/pkg/capability"
)

func TestComplete(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		fmt.Fprint(w, `{
			"choices": [{"message": {"content": "Qubits hold superpositions."}}],
			"usage": {"prompt_tokens": 42, "completion_tokens": 7}
		}`)
	}))
	defer ts.Close()

	c := New("sk-test", WithBaseURL(ts.URL))
	completion, err := c.Complete(context.Background(), capability.CompletionRequest{
		Messages:    []capability.Message{{Role: "user", Content: "What is a qubit?"}},
		Model:       "gpt-4o",
		Temperature: 0.2,
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "gpt-4o", gotReq.Model)
	assert.False(t, gotReq.Stream)

	assert.Equal(t, "Qubits hold superpositions.", completion.Text)
	assert.Equal(t, "gpt-4o", completion.Usage.Model)
	assert.Equal(t, 49, completion.Usage.Total())
}

func TestCompleteDefaultsModel(t *testing.T) {
	var gotReq chatRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		fmt.Fprint(w, `{"choices": [{"message": {"content": "ok"}}], "usage": {}}`)
	}))
	defer ts.Close()

	c := New("sk-test", WithBaseURL(ts.URL))
	_, err := c.Complete(context.Background(), capability.CompletionRequest{
		Messages: []capability.Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, defaultModel, gotReq.Model)
}

func TestCompleteErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		isAuth      bool
		isRateLimit bool
	}{
		{"unauthorized", http.StatusUnauthorized, true, false},
		{"forbidden", http.StatusForbidden, true, false},
		{"rate limited", http.StatusTooManyRequests, false, true},
		{"server error", http.StatusInternalServerError, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, `{"error": {"message": "nope"}}`)
			}))
			defer ts.Close()

			c := New("sk-test", WithBaseURL(ts.URL))
			_, err := c.Complete(context.Background(), capability.CompletionRequest{
				Messages: []capability.Message{{Role: "user", Content: "hi"}},
			})
			require.Error(t, err)
			assert.Equal(t, tt.isAuth, capability.IsAuthError(err))
			assert.Equal(t, tt.isRateLimit, capability.IsRateLimited(err))
		})
	}
}

func TestStream(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)
		require.NotNil(t, req.StreamOptions)
		assert.True(t, req.StreamOptions.IncludeUsage)

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Qubits \"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"hold state.\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[],\"usage\":{\"prompt_tokens\":20,\"completion_tokens\":5}}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer ts.Close()

	c := New("sk-test", WithBaseURL(ts.URL))
	ch, err := c.Stream(context.Background(), capability.CompletionRequest{
		Messages: []capability.Message{{Role: "user", Content: "What is a qubit?"}},
		Model:    "gpt-4o",
	})
	require.NoError(t, err)

	var text string
	var final capability.StreamChunk
	for chunk := range ch {
		if chunk.Done {
			final = chunk
			continue
		}
		text += chunk.Text
	}

	assert.Equal(t, "Qubits hold state.", text)
	assert.True(t, final.Done)
	assert.Equal(t, 25, final.Usage.Total())
	assert.Equal(t, "gpt-4o", final.Usage.Model)
}

func TestStreamTruncated(t *testing.T) {
	tests := []struct {
		name string
		// dropConn severs the TCP connection mid-stream; false ends the
		// response cleanly but without the [DONE] sentinel.
		dropConn bool
	}{
		{"connection dropped", true},
		{"missing done sentinel", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/event-stream")
				fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"partial \"}}]}\n\n")
				w.(http.Flusher).Flush()
				if tt.dropConn {
					conn, _, err := w.(http.Hijacker).Hijack()
					require.NoError(t, err)
					conn.Close()
				}
			}))
			defer ts.Close()

			c := New("sk-test", WithBaseURL(ts.URL))
			ch, err := c.Stream(context.Background(), capability.CompletionRequest{
				Messages: []capability.Message{{Role: "user", Content: "What is a qubit?"}},
			})
			require.NoError(t, err)

			var text string
			var final capability.StreamChunk
			for chunk := range ch {
				if chunk.Done {
					final = chunk
					continue
				}
				text += chunk.Text
			}

			assert.Equal(t, "partial ", text)
			require.True(t, final.Done)
			require.Error(t, final.Err)

			var pe *capability.ProviderError
			require.ErrorAs(t, final.Err, &pe)
			assert.Equal(t, capability.KindOther, pe.Kind)
		})
	}
}

func TestStreamAuthError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	c := New("bad-key", WithBaseURL(ts.URL))
	_, err := c.Stream(context.Background(), capability.CompletionRequest{
		Messages: []capability.Message{{Role: "user", Content: "hi"}},
	})
	require.Error(t, err)
	assert.True(t, capability.IsAuthError(err))
}

func TestEmbed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embeddings", r.URL.Path)
		fmt.Fprint(w, `{"data": [{"embedding": [0.1, 0.2]}, {"embedding": [0.3, 0.4]}]}`)
	}))
	defer ts.Close()

	c := New("sk-test", WithBaseURL(ts.URL))
	vectors, err := c.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float64{0.1, 0.2}, vectors[0])
}
