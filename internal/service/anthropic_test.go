package service_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vooagent/voo/internal/models"
	"github.com/vooagent/voo/internal/service"
)

func TestAnthropicCompleteText(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		body = decodeBody(t, r)
		writeJSON(w, http.StatusOK, `{
			"id": "msg_1", "type": "message", "role": "assistant", "model": "claude-test",
			"content": [{"type": "text", "text": "Found "}, {"type": "text", "text": "a.txt."}],
			"stop_reason": "end_turn", "stop_sequence": null,
			"usage": {"input_tokens": 12, "output_tokens": 4}
		}`)
	}))
	defer srv.Close()

	c := service.NewAnthropicClient("test-key", "claude-test", srv.URL+"/", 0)
	reply, err := c.Complete(context.Background(), toolRoundTranscript(), fsDescriptors())
	require.NoError(t, err)
	assert.Equal(t, "Found a.txt.", reply.Text)
	assert.False(t, reply.HasToolCalls())
	assert.Equal(t, models.Usage{InputTokens: 12, OutputTokens: 4}, reply.Usage)

	assert.Equal(t, "claude-test", body["model"])
	system := body["system"].([]any)
	assert.Equal(t, "You are VOO.", system[0].(map[string]any)["text"])

	toolsSent := body["tools"].([]any)
	require.Len(t, toolsSent, 2)
	assert.Equal(t, "read_file", toolsSent[0].(map[string]any)["name"])

	// user, assistant tool_use, one user message with both results
	messages := body["messages"].([]any)
	require.Len(t, messages, 3)
	assistant := messages[1].(map[string]any)
	assert.Equal(t, "assistant", assistant["role"])
	assert.Len(t, assistant["content"], 2)

	results := messages[2].(map[string]any)
	assert.Equal(t, "user", results["role"])
	blocks := results["content"].([]any)
	require.Len(t, blocks, 2)
	first, second := blocks[0].(map[string]any), blocks[1].(map[string]any)
	assert.Equal(t, "tool_result", first["type"])
	assert.Equal(t, "c1", first["tool_use_id"])
	assert.Equal(t, "c2", second["tool_use_id"])
	assert.Equal(t, true, second["is_error"])
}

func TestAnthropicCompleteToolUse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{
			"id": "msg_2", "type": "message", "role": "assistant", "model": "claude-test",
			"content": [
				{"type": "text", "text": "Let me look."},
				{"type": "tool_use", "id": "toolu_1", "name": "read_file", "input": {"path": "a.txt"}}
			],
			"stop_reason": "tool_use", "stop_sequence": null,
			"usage": {"input_tokens": 3, "output_tokens": 9}
		}`)
	}))
	defer srv.Close()

	c := service.NewAnthropicClient("test-key", "claude-test", srv.URL+"/", 256)
	reply, err := c.Complete(context.Background(), models.Transcript{Turns: []models.Turn{models.NewUserTurn("read a.txt")}}, fsDescriptors())
	require.NoError(t, err)
	assert.Equal(t, "Let me look.", reply.Text)
	require.Len(t, reply.ToolCalls, 1)
	assert.Equal(t, models.ToolCallRequest{ID: "toolu_1", Name: "read_file", Arguments: map[string]any{"path": "a.txt"}}, reply.ToolCalls[0])
}

func TestAnthropicErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		retryAfter string
		kind       models.ErrorKind
		wait       time.Duration
	}{
		{"unauthorized", http.StatusUnauthorized, "", models.KindAuthExpired, 0},
		{"rate limited", http.StatusTooManyRequests, "2", models.KindRateLimited, 2 * time.Second},
		{"overloaded", 529, "", models.KindTransient, 0},
		{"bad request", http.StatusBadRequest, "", models.KindInvalidRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				if tt.retryAfter != "" {
					w.Header().Set("Retry-After", tt.retryAfter)
				}
				writeJSON(w, tt.status, `{"type": "error", "error": {"type": "api_error", "message": "nope"}}`)
			}))
			defer srv.Close()

			c := service.NewAnthropicClient("test-key", "claude-test", srv.URL+"/", 0)
			_, err := c.Complete(context.Background(), models.Transcript{Turns: []models.Turn{models.NewUserTurn("hi")}}, nil)
			require.Error(t, err)

			var me *models.ModelError
			require.ErrorAs(t, err, &me)
			assert.Equal(t, tt.kind, me.Kind)
			assert.Equal(t, tt.status, me.StatusCode)
			assert.Equal(t, "anthropic", me.Provider)
			assert.Equal(t, tt.wait, me.RetryAfter)
			assert.Equal(t, 1, calls, "the SDK must not retry on its own")
		})
	}
}

func TestAnthropicMalformedToolInput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{
			"id": "msg_3", "type": "message", "role": "assistant", "model": "claude-test",
			"content": [{"type": "tool_use", "id": "toolu_1", "name": "read_file", "input": ["not", "an", "object"]}],
			"stop_reason": "tool_use", "stop_sequence": null,
			"usage": {"input_tokens": 1, "output_tokens": 1}
		}`)
	}))
	defer srv.Close()

	c := service.NewAnthropicClient("test-key", "claude-test", srv.URL+"/", 0)
	_, err := c.Complete(context.Background(), models.Transcript{Turns: []models.Turn{models.NewUserTurn("hi")}}, nil)
	assert.Equal(t, models.KindMalformedResponse, models.KindOf(err))
}
