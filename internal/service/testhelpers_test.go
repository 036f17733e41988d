package service_test

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vooagent/voo/internal/models"
)

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// toolRoundTranscript is a user request, one agent turn asking for two tools
// and both results, one of them failed.
func toolRoundTranscript() models.Transcript {
	return models.Transcript{
		System: "You are VOO.",
		Turns: []models.Turn{
			models.NewUserTurn("what is here?"),
			models.NewAgentTurn("", []models.ToolCallRequest{
				{ID: "c1", Name: "list_files", Arguments: map[string]any{"path": "."}},
				{ID: "c2", Name: "read_file", Arguments: map[string]any{"path": "gone.txt"}},
			}),
			models.NewToolResultTurn(models.ToolResult{CallID: "c1", Name: "list_files", Success: true, Output: "a.txt"}),
			models.NewToolResultTurn(models.ToolResult{CallID: "c2", Name: "read_file", Failure: models.FailureNotFound, Error: "gone.txt does not exist"}),
		},
	}
}

func fsDescriptors() []models.ToolDescriptor {
	return []models.ToolDescriptor{
		{
			Name:        "read_file",
			Description: "Read a file",
			Parameters:  []models.Parameter{{Name: "path", Type: "string", Description: "file path", Required: true}},
		},
		{Name: "ping", Description: "No arguments"},
	}
}
