package models

import (
	"encoding/json"
	"fmt"
	"maps"
)

// Parameter describes one named tool argument.
type Parameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // string, integer, number, boolean, array, object
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// ToolDescriptor is the static metadata advertised to the model.
type ToolDescriptor struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []Parameter `json:"parameters"`
}

// JSONSchema renders the parameters as a JSON-schema object.
func (d ToolDescriptor) JSONSchema() map[string]any {
	props := make(map[string]any, len(d.Parameters))
	required := make([]string, 0, len(d.Parameters))
	for _, p := range d.Parameters {
		props[p.Name] = map[string]any{
			"type":        p.Type,
			"description": p.Description,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

// Param looks up a parameter by name.
func (d ToolDescriptor) Param(name string) (Parameter, bool) {
	for _, p := range d.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// ToolCallRequest is a tool invocation requested by the model. It is external
// input: the name may not be registered and the arguments may not match.
type ToolCallRequest struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

func (c ToolCallRequest) Clone() ToolCallRequest {
	c.Arguments = maps.Clone(c.Arguments)
	return c
}

// FailureKind classifies a failed tool execution.
type FailureKind string

const (
	FailureNotFound         FailureKind = "not_found"
	FailurePermissionDenied FailureKind = "permission_denied"
	FailureInvalidArgument  FailureKind = "invalid_argument"
	FailureInternal         FailureKind = "internal"
	FailureUnknownTool      FailureKind = "unknown_tool"
)

// ToolResult is the outcome of one tool invocation, correlated to its request
// through CallID.
type ToolResult struct {
	CallID     string      `json:"call_id"`
	Name       string      `json:"name"`
	Success    bool        `json:"success"`
	Output     string      `json:"output,omitempty"`
	Data       any         `json:"data,omitempty"`
	Failure    FailureKind `json:"failure,omitempty"`
	Error      string      `json:"error,omitempty"`
	DurationMs int64       `json:"duration_ms"`
}

// Succeeded builds a success result.
func Succeeded(output string, data any) ToolResult {
	return ToolResult{Success: true, Output: output, Data: data}
}

// Failed builds a failure result.
func Failed(kind FailureKind, format string, args ...any) ToolResult {
	return ToolResult{Failure: kind, Error: fmt.Sprintf(format, args...)}
}

// Content is the text fed back to the model for this result.
func (r ToolResult) Content() string {
	if !r.Success {
		return fmt.Sprintf("error (%s): %s", r.Failure, r.Error)
	}
	if r.Output != "" || r.Data == nil {
		return r.Output
	}
	b, err := json.Marshal(r.Data)
	if err != nil {
		return fmt.Sprintf("%v", r.Data)
	}
	return string(b)
}
