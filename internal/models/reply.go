package models

// Usage reports token accounting for one completion.
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// ModelReply is a successful completion: plain text, tool calls, or both.
// Failures are reported through the error return as *ModelError.
type ModelReply struct {
	Text      string            `json:"text,omitempty"`
	ToolCalls []ToolCallRequest `json:"tool_calls,omitempty"`
	Usage     Usage             `json:"usage"`
}

// HasToolCalls reports whether the model asked for at least one tool.
func (r ModelReply) HasToolCalls() bool {
	return len(r.ToolCalls) > 0
}
