package models

import "time"

// Role identifies who produced a turn.
type Role string

const (
	RoleUser       Role = "user"
	RoleAgent      Role = "agent"
	RoleToolResult Role = "tool-result"
)

// Turn is one entry in the conversation transcript.
type Turn struct {
	Role      Role              `json:"role"`
	Text      string            `json:"text,omitempty"`
	ToolCalls []ToolCallRequest `json:"tool_calls,omitempty"`
	Result    *ToolResult       `json:"result,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Transcript is the ordered history replayed on every completion request.
type Transcript struct {
	System string `json:"system,omitempty"`
	Turns  []Turn `json:"turns"`
}

func NewUserTurn(text string) Turn {
	return Turn{Role: RoleUser, Text: text, CreatedAt: time.Now()}
}

func NewAgentTurn(text string, calls []ToolCallRequest) Turn {
	return Turn{Role: RoleAgent, Text: text, ToolCalls: calls, CreatedAt: time.Now()}
}

func NewToolResultTurn(result ToolResult) Turn {
	return Turn{Role: RoleToolResult, Result: &result, CreatedAt: time.Now()}
}

// Clone returns a deep copy so callers can hold it while the agent appends.
func (t Transcript) Clone() Transcript {
	out := Transcript{System: t.System, Turns: make([]Turn, len(t.Turns))}
	for i, turn := range t.Turns {
		out.Turns[i] = turn.clone()
	}
	return out
}

func (t Turn) clone() Turn {
	c := t
	if t.ToolCalls != nil {
		c.ToolCalls = make([]ToolCallRequest, len(t.ToolCalls))
		for i, call := range t.ToolCalls {
			c.ToolCalls[i] = call.Clone()
		}
	}
	if t.Result != nil {
		r := *t.Result
		c.Result = &r
	}
	return c
}

// Count returns the number of turns with the given role.
func (t Transcript) Count(role Role) int {
	n := 0
	for _, turn := range t.Turns {
		if turn.Role == role {
			n++
		}
	}
	return n
}
