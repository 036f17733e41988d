package models

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// TranscriptResponse is returned by GET /api/v1/transcript
type TranscriptResponse struct {
	Status     string     `json:"status"`
	SessionID  string     `json:"session_id"`
	TurnCount  int        `json:"turn_count"`
	Transcript Transcript `json:"transcript"`
}

// ToolsResponse is returned by GET /api/v1/tools
type ToolsResponse struct {
	Status string           `json:"status"`
	Tools  []ToolDescriptor `json:"tools"`
	Count  int              `json:"count"`
}
