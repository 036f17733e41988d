package security

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// AuditLogger logs tool invocations with hashed arguments
type AuditLogger struct {
	enabled  bool
	redactor *Redactor
}

func NewAuditLogger(enabled bool, redactor *Redactor) *AuditLogger {
	if redactor == nil {
		redactor = NewRedactor(nil)
	}
	return &AuditLogger{enabled: enabled, redactor: redactor}
}

// LogToolCall records one tool execution event
func (a *AuditLogger) LogToolCall(
	sessionID, callID, tool string,
	args map[string]any,
	success bool,
	failure string,
	durationMs int64,
) {
	if !a.enabled {
		return
	}
	raw, _ := json.Marshal(args)
	argsHash := hashStr(string(raw))[:16]

	evt := log.Info().
		Str("event", "tool_audit").
		Str("session_id", sessionID).
		Str("call_id", callID).
		Str("tool", tool).
		Str("args_hash", argsHash).
		Interface("args", a.redactor.RedactArgs(args)).
		Int64("duration_ms", durationMs).
		Bool("success", success)

	if failure != "" {
		evt = evt.Str("failure", failure)
	}
	evt.Msg("audit")
}

// LogTurn records a completed or failed agent turn
func (a *AuditLogger) LogTurn(sessionID, input string, rounds int, toolsUsed []string, durationMs int64, err error) {
	if !a.enabled {
		return
	}
	evt := log.Info().
		Str("event", "turn_audit").
		Str("session_id", sessionID).
		Str("input_hash", hashStr(input)[:16]).
		Int("rounds", rounds).
		Strs("tools_used", toolsUsed).
		Int64("duration_ms", durationMs).
		Bool("success", err == nil)
	if err != nil {
		evt = evt.Str("error", RedactText(err.Error()))
	}
	evt.Msg("audit")
}

func hashStr(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}
