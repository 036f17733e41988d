package agent

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyInput    = errors.New("input is empty")
	ErrTooManyRounds = errors.New("too many tool rounds")
)

// RoundLimitError is returned when the model keeps requesting tools past the
// configured round ceiling.
type RoundLimitError struct {
	Limit     int
	ToolsUsed []string
}

func (e *RoundLimitError) Error() string {
	return fmt.Sprintf("agent loop exceeded max rounds (%d) after %d tool calls", e.Limit, len(e.ToolsUsed))
}

func (e *RoundLimitError) Is(target error) bool {
	return target == ErrTooManyRounds
}
