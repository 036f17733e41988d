package security

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const DefaultMaxInputLength = 8000

// InputValidator checks operator input before it reaches the agent
type InputValidator struct {
	maxLength int
}

func NewInputValidator(maxLength int) *InputValidator {
	if maxLength <= 0 {
		maxLength = DefaultMaxInputLength
	}
	return &InputValidator{maxLength: maxLength}
}

// ValidationResult contains validation outcome
type ValidationResult struct {
	Valid   bool
	Message string
}

// Validate rejects empty, oversized and binary input
func (v *InputValidator) Validate(input string) ValidationResult {
	if strings.TrimSpace(input) == "" {
		return ValidationResult{Valid: false, Message: "input cannot be empty"}
	}

	if len(input) > v.maxLength {
		return ValidationResult{
			Valid:   false,
			Message: fmt.Sprintf("input too long: %d bytes (max %d)", len(input), v.maxLength),
		}
	}

	if !utf8.ValidString(input) {
		return ValidationResult{Valid: false, Message: "input is not valid UTF-8"}
	}

	for _, r := range input {
		if r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		if unicode.IsControl(r) {
			return ValidationResult{
				Valid:   false,
				Message: fmt.Sprintf("input contains control character %U", r),
			}
		}
	}

	return ValidationResult{Valid: true, Message: "ok"}
}
