package security

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	secretKeyRe = regexp.MustCompile(`(?i)password|secret|token|api_key|apikey|access_key|private_key|credential`)
	inlineKeyRe = regexp.MustCompile(`\b(sk-[A-Za-z0-9_-]{8,}|AIza[0-9A-Za-z_-]{20,})`)
)

// Redactor masks sensitive values before they reach the logs
type Redactor struct {
	sensitiveKeys []string
}

func NewRedactor(sensitiveKeys []string) *Redactor {
	lower := make([]string, len(sensitiveKeys))
	for i, k := range sensitiveKeys {
		lower[i] = strings.ToLower(k)
	}
	return &Redactor{sensitiveKeys: lower}
}

// RedactArgs returns a copy of tool arguments with sensitive values masked
func (r *Redactor) RedactArgs(args map[string]any) map[string]any {
	result := make(map[string]any, len(args))
	for key, val := range args {
		if r.isSensitive(key) {
			result[key] = "***"
			continue
		}
		if s, ok := val.(string); ok {
			result[key] = RedactText(s)
			continue
		}
		result[key] = val
	}
	return result
}

func (r *Redactor) isSensitive(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range r.sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return secretKeyRe.MatchString(key)
}

// RedactText masks provider API keys embedded in free text
func RedactText(s string) string {
	return inlineKeyRe.ReplaceAllStringFunc(s, MaskSecret)
}

// MaskSecret: "AIzaSyD...xyz1" → "AIza***xyz1" (keep 4 chars each side)
func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return "***"
	}
	return fmt.Sprintf("%s***%s", secret[:4], secret[len(secret)-4:])
}
