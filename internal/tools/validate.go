package tools

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/vooagent/voo/internal/models"
)

// ArgumentError lists every problem found in a tool call's arguments.
type ArgumentError struct {
	Tool     string
	Problems []string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %s", e.Tool, strings.Join(e.Problems, "; "))
}

// ValidateArgs checks args against the descriptor: required parameters must be
// present and every declared parameter must carry a value of its JSON type.
// Undeclared arguments are ignored.
func ValidateArgs(desc models.ToolDescriptor, args map[string]any) error {
	var problems []string
	for _, p := range desc.Parameters {
		v, ok := args[p.Name]
		if !ok || v == nil {
			if p.Required {
				problems = append(problems, fmt.Sprintf("missing required parameter %q", p.Name))
			}
			continue
		}
		if !matchesType(p.Type, v) {
			problems = append(problems, fmt.Sprintf("parameter %q must be %s, got %T", p.Name, p.Type, v))
		}
	}
	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return &ArgumentError{Tool: desc.Name, Problems: problems}
}

func matchesType(typ string, v any) bool {
	switch typ {
	case "", "any":
		return true
	case "string":
		_, ok := v.(string)
		return ok
	case "boolean":
		_, ok := v.(bool)
		return ok
	case "number":
		switch v.(type) {
		case float64, float32, int, int64, int32:
			return true
		}
		return false
	case "integer":
		switch n := v.(type) {
		case int, int64, int32:
			return true
		case float64:
			return n == math.Trunc(n) && !math.IsInf(n, 0)
		case float32:
			return float64(n) == math.Trunc(float64(n))
		}
		return false
	case "array":
		_, ok := v.([]any)
		if !ok {
			_, ok = v.([]string)
		}
		return ok
	case "object":
		_, ok := v.(map[string]any)
		return ok
	default:
		return false
	}
}

// DecodeArgs decodes a free-form argument map into a typed struct using
// `mapstructure` tags; keys match case-insensitively ignoring '_' and '-'.
func DecodeArgs(args map[string]any, out any) error {
	if args == nil {
		args = map[string]any{}
	}
	cfg := &mapstructure.DecoderConfig{
		TagName:          "mapstructure",
		Result:           out,
		WeaklyTypedInput: true,
		MatchName: func(mapKey, fieldName string) bool {
			return normalizeKey(mapKey) == normalizeKey(fieldName)
		},
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}
	return decoder.Decode(args)
}

func normalizeKey(value string) string {
	value = strings.ToLower(value)
	value = strings.ReplaceAll(value, "_", "")
	value = strings.ReplaceAll(value, "-", "")
	return value
}
