package tools

import (
	"fmt"

	"github.com/vooagent/voo/internal/security"
)

// RegisterBuiltins registers read_file and list_files.
func RegisterBuiltins(r *Registry, guard *security.PathGuard, maxFileBytes int64) error {
	for _, t := range []Tool{
		ReadFileTool(guard, maxFileBytes),
		ListFilesTool(guard),
	} {
		if err := r.Register(t); err != nil {
			return fmt.Errorf("register builtin tool: %w", err)
		}
	}
	return nil
}
