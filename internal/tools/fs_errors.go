package tools

import (
	"errors"
	"io/fs"

	"github.com/vooagent/voo/internal/models"
	"github.com/vooagent/voo/internal/security"
)

// fsFailure maps filesystem errors onto tool failure kinds.
func fsFailure(path string, err error) models.ToolResult {
	switch {
	case errors.Is(err, security.ErrOutsideWorkspace):
		return models.Failed(models.FailurePermissionDenied, "%s is outside the workspace", path)
	case errors.Is(err, fs.ErrNotExist):
		return models.Failed(models.FailureNotFound, "%s: no such file or directory", path)
	case errors.Is(err, fs.ErrPermission):
		return models.Failed(models.FailurePermissionDenied, "%s: permission denied", path)
	default:
		return models.Failed(models.FailureInternal, "%s: %v", path, err)
	}
}
