package tools

import (
	"context"
	"os"
	"strings"

	"github.com/vooagent/voo/internal/models"
	"github.com/vooagent/voo/internal/security"
)

const ListFilesName = "list_files"

type listFilesInput struct {
	Path string `mapstructure:"path"`
}

// ListFilesTool lists directory entries, directories suffixed with "/"
func ListFilesTool(guard *security.PathGuard) Tool {
	return &Func{
		Name:        ListFilesName,
		Description: "List files and directories at a given path. If no path is provided, lists files in the current directory. Directory names end with a slash.",
		Parameters: []models.Parameter{
			{Name: "path", Type: "string", Description: "Optional relative path to list files from. Defaults to the current directory if not provided.", Required: false},
		},
		Run: func(ctx context.Context, args map[string]any) models.ToolResult {
			var in listFilesInput
			if err := DecodeArgs(args, &in); err != nil {
				return models.Failed(models.FailureInvalidArgument, "decode arguments: %v", err)
			}
			if in.Path == "" {
				in.Path = "."
			}
			if err := ctx.Err(); err != nil {
				return models.Failed(models.FailureInternal, "canceled: %v", err)
			}

			path, err := guard.Resolve(in.Path)
			if err != nil {
				return fsFailure(in.Path, err)
			}
			info, err := os.Stat(path)
			if err != nil {
				return fsFailure(in.Path, err)
			}
			if !info.IsDir() {
				return models.Failed(models.FailureInvalidArgument, "%s is not a directory", in.Path)
			}

			entries, err := os.ReadDir(path)
			if err != nil {
				return fsFailure(in.Path, err)
			}
			// os.ReadDir sorts by filename
			names := make([]string, 0, len(entries))
			for _, e := range entries {
				name := e.Name()
				if e.IsDir() {
					name += "/"
				}
				names = append(names, name)
			}
			return models.Succeeded(strings.Join(names, "\n"), names)
		},
	}
}
