package tools

import (
	"context"
	"os"
	"unicode/utf8"

	"github.com/vooagent/voo/internal/models"
	"github.com/vooagent/voo/internal/security"
)

const (
	ReadFileName = "read_file"

	DefaultMaxFileBytes int64 = 1 << 20
)

type readFileInput struct {
	Path string `mapstructure:"path"`
}

// ReadFileTool returns the contents of a text file
func ReadFileTool(guard *security.PathGuard, maxBytes int64) Tool {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFileBytes
	}
	return &Func{
		Name:        ReadFileName,
		Description: "Read the contents of a given relative file path. Use this when you want to see what's inside a file. Do not use this with directory names.",
		Parameters: []models.Parameter{
			{Name: "path", Type: "string", Description: "The relative path of a file in the working directory.", Required: true},
		},
		Run: func(ctx context.Context, args map[string]any) models.ToolResult {
			var in readFileInput
			if err := DecodeArgs(args, &in); err != nil {
				return models.Failed(models.FailureInvalidArgument, "decode arguments: %v", err)
			}
			if in.Path == "" {
				return models.Failed(models.FailureInvalidArgument, "path is required")
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
			if info.IsDir() {
				return models.Failed(models.FailureInvalidArgument, "%s is a directory, use list_files", in.Path)
			}
			if info.Size() > maxBytes {
				return models.Failed(models.FailureInvalidArgument, "%s is %d bytes, larger than the %d byte limit", in.Path, info.Size(), maxBytes)
			}

			content, err := os.ReadFile(path)
			if err != nil {
				return fsFailure(in.Path, err)
			}
			if !utf8.Valid(content) {
				return models.Failed(models.FailureInvalidArgument, "%s is not a text file", in.Path)
			}
			return models.Succeeded(string(content), nil)
		},
	}
}
