package tools_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vooagent/voo/internal/models"
	"github.com/vooagent/voo/internal/security"
	"github.com/vooagent/voo/internal/tools"
)

func workspace(t *testing.T) (string, *security.PathGuard) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("alpha\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.txt"), []byte("bravo\n"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "docs"), 0o755))
	g, err := security.NewPathGuard(root)
	require.NoError(t, err)
	return root, g
}

// ─── read_file ────────────────────────────────────────────────────────────────

func TestReadFile(t *testing.T) {
	_, guard := workspace(t)
	tool := tools.ReadFileTool(guard, 0)
	ctx := context.Background()

	tests := []struct {
		name    string
		args    map[string]any
		success bool
		failure models.FailureKind
		output  string
	}{
		{"reads contents", map[string]any{"path": "a.txt"}, true, "", "alpha\n"},
		{"missing file", map[string]any{"path": "missing.txt"}, false, models.FailureNotFound, ""},
		{"directory", map[string]any{"path": "docs"}, false, models.FailureInvalidArgument, ""},
		{"empty path", map[string]any{}, false, models.FailureInvalidArgument, ""},
		{"escape", map[string]any{"path": "../x"}, false, models.FailurePermissionDenied, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tool.Execute(ctx, tt.args)
			assert.Equal(t, tt.success, res.Success, res.Error)
			assert.Equal(t, tt.failure, res.Failure)
			if tt.success {
				assert.Equal(t, tt.output, res.Output)
			} else {
				assert.NotEmpty(t, res.Error)
			}
		})
	}
}

func TestReadFileLimits(t *testing.T) {
	root, guard := workspace(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "big.txt"), make([]byte, 64), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "bin.dat"), []byte{0xff, 0xfe, 0x00}, 0o644))

	tool := tools.ReadFileTool(guard, 32)
	res := tool.Execute(context.Background(), map[string]any{"path": "big.txt"})
	assert.Equal(t, models.FailureInvalidArgument, res.Failure)

	res = tool.Execute(context.Background(), map[string]any{"path": "bin.dat"})
	assert.Equal(t, models.FailureInvalidArgument, res.Failure)
}

func TestReadFileUnreadable(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores file permissions")
	}
	root, guard := workspace(t)
	secret := filepath.Join(root, "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("x"), 0o000))

	res := tools.ReadFileTool(guard, 0).Execute(context.Background(), map[string]any{"path": "secret.txt"})
	assert.Equal(t, models.FailurePermissionDenied, res.Failure)
}

func TestReadFileMissingBehindEscapingLink(t *testing.T) {
	root, guard := workspace(t)
	if err := os.Symlink(t.TempDir(), filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	res := tools.ReadFileTool(guard, 0).Execute(context.Background(), map[string]any{"path": "link/nope"})
	assert.Equal(t, models.FailurePermissionDenied, res.Failure, res.Error)
}

// ─── list_files ───────────────────────────────────────────────────────────────

func TestListFiles(t *testing.T) {
	_, guard := workspace(t)
	tool := tools.ListFilesTool(guard)

	res := tool.Execute(context.Background(), map[string]any{"path": "."})
	require.True(t, res.Success, res.Error)
	assert.Equal(t, []string{"a.txt", "b.txt", "docs/"}, res.Data)
	assert.Equal(t, "a.txt\nb.txt\ndocs/", res.Output)

	res = tool.Execute(context.Background(), map[string]any{})
	require.True(t, res.Success, "path defaults to the current directory")
	assert.Equal(t, []string{"a.txt", "b.txt", "docs/"}, res.Data)

	res = tool.Execute(context.Background(), map[string]any{"path": "docs"})
	require.True(t, res.Success)
	assert.Equal(t, []string{}, res.Data)
	assert.Equal(t, "[]", res.Content())
}

func TestListFilesFailures(t *testing.T) {
	_, guard := workspace(t)
	tool := tools.ListFilesTool(guard)

	res := tool.Execute(context.Background(), map[string]any{"path": "a.txt"})
	assert.Equal(t, models.FailureInvalidArgument, res.Failure)

	res = tool.Execute(context.Background(), map[string]any{"path": "nowhere"})
	assert.Equal(t, models.FailureNotFound, res.Failure)
}

func TestRegisterBuiltins(t *testing.T) {
	_, guard := workspace(t)
	r := tools.NewRegistry()
	require.NoError(t, tools.RegisterBuiltins(r, guard, 0))
	assert.Equal(t, []string{tools.ReadFileName, tools.ListFilesName}, r.Names())

	assert.Error(t, tools.RegisterBuiltins(r, guard, 0), "second registration collides")
}
