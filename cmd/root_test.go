package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	require.NoError(t, root.Execute(), out.String())
	return out.String()
}

func TestCommandTree(t *testing.T) {
	root := NewRootCmd()
	for _, path := range [][]string{
		{"serve"},
		{"location", "add"},
		{"location", "import"},
		{"capture"},
		{"sync", "push"},
		{"sync", "pull"},
		{"export"},
		{"settings", "set-quality"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestLocationWorkflow(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("THENNOW_DATA_DIR", dir)
	t.Setenv("THENNOW_DB_PATH", "")
	t.Setenv("THENNOW_IMAGES_DIR", "")
	t.Setenv("REMOTE_DATABASE_URL", "")

	id := strings.TrimSpace(run(t, "location", "add", "--title", "Jaffa Gate", "--lat", "31.7767", "--lng", "35.2276"))
	require.NotEmpty(t, id)

	run(t, "location", "status", id, "inaccessible")
	run(t, "location", "notes", id, "scaffolding")

	show := run(t, "location", "show", id)
	assert.Contains(t, show, "inaccessible")
	assert.Contains(t, show, "scaffolding")

	list := run(t, "location", "list", "--status", "inaccessible")
	assert.Contains(t, list, "Jaffa Gate")

	run(t, "settings", "set-quality", "medium")
	assert.Contains(t, run(t, "settings", "show"), "medium (0.7)")

	out := filepath.Join(dir, "out")
	run(t, "export", "--output", out, "--zip")
	_, err := os.Stat(filepath.Join(out, "thennow_export.zip"))
	assert.NoError(t, err)

	run(t, "location", "delete", id)
	assert.NotContains(t, run(t, "location", "list"), "Jaffa Gate")

	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"sync", "push"})
	assert.Error(t, root.Execute())
}
