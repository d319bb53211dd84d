package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesToRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "jacktrack.log")
	log, done := New(Options{File: path, Quiet: true})
	log.Infow("sync finished", "kind", "tree", "synced", 3)
	done()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(b), `"msg":"sync finished"`), "unexpected log: %s", b)
	assert.Contains(t, string(b), `"kind":"tree"`)
}

func TestNew_ConsoleOnly(t *testing.T) {
	log, done := New(Options{Format: "json"})
	defer done()
	assert.NotNil(t, log)
}
