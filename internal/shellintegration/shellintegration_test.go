package shellintegration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitWritesFileWhenEnvSet(t *testing.T) {
	target := filepath.Join(t.TempDir(), "out")
	t.Setenv(OutputFileEnv, target)

	wrote, err := Emit("/repo/feature")
	require.NoError(t, err)
	assert.True(t, wrote)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "/repo/feature", string(data))
}

func TestEmitNoopWithoutEnv(t *testing.T) {
	t.Setenv(OutputFileEnv, "")
	wrote, err := Emit("/repo/feature")
	require.NoError(t, err)
	assert.False(t, wrote)
}
