package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/owt-cli/owt/internal/shellintegration"
)

func TestFinishExitNoPathIsNoop(t *testing.T) {
	require.NoError(t, finishExit(""))
}

func TestFinishExitWritesOutputFileWhenSet(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	t.Setenv(shellintegration.OutputFileEnv, out)

	require.NoError(t, finishExit("/repo/feature"))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "/repo/feature", string(data))
}

func TestFinishExitFallsBackToStdout(t *testing.T) {
	t.Setenv(shellintegration.OutputFileEnv, "")

	orig := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	err = finishExit("/repo/feature")

	_ = w.Close()
	os.Stdout = orig
	require.NoError(t, err)

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	assert.Equal(t, "/repo/feature\n", buf.String())
}
