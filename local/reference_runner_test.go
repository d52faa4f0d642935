package local

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateCacheDir(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)
	t.Setenv("HOME", dir)
}

func requirePython(t *testing.T) string {
	t.Helper()
	path, err := exec.LookPath("python3")
	if err != nil {
		t.Skip("python3 not available")
	}
	return path
}

func TestReferenceRunner_Content(t *testing.T) {
	script := string(ReferenceRunner())

	for _, method := range []string{`"init"`, `"complete"`, `"shutdown"`} {
		assert.Contains(t, script, method)
	}
	assert.Contains(t, script, "from llama_cpp import Llama")
	assert.Contains(t, script, "-32001")
	assert.Contains(t, script, "-32002")
}

func TestInstallReferenceRunner(t *testing.T) {
	isolateCacheDir(t)

	path, err := InstallReferenceRunner()
	require.NoError(t, err)
	assert.Equal(t, ReferenceRunnerName, filepath.Base(path))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ReferenceRunner(), got)

	// A second install leaves the file alone.
	info, err := os.Stat(path)
	require.NoError(t, err)
	again, err := InstallReferenceRunner()
	require.NoError(t, err)
	assert.Equal(t, path, again)
	info2, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, info.ModTime(), info2.ModTime())
}

func TestInstallReferenceRunner_ReplacesStaleCopy(t *testing.T) {
	isolateCacheDir(t)

	path, err := InstallReferenceRunner()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("print('old')\n"), 0o644))

	_, err = InstallReferenceRunner()
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ReferenceRunner(), got)
}

func TestReferenceRunner_Protocol(t *testing.T) {
	python := requirePython(t)
	isolateCacheDir(t)

	path, err := InstallReferenceRunner()
	require.NoError(t, err)

	cmd := exec.Command(python, path)
	stdin, err := cmd.StdinPipe()
	require.NoError(t, err)
	stdout, err := cmd.StdoutPipe()
	require.NoError(t, err)
	require.NoError(t, cmd.Start())
	t.Cleanup(func() {
		_ = stdin.Close()
		_ = cmd.Wait()
	})

	proto := NewProtocol(stdout, stdin)

	var rpcErr *RPCError
	err = proto.Call("complete", CompleteParams{Prompt: "hello", Stop: []string{"</s>"}}, &CompleteResult{})
	require.True(t, errors.As(err, &rpcErr), "got %v", err)
	assert.Equal(t, CodeModelNotLoaded, rpcErr.Code)

	err = proto.Call("generate", nil, nil)
	require.True(t, errors.As(err, &rpcErr), "got %v", err)
	assert.Equal(t, CodeMethodNotFound, rpcErr.Code)

	var initRes InitResult
	require.NoError(t, proto.Call("init", InitParams{ModelPath: filepath.Join(t.TempDir(), "missing.gguf"), ContextSize: 512}, &initRes))
	assert.False(t, initRes.Ready)
	assert.NotEmpty(t, initRes.Message)

	var shut ShutdownResult
	require.NoError(t, proto.Call("shutdown", nil, &shut))
	assert.True(t, shut.Success)
}

func TestRunner_Start_UsesBundledRunner(t *testing.T) {
	python := requirePython(t)
	isolateCacheDir(t)

	r := NewRunner(Config{
		PythonPath:     python,
		ModelPath:      filepath.Join(t.TempDir(), "missing.gguf"),
		StartupTimeout: 10 * time.Second,
	})

	err := r.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "runner not ready")
	assert.False(t, r.IsRunning())

	cacheDir, err := os.UserCacheDir()
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(cacheDir, "summarize", ReferenceRunnerName))
}
