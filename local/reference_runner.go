package local

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
)

// ReferenceRunnerName is the file name the bundled runner is installed as.
const ReferenceRunnerName = "llama_runner.py"

//go:embed runner/llama_runner.py
var referenceRunner []byte

// ReferenceRunner returns the bundled llama-cpp-python runner script.
func ReferenceRunner() []byte {
	return bytes.Clone(referenceRunner)
}

// InstallReferenceRunner writes the bundled runner to
// <user cache dir>/summarize/llama_runner.py and returns its path.
// An up-to-date copy is left untouched.
func InstallReferenceRunner() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locate cache dir: %w", err)
	}
	dir := filepath.Join(cacheDir, "summarize")
	path := filepath.Join(dir, ReferenceRunnerName)

	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, referenceRunner) {
		return path, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}

	// Write then rename so a concurrent start never runs a partial script.
	tmp, err := os.CreateTemp(dir, ReferenceRunnerName+".*")
	if err != nil {
		return "", fmt.Errorf("install runner: %w", err)
	}
	if _, err := tmp.Write(referenceRunner); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("install runner: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("install runner: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("install runner: %w", err)
	}
	return path, nil
}
