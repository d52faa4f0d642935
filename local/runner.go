package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"
)

type runnerState int

const (
	runnerStopped runnerState = iota
	runnerStarting
	runnerRunning
	runnerStopping
)

// shutdownGrace is how long Stop waits for a clean exit before killing.
const shutdownGrace = 5 * time.Second

// Runner manages the model runner process lifecycle.
type Runner struct {
	cfg Config

	mu       sync.RWMutex
	state    runnerState
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	stdout   io.ReadCloser
	stderr   io.ReadCloser
	protocol *Protocol
	done     chan struct{} // Closed when process exits
	exitErr  error
	version  string
}

// NewRunner creates a new runner manager.
func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg.WithDefaults(),
		state: runnerStopped,
	}
}

// Start launches the runner process and waits for the model to load.
// ctx bounds only startup; the process outlives it.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.state != runnerStopped {
		r.mu.Unlock()
		return fmt.Errorf("runner already %s", r.stateString())
	}
	r.state = runnerStarting
	r.mu.Unlock()

	if r.cfg.RunnerPath == "" {
		path, err := InstallReferenceRunner()
		if err != nil {
			r.setState(runnerStopped)
			return err
		}
		slog.Debug("using bundled runner", slog.String("path", path))
		r.cfg.RunnerPath = path
	}

	name, args := r.cfg.command()
	cmd := exec.Command(name, args...)

	if r.cfg.WorkDir != "" {
		cmd.Dir = r.cfg.WorkDir
	}

	if len(r.cfg.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range r.cfg.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		r.setState(runnerStopped)
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		_ = stdin.Close()
		r.setState(runnerStopped)
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		_ = stdin.Close()
		_ = stdout.Close()
		r.setState(runnerStopped)
		return fmt.Errorf("create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		_ = stdout.Close()
		_ = stderr.Close()
		r.setState(runnerStopped)
		return fmt.Errorf("start runner: %w", err)
	}

	r.mu.Lock()
	r.cmd = cmd
	r.stdin = stdin
	r.stdout = stdout
	r.stderr = stderr
	r.protocol = NewProtocol(stdout, stdin)
	r.done = make(chan struct{})
	r.mu.Unlock()

	go r.waitForExit()
	go r.drainStderr()

	initCtx, cancel := context.WithTimeout(ctx, r.cfg.StartupTimeout)
	defer cancel()

	if err := r.initialize(initCtx); err != nil {
		r.setState(runnerRunning) // let Stop tear the process down
		_ = r.Stop()
		return fmt.Errorf("initialize runner: %w", err)
	}

	r.setState(runnerRunning)
	slog.Debug("runner started",
		slog.String("model", r.cfg.Model),
		slog.String("model_path", r.cfg.ModelPath),
		slog.Int("n_ctx", r.cfg.ContextSize),
		slog.String("version", r.Version()))

	return nil
}

// Stop shuts down the runner, killing it if it does not exit in time.
func (r *Runner) Stop() error {
	r.mu.Lock()
	if r.state == runnerStopped || r.state == runnerStopping {
		r.mu.Unlock()
		return nil
	}
	r.state = runnerStopping
	done := r.done
	r.mu.Unlock()

	var shutdownErr error
	select {
	case <-done:
		// Already exited; nobody is listening for shutdown
	default:
		shutdownErr = r.shutdown()
	}

	r.mu.RLock()
	if r.stdin != nil {
		_ = r.stdin.Close()
	}
	r.mu.RUnlock()

	select {
	case <-done:
	case <-time.After(shutdownGrace):
		r.mu.RLock()
		if r.cmd != nil && r.cmd.Process != nil {
			_ = r.cmd.Process.Kill()
		}
		r.mu.RUnlock()
		<-done
	}

	r.setState(runnerStopped)
	slog.Debug("runner stopped")

	return shutdownErr
}

// IsRunning returns true if the runner has loaded its model and not exited.
func (r *Runner) IsRunning() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.state != runnerRunning {
		return false
	}
	select {
	case <-r.done:
		return false
	default:
		return true
	}
}

// Protocol returns the JSON-RPC protocol handler.
// Returns nil if the runner is not running.
func (r *Runner) Protocol() *Protocol {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.state != runnerRunning {
		return nil
	}
	return r.protocol
}

// Done returns a channel that's closed when the runner process exits.
func (r *Runner) Done() <-chan struct{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.done == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return r.done
}

// ExitError returns the error from the runner process exit, if any.
func (r *Runner) ExitError() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.exitErr
}

// Version returns the runtime version reported by init.
func (r *Runner) Version() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

func (r *Runner) initialize(ctx context.Context) error {
	r.mu.RLock()
	proto := r.protocol
	done := r.done
	r.mu.RUnlock()

	if proto == nil {
		return errors.New("protocol not initialized")
	}

	params := InitParams{
		ModelPath:   r.cfg.ModelPath,
		Model:       r.cfg.Model,
		ContextSize: r.cfg.ContextSize,
		GPULayers:   r.cfg.GPULayers,
	}

	var result InitResult
	resultCh := make(chan error, 1)

	go func() {
		resultCh <- proto.Call("init", params, &result)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		// Drain the call error; it carries the read failure
		select {
		case err := <-resultCh:
			if err != nil {
				return fmt.Errorf("runner exited during init: %w", err)
			}
		case <-time.After(100 * time.Millisecond):
		}
		return errors.New("runner exited during init")
	case err := <-resultCh:
		if err != nil {
			return err
		}
	}

	if !result.Ready {
		if result.Message != "" {
			return fmt.Errorf("runner not ready: %s", result.Message)
		}
		return errors.New("runner not ready")
	}

	r.mu.Lock()
	r.version = result.Version
	r.mu.Unlock()

	return nil
}

func (r *Runner) shutdown() error {
	r.mu.RLock()
	proto := r.protocol
	r.mu.RUnlock()

	if proto == nil {
		return nil
	}

	resultCh := make(chan error, 1)
	var result ShutdownResult
	go func() {
		resultCh <- proto.Call("shutdown", nil, &result)
	}()

	select {
	case err := <-resultCh:
		if err != nil {
			return err
		}
	case <-time.After(shutdownGrace):
		return errors.New("shutdown timed out")
	}

	if !result.Success {
		return fmt.Errorf("shutdown failed: %s", result.Message)
	}
	return nil
}

func (r *Runner) waitForExit() {
	r.mu.RLock()
	cmd := r.cmd
	done := r.done
	r.mu.RUnlock()

	if cmd == nil {
		return
	}

	err := cmd.Wait()

	r.mu.Lock()
	r.exitErr = err
	r.mu.Unlock()

	close(done)
}

// drainStderr logs runner stderr at debug level. llama.cpp writes its load
// diagnostics here.
func (r *Runner) drainStderr() {
	r.mu.RLock()
	stderr := r.stderr
	r.mu.RUnlock()

	if stderr == nil {
		return
	}

	buf := make([]byte, 4096)
	for {
		n, err := stderr.Read(buf)
		if n > 0 {
			slog.Debug("runner stderr", slog.String("output", string(buf[:n])))
		}
		if err != nil {
			break
		}
	}
}

func (r *Runner) setState(state runnerState) {
	r.mu.Lock()
	r.state = state
	r.mu.Unlock()
}

func (r *Runner) stateString() string {
	switch r.state {
	case runnerStopped:
		return "stopped"
	case runnerStarting:
		return "starting"
	case runnerRunning:
		return "running"
	case runnerStopping:
		return "stopping"
	default:
		return "unknown"
	}
}
