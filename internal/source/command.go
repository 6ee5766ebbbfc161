// internal/source/command.go
package source

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// UpstreamExitError reports that the follow-mode subprocess exited
// non-zero; the process exit status propagates to our own.
type UpstreamExitError struct {
	Status int
}

func (e *UpstreamExitError) Error() string {
	return fmt.Sprintf("log source exited with status %d", e.Status)
}

// CommandSource follows the output of a subprocess, typically
// "journalctl -kf". The stream never terminates on its own in follow mode;
// it ends only when the subprocess exits or the context is cancelled
// (which kills the subprocess).
type CommandSource struct {
	cmd     *exec.Cmd
	scanner *bufio.Scanner
	done    bool
}

// NewCommandSource starts the subprocess and begins consuming its stdout
func NewCommandSource(ctx context.Context, name string, args ...string) (*CommandSource, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = os.Stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to attach to %s: %w", name, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", name, err)
	}

	return &CommandSource{cmd: cmd, scanner: newScanner(stdout)}, nil
}

// Next blocks until the subprocess emits a line. When the stream ends the
// subprocess is reaped: a clean exit yields io.EOF, a non-zero exit an
// UpstreamExitError, a cancelled context the context error.
func (s *CommandSource) Next(ctx context.Context) (string, error) {
	if s.done {
		return "", io.EOF
	}
	if s.scanner.Scan() {
		return s.scanner.Text(), nil
	}

	s.done = true
	waitErr := s.cmd.Wait()
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return "", &UpstreamExitError{Status: exitErr.ExitCode()}
		}
		return "", fmt.Errorf("log source failed: %w", waitErr)
	}
	if err := s.scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read log source: %w", err)
	}
	return "", io.EOF
}

// Close kills the subprocess if it is still running
func (s *CommandSource) Close() error {
	if s.done || s.cmd.Process == nil {
		return nil
	}
	return s.cmd.Process.Kill()
}
