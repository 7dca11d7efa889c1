// Package analyzer drives a long-running external morphological analyzer
// (lt-proc in null-flush mode) over its stdin and stdout.
//
// Each request is the escaped sentence followed by a NUL byte; the analyzer
// answers with its escaped stream output followed by a NUL byte.
package analyzer

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/lexreview/internal/domain"
)

const (
	sentinel byte = 0

	// maxStderrLine bounds how much unterminated stderr output is held
	// before it is logged anyway.
	maxStderrLine = 64 << 10
)

// Pipe owns one analyzer process. It is not safe for concurrent use; the
// review service serialises every call. Interrupt is the exception.
type Pipe struct {
	name    string
	command string
	args    []string
	log     *slog.Logger

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
	stderr *stderrLogger
	broken bool

	proc atomic.Pointer[os.Process]
}

// New creates a Pipe that will run command with args. The compiled
// analyzer artifact is expected to be the last argument. Nothing is
// launched until Start.
func New(log *slog.Logger, name, command string, args ...string) *Pipe {
	return &Pipe{
		name:    name,
		command: command,
		args:    args,
		log:     log.With("pipe", name),
	}
}

// Name returns the pipe's name as used in logs and errors.
func (p *Pipe) Name() string { return p.name }

// Start launches the analyzer process.
func (p *Pipe) Start(ctx context.Context) error {
	if p.cmd != nil {
		return fmt.Errorf("analyzer %s: already started", p.name)
	}

	// Not CommandContext: the process outlives the request that starts it.
	cmd := exec.Command(p.command, p.args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("analyzer %s: stdin pipe: %w", p.name, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("analyzer %s: stdout pipe: %w", p.name, err)
	}
	stderr := &stderrLogger{log: p.log}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("analyzer %s: start %s: %w", p.name, p.command, err)
	}

	p.cmd = cmd
	p.stdin = stdin
	p.stdout = bufio.NewReader(stdout)
	p.stderr = stderr
	p.broken = false
	p.proc.Store(cmd.Process)

	p.log.InfoContext(ctx, "analyzer started",
		slog.Int("pid", cmd.Process.Pid),
		slog.String("command", p.command),
		slog.String("args", strings.Join(p.args, " ")),
	)
	return nil
}

// Process sends one sentence and blocks until the full response has been
// read back. Once the process has failed every call returns
// domain.ErrPipeBroken until Restart.
func (p *Pipe) Process(ctx context.Context, sentence string) (string, error) {
	if p.cmd == nil {
		return "", fmt.Errorf("analyzer %s: %w", p.name, domain.ErrNotStarted)
	}
	if p.broken {
		return "", fmt.Errorf("analyzer %s: %w", p.name, domain.ErrPipeBroken)
	}

	// NUL is the frame terminator and has no escape.
	if strings.IndexByte(sentence, sentinel) >= 0 {
		return "", fmt.Errorf("analyzer %s: %w", p.name,
			domain.NewValidationError("sentence", "must not contain NUL bytes"))
	}

	frame := make([]byte, 0, len(sentence)+8)
	frame = append(frame, Escape(sentence)...)
	frame = append(frame, sentinel)

	// lt-proc answers word by word while it reads, so the frame is written
	// alongside the read: a long sentence would otherwise fill both pipes.
	var g errgroup.Group
	stdin := p.stdin
	g.Go(func() error {
		_, err := stdin.Write(frame)
		return err
	})

	out, readErr := p.stdout.ReadBytes(sentinel)
	if readErr != nil {
		// Unblocks the writer if the process stopped reading.
		_ = p.cmd.Process.Kill()
	}
	writeErr := g.Wait()

	switch {
	case readErr != nil:
		// io.EOF here means the process exited mid-response.
		return "", p.fail(ctx, "read", readErr)
	case writeErr != nil:
		return "", p.fail(ctx, "write", writeErr)
	}

	return string(out[:len(out)-1]), nil
}

// Interrupt kills the running process without reaping it. It may be called
// while another goroutine is inside Process, which then fails with
// domain.ErrPipeBroken. Restart or Close must follow.
func (p *Pipe) Interrupt() {
	proc := p.proc.Load()
	if proc == nil {
		return
	}
	if err := proc.Kill(); err == nil {
		p.log.Warn("analyzer interrupted", slog.Int("pid", proc.Pid))
	}
}

// Restart tears the process down and launches a fresh one.
func (p *Pipe) Restart(ctx context.Context) error {
	if err := p.Close(); err != nil {
		p.log.WarnContext(ctx, "analyzer close before restart", slog.String("error", err.Error()))
	}
	if err := p.Start(ctx); err != nil {
		return err
	}
	p.log.InfoContext(ctx, "analyzer restarted")
	return nil
}

// Alive reports whether the process is running and has not failed.
func (p *Pipe) Alive() bool {
	return p.cmd != nil && !p.broken
}

// Close stops the process. It is safe to call more than once.
func (p *Pipe) Close() error {
	if p.cmd == nil {
		return nil
	}
	cmd, stdin, stderr := p.cmd, p.stdin, p.stderr
	p.cmd, p.stdin, p.stdout, p.stderr = nil, nil, nil, nil
	p.broken = false
	p.proc.Store(nil)

	_ = stdin.Close()
	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("analyzer %s: kill: %w", p.name, err)
	}

	// Wait reports the kill (or an earlier crash) as an ExitError; that is
	// the expected outcome here.
	var exitErr *exec.ExitError
	err := cmd.Wait()
	// Wait has finished copying stderr, so the remainder is stable.
	stderr.flush()
	if err != nil && !errors.As(err, &exitErr) {
		return fmt.Errorf("analyzer %s: wait: %w", p.name, err)
	}
	return nil
}

func (p *Pipe) fail(ctx context.Context, op string, err error) error {
	p.broken = true
	p.log.ErrorContext(ctx, "analyzer pipe broken",
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
	return fmt.Errorf("analyzer %s: %s: %w: %w", p.name, op, domain.ErrPipeBroken, err)
}

// stderrLogger forwards the analyzer's stderr to the log, one entry per
// line. exec copies stderr from a single goroutine, so no locking. Lines
// longer than maxStderrLine are logged in pieces.
type stderrLogger struct {
	log *slog.Logger
	buf []byte
}

func (w *stderrLogger) Write(b []byte) (int, error) {
	w.buf = append(w.buf, b...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.emit(w.buf[:i])
		w.buf = w.buf[i+1:]
	}
	for len(w.buf) >= maxStderrLine {
		w.emit(w.buf[:maxStderrLine])
		w.buf = w.buf[maxStderrLine:]
	}
	w.buf = append([]byte(nil), w.buf...)
	return len(b), nil
}

// flush logs a trailing line that was never terminated.
func (w *stderrLogger) flush() {
	w.emit(w.buf)
	w.buf = nil
}

func (w *stderrLogger) emit(line []byte) {
	if s := strings.TrimSpace(string(line)); s != "" {
		w.log.Warn("analyzer stderr", slog.String("line", s))
	}
}
