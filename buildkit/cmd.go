package buildkit

import (
	"bytes"
	"context"
	"io"
	"os/exec"
)

// monitoredCmd wraps an exec.Cmd so its stdout can be streamed to a caller
// while still being captured, and so it can be canceled via ctx. It imposes
// no inactivity timeout: builds legitimately run silent for long stretches,
// and cancellation is left entirely to the caller's context.
type monitoredCmd struct {
	cmd *exec.Cmd
	ctx context.Context
	out *bytes.Buffer
}

// newMonitoredCmd builds a monitoredCmd for name/args run in dir. If
// stream is non-nil, stdout is written to it as it arrives in addition to
// being captured for the returned output.
func newMonitoredCmd(ctx context.Context, dir, name string, stream io.Writer, args ...string) *monitoredCmd {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	out := new(bytes.Buffer)
	if stream != nil {
		cmd.Stdout = io.MultiWriter(out, stream)
	} else {
		cmd.Stdout = out
	}
	cmd.Stderr = out
	return &monitoredCmd{cmd: cmd, ctx: ctx, out: out}
}

// run executes the command to completion, returning its combined output.
// A non-zero exit becomes a *cartforge.Error of kind ShellTaskFailed at the
// caller (toolchain.go), which has the context to name the operation.
func (m *monitoredCmd) run() (string, error) {
	err := m.cmd.Run()
	return m.out.String(), err
}
