package buildkit

import (
	"context"
	"io"

	"github.com/cartforge/cartforge"
)

// Toolchain is the external collaborator that actually invokes the native
// build tool and its lipo-equivalent merge utility. buildkit depends only
// on this interface so the algorithmic core (scheme filtering,
// merge/placement) is testable against a fake.
type Toolchain interface {
	// ListSchemes lists the schemes project exposes.
	ListSchemes(ctx context.Context, project Project) ([]string, error)

	// ShowSettings returns the build settings for scheme, bucketed by
	// target, for the given configuration and (if non-empty) SDK.
	ShowSettings(ctx context.Context, project Project, scheme, configuration, sdk string) (TargetSettings, error)

	// Build invokes a build of scheme for sdk, streaming stdout to out.
	Build(ctx context.Context, project Project, scheme, configuration, sdk string, out io.Writer) error

	// MergeBinaries runs the lipo-equivalent tool, writing a universal
	// binary combining device and simulator to output.
	MergeBinaries(ctx context.Context, device, simulator, output string) error
}

// execToolchain is the one concrete Toolchain this repository ships,
// shelling out to the native build tool via monitoredCmd so the whole
// system is runnable end to end.
type execToolchain struct {
	tool       string // e.g. "xcodebuild"
	mergeTool  string // e.g. "lipo"
	workingDir string
}

// NewExecToolchain returns a Toolchain that shells out to tool (the native
// build tool) and mergeTool (the lipo-equivalent universal-binary merger),
// running every invocation from workingDir.
func NewExecToolchain(tool, mergeTool, workingDir string) Toolchain {
	return &execToolchain{tool: tool, mergeTool: mergeTool, workingDir: workingDir}
}

func (t *execToolchain) ListSchemes(ctx context.Context, project Project) ([]string, error) {
	out, err := newMonitoredCmd(ctx, t.workingDir, t.tool, nil, project.flag(), project.Path, "-list").run()
	if err != nil {
		return nil, shellFailed(t.tool, "-list", err, out)
	}
	return ParseSchemeList(out), nil
}

func (t *execToolchain) ShowSettings(ctx context.Context, project Project, scheme, configuration, sdk string) (TargetSettings, error) {
	args := []string{project.flag(), project.Path, "-scheme", scheme, "-configuration", configuration}
	if sdk != "" {
		args = append(args, "-sdk", sdk)
	}
	args = append(args, "-showBuildSettings")
	out, err := newMonitoredCmd(ctx, t.workingDir, t.tool, nil, args...).run()
	if err != nil {
		return nil, shellFailed(t.tool, "-showBuildSettings", err, out)
	}
	return ParseSettings(out), nil
}

func (t *execToolchain) Build(ctx context.Context, project Project, scheme, configuration, sdk string, stream io.Writer) error {
	args := []string{project.flag(), project.Path, "-scheme", scheme, "-configuration", configuration, "-sdk", sdk, "build"}
	out, err := newMonitoredCmd(ctx, t.workingDir, t.tool, stream, args...).run()
	if err != nil {
		return shellFailed(t.tool, "build", err, out)
	}
	return nil
}

func (t *execToolchain) MergeBinaries(ctx context.Context, device, simulator, output string) error {
	out, err := newMonitoredCmd(ctx, t.workingDir, t.mergeTool, nil, "-create", "-output", output, device, simulator).run()
	if err != nil {
		return shellFailed(t.mergeTool, "-create", err, out)
	}
	return nil
}

func shellFailed(tool, op string, err error, stderr string) error {
	exitCode := -1
	if ee, ok := err.(interface{ ExitCode() int }); ok {
		exitCode = ee.ExitCode()
	}
	return cartforge.Wrap(err, cartforge.ShellTaskFailed, "%s %s: exit %d: %s", tool, op, exitCode, stderr)
}
