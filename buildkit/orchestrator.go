package buildkit

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	shutil "github.com/termie/go-shutil"

	"github.com/cartforge/cartforge"
	"github.com/cartforge/cartforge/cartfile"
)

// binariesDirName is the output tree's shared binaries folder, rooted at
// each project's own directory and, for a dependency, symlinked to the
// root project's copy so transitive dependencies surface already-built
// artifacts.
const binariesDirName = "Build"

// Orchestrator drives the build pipeline end to end: scheme discovery,
// filtering, per-scheme builds, and universal binary/module merging,
// against an injected Toolchain.
type Orchestrator struct {
	Toolchain     Toolchain
	Configuration string
	Output        io.Writer
}

// BuildAll builds the root project at rootDir and every dependency named in
// lock, in lock's order (the resolver's build order), checked out under
// workRoot. Each dependency's local binaries folder is symlinked to the
// root's shared one before it builds, so transitive dependencies link
// against already-built artifacts and new artifacts land directly in the
// root tree.
func (o *Orchestrator) BuildAll(ctx context.Context, rootDir, workRoot string, lock *cartfile.Lockfile) error {
	rootBinaries := filepath.Join(rootDir, binariesDirName)

	for _, dep := range lock.Dependencies {
		depDir := filepath.Join(workRoot, dep.Project.Name())
		if err := surfaceBinaries(rootBinaries, filepath.Join(depDir, binariesDirName)); err != nil {
			return err
		}
		if err := o.BuildProject(ctx, depDir, rootBinaries); err != nil {
			return err
		}
	}
	return o.BuildProject(ctx, rootDir, rootBinaries)
}

// surfaceBinaries ensures root exists and that local is a symlink to it,
// replacing any existing file, directory, or stale symlink at local first.
func surfaceBinaries(root, local string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return cartforge.Wrap(err, cartforge.WriteFailed, "preparing shared binaries folder %s", root)
	}
	if err := os.MkdirAll(filepath.Dir(local), 0o755); err != nil {
		return cartforge.Wrap(err, cartforge.WriteFailed, "preparing %s", filepath.Dir(local))
	}
	if _, err := os.Lstat(local); err == nil {
		if err := os.RemoveAll(local); err != nil {
			return cartforge.Wrap(err, cartforge.WriteFailed, "removing existing %s", local)
		}
	}
	if err := os.Symlink(root, local); err != nil {
		return cartforge.Wrap(err, cartforge.WriteFailed, "symlinking %s to %s", local, root)
	}
	return nil
}

// BuildProject locates the native project under dir, discovers its buildable
// schemes, and builds each serially, placing (and, for mobile platforms,
// merging) its products under binariesRoot. Schemes within a project never
// build concurrently: inter-target dependencies inside the project may be
// implicit.
func (o *Orchestrator) BuildProject(ctx context.Context, dir, binariesRoot string) error {
	project, err := LocateProject(dir)
	if err != nil {
		return err
	}

	schemes, err := o.Toolchain.ListSchemes(ctx, project)
	if err != nil {
		return err
	}

	buildable, err := FilterBuildable(ctx, o.Toolchain, project, o.Configuration, schemes)
	if err != nil {
		return err
	}

	for _, scheme := range buildable {
		if err := o.buildScheme(ctx, project, scheme, binariesRoot); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) buildScheme(ctx context.Context, project Project, scheme, binariesRoot string) error {
	defaultSettings, err := o.Toolchain.ShowSettings(ctx, project, scheme, o.Configuration, "")
	if err != nil {
		return err
	}
	platform, ok := defaultPlatform(defaultSettings)
	if !ok {
		return nil
	}

	device, err := o.buildSDK(ctx, project, scheme, platform.DeviceSDK)
	if err != nil {
		return err
	}

	if platform.isDesktop() {
		return placeTargets(device, binariesRoot, platform.Name)
	}

	simulator, err := o.buildSDK(ctx, project, scheme, platform.SimulatorSDK)
	if err != nil {
		return err
	}
	return mergeTargets(ctx, o.Toolchain, device, simulator, binariesRoot, platform.Name)
}

// buildSDK invokes one build for sdk and reloads the resulting settings.
func (o *Orchestrator) buildSDK(ctx context.Context, project Project, scheme, sdk string) (TargetSettings, error) {
	if err := o.Toolchain.Build(ctx, project, scheme, o.Configuration, sdk, o.Output); err != nil {
		return nil, err
	}
	return o.Toolchain.ShowSettings(ctx, project, scheme, o.Configuration, sdk)
}

// placeTargets copies every target's product bundle into the output tree
// with no merge step, for desktop platforms that build only once.
func placeTargets(settings TargetSettings, binariesRoot, platformFolder string) error {
	var result *multierror.Error
	for target, s := range settings {
		if err := placeTarget(s, binariesRoot, platformFolder); err != nil {
			result = multierror.Append(result, fmt.Errorf("placing target %s: %w", target, err))
		}
	}
	return result.ErrorOrNil()
}

func placeTarget(settings map[string]string, binariesRoot, platformFolder string) error {
	wrapperName := settings["WRAPPER_NAME"]
	if wrapperName == "" {
		return nil
	}
	src := filepath.Join(settings["TARGET_BUILD_DIR"], wrapperName)
	dest := filepath.Join(binariesRoot, platformFolder, wrapperName)
	if err := os.RemoveAll(dest); err != nil {
		return cartforge.Wrap(err, cartforge.WriteFailed, "clearing %s", dest)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return cartforge.Wrap(err, cartforge.WriteFailed, "preparing %s", filepath.Dir(dest))
	}
	if err := shutil.CopyTree(src, dest, nil); err != nil {
		return cartforge.Wrap(err, cartforge.WriteFailed, "copying product bundle %s", src)
	}
	return nil
}

// mergeTargets merges every target present in both device and simulator
// setting maps into a universal binary and module, aggregating per-target
// failures.
func mergeTargets(ctx context.Context, tc Toolchain, device, simulator TargetSettings, binariesRoot, platformFolder string) error {
	var result *multierror.Error
	for target, deviceSettings := range device {
		simSettings, ok := simulator[target]
		if !ok {
			continue
		}
		if err := MergeTarget(ctx, tc, deviceSettings, simSettings, binariesRoot, platformFolder); err != nil {
			result = multierror.Append(result, fmt.Errorf("merging target %s: %w", target, err))
		}
	}
	return result.ErrorOrNil()
}
