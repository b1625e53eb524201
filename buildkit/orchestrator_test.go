package buildkit

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cartforge/cartforge"
	"github.com/cartforge/cartforge/cartfile"
)

func writeProductBundle(t *testing.T, dir, wrapperName, executableRelPath, contents string) {
	t.Helper()
	bundle := filepath.Join(dir, wrapperName)
	mkdir(t, filepath.Dir(filepath.Join(bundle, executableRelPath)))
	if err := os.WriteFile(filepath.Join(bundle, filepath.Base(executableRelPath)), []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestBuildProjectDesktopPlacesProductWithoutMerge(t *testing.T) {
	root := t.TempDir()
	mkdir(t, filepath.Join(root, "App.xcodeproj"))
	targetBuildDir := filepath.Join(root, "out")
	writeProductBundle(t, targetBuildDir, "Lib.framework", "Lib", "binary")

	tc := &fakeToolchain{
		schemes: []string{"Lib"},
		settings: map[string]TargetSettings{
			"Lib": {"Lib": {"PRODUCT_TYPE": dynamicFrameworkProductType, "PLATFORM_NAME": "macosx"}},
		},
		bySDK: map[string]TargetSettings{
			"Lib/macosx": {
				"Lib": {
					"PLATFORM_NAME":    "macosx",
					"WRAPPER_NAME":     "Lib.framework",
					"TARGET_BUILD_DIR": targetBuildDir,
					"EXECUTABLE_PATH":  "Lib.framework/Lib",
				},
			},
		},
	}

	binariesRoot := t.TempDir()
	o := &Orchestrator{Toolchain: tc, Configuration: "Release"}
	if err := o.BuildProject(context.Background(), root, binariesRoot); err != nil {
		t.Fatal(err)
	}

	if len(tc.builds) != 1 || tc.builds[0] != "Lib/macosx" {
		t.Errorf("got builds %v, want exactly one Lib/macosx build", tc.builds)
	}
	if len(tc.merges) != 0 {
		t.Errorf("desktop build should not merge, got %v", tc.merges)
	}
	placed := filepath.Join(binariesRoot, "Mac", "Lib.framework", "Lib")
	if _, err := os.Stat(placed); err != nil {
		t.Errorf("expected placed product at %s: %v", placed, err)
	}
}

func TestBuildProjectMobileBuildsBothSDKsAndMerges(t *testing.T) {
	root := t.TempDir()
	mkdir(t, filepath.Join(root, "App.xcworkspace"))
	deviceOut := filepath.Join(root, "device")
	simOut := filepath.Join(root, "sim")
	writeProductBundle(t, deviceOut, "Lib.framework", "Lib", "device-binary")
	writeProductBundle(t, simOut, "Lib.framework", "Lib", "sim-binary")

	tc := &fakeToolchain{
		schemes: []string{"Lib"},
		settings: map[string]TargetSettings{
			"Lib": {"Lib": {"PRODUCT_TYPE": dynamicFrameworkProductType, "PLATFORM_NAME": "iphoneos"}},
		},
		bySDK: map[string]TargetSettings{
			"Lib/iphoneos": {
				"Lib": {
					"WRAPPER_NAME":     "Lib.framework",
					"TARGET_BUILD_DIR": deviceOut,
					"EXECUTABLE_PATH":  "Lib.framework/Lib",
				},
			},
			"Lib/iphonesimulator": {
				"Lib": {
					"WRAPPER_NAME":     "Lib.framework",
					"TARGET_BUILD_DIR": simOut,
					"EXECUTABLE_PATH":  "Lib.framework/Lib",
				},
			},
		},
	}

	binariesRoot := t.TempDir()
	o := &Orchestrator{Toolchain: tc, Configuration: "Release"}
	if err := o.BuildProject(context.Background(), root, binariesRoot); err != nil {
		t.Fatal(err)
	}

	if len(tc.builds) != 2 {
		t.Fatalf("got builds %v, want device and simulator", tc.builds)
	}
	if len(tc.merges) != 1 {
		t.Fatalf("got merges %v, want exactly one", tc.merges)
	}
	placed := filepath.Join(binariesRoot, "iOS", "Lib.framework", "Lib")
	if _, err := os.Stat(placed); err != nil {
		t.Errorf("expected merged product at %s: %v", placed, err)
	}
}

func TestSurfaceBinariesSymlinksDependencyToRoot(t *testing.T) {
	rootBinaries := filepath.Join(t.TempDir(), "Build")
	depDir := t.TempDir()
	depBinaries := filepath.Join(depDir, "Build")

	if err := surfaceBinaries(rootBinaries, depBinaries); err != nil {
		t.Fatal(err)
	}

	fi, err := os.Lstat(depBinaries)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode()&os.ModeSymlink == 0 {
		t.Fatal("expected dependency binaries folder to be a symlink")
	}
	target, err := os.Readlink(depBinaries)
	if err != nil {
		t.Fatal(err)
	}
	if target != rootBinaries {
		t.Errorf("got symlink target %s, want %s", target, rootBinaries)
	}
}

func TestSurfaceBinariesReplacesExisting(t *testing.T) {
	rootBinaries := filepath.Join(t.TempDir(), "Build")
	depDir := t.TempDir()
	depBinaries := filepath.Join(depDir, "Build")
	mkdir(t, depBinaries)
	if err := os.WriteFile(filepath.Join(depBinaries, "stale.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := surfaceBinaries(rootBinaries, depBinaries); err != nil {
		t.Fatal(err)
	}

	fi, err := os.Lstat(depBinaries)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode()&os.ModeSymlink == 0 {
		t.Fatal("expected stale directory to be replaced by a symlink")
	}
}

func TestBuildAllBuildsDependenciesThenRoot(t *testing.T) {
	rootDir := t.TempDir()
	workRoot := t.TempDir()
	mkdir(t, filepath.Join(rootDir, "Root.xcodeproj"))

	depDir := filepath.Join(workRoot, "Lib")
	mkdir(t, filepath.Join(depDir, "Lib.xcodeproj"))

	tc := &fakeToolchain{
		schemes:  nil,
		settings: map[string]TargetSettings{},
	}

	lock := &cartfile.Lockfile{
		Dependencies: []cartfile.LockedDependency{
			{Kind: cartfile.SourceGitHub, Project: cartforge.Identifier{Owner: "a", Repo: "Lib"}, Pin: "1.0.0"},
		},
	}

	o := &Orchestrator{Toolchain: tc, Configuration: "Release"}
	if err := o.BuildAll(context.Background(), rootDir, workRoot, lock); err != nil {
		t.Fatal(err)
	}

	depBinaries := filepath.Join(depDir, "Build")
	fi, err := os.Lstat(depBinaries)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode()&os.ModeSymlink == 0 {
		t.Error("expected dependency's binaries folder to be surfaced as a symlink")
	}
}
