package buildkit

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	shutil "github.com/termie/go-shutil"

	"github.com/cartforge/cartforge"
)

// MergeTarget produces a universal binary and merged module for one target
// present in both device and simulator settings:
//
//  1. copy the device build's product bundle into the output tree,
//     overwriting any existing copy;
//  2. invoke the lipo-equivalent merge on the device and simulator
//     executables, writing into the copied bundle's executable path;
//  3. if the build emits a module directory, copy every file from the
//     simulator's module directory into the device's (now copied) one.
func MergeTarget(ctx context.Context, tc Toolchain, device, simulator map[string]string, outputRoot, platformFolder string) error {
	wrapperName := device["WRAPPER_NAME"]
	if wrapperName == "" {
		return cartforge.New(cartforge.MissingBuildSetting, "target settings missing WRAPPER_NAME")
	}

	src := filepath.Join(device["TARGET_BUILD_DIR"], wrapperName)
	dest := filepath.Join(outputRoot, platformFolder, wrapperName)

	if err := os.RemoveAll(dest); err != nil {
		return cartforge.Wrap(err, cartforge.WriteFailed, "clearing %s", dest)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return cartforge.Wrap(err, cartforge.WriteFailed, "preparing %s", filepath.Dir(dest))
	}
	if err := shutil.CopyTree(src, dest, nil); err != nil {
		return cartforge.Wrap(err, cartforge.WriteFailed, "copying product bundle %s", src)
	}

	// EXECUTABLE_PATH is TARGET_BUILD_DIR-relative and starts with
	// WRAPPER_NAME; dest already names the copied bundle, so only the
	// remainder past the wrapper is appended to it.
	execPath := filepath.Join(dest, executableInBundle(device))
	simExecPath := filepath.Join(simulator["TARGET_BUILD_DIR"], simulator["EXECUTABLE_PATH"])
	if err := tc.MergeBinaries(ctx, execPath, simExecPath, execPath); err != nil {
		return err
	}

	return mergeModule(device, simulator, dest)
}

// executableInBundle returns settings' EXECUTABLE_PATH with its leading
// WRAPPER_NAME component stripped, i.e. the executable's path relative to
// the bundle root rather than to TARGET_BUILD_DIR.
func executableInBundle(settings map[string]string) string {
	return strings.TrimPrefix(settings["EXECUTABLE_PATH"], settings["WRAPPER_NAME"]+"/")
}

// mergeModule copies every file from the simulator build's language-module
// directory into the device build's copied module directory, leaving the
// device's own files in place (simulator-specific slices are added
// alongside, never overwriting a device slice of the same file).
func mergeModule(device, simulator map[string]string, dest string) error {
	moduleName := device["PRODUCT_MODULE_NAME"]
	if moduleName == "" || device["CONTENTS_FOLDER_PATH"] == "" {
		return nil
	}

	deviceModuleDir := filepath.Join(dest, "Modules", moduleName+".swiftmodule")
	simModuleDir := filepath.Join(simulator["TARGET_BUILD_DIR"], simulator["WRAPPER_NAME"], "Modules", moduleName+".swiftmodule")

	entries, err := os.ReadDir(simModuleDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return cartforge.Wrap(err, cartforge.ReadFailed, "reading simulator module directory %s", simModuleDir)
	}
	if err := os.MkdirAll(deviceModuleDir, 0o755); err != nil {
		return cartforge.Wrap(err, cartforge.WriteFailed, "preparing %s", deviceModuleDir)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		target := filepath.Join(deviceModuleDir, e.Name())
		if _, err := os.Lstat(target); err == nil {
			continue
		}
		if err := shutil.CopyFile(filepath.Join(simModuleDir, e.Name()), target, false); err != nil {
			return cartforge.Wrap(err, cartforge.WriteFailed, "copying module file %s", e.Name())
		}
	}
	return nil
}
