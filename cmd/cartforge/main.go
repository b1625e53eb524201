// Command cartforge is the thin CLI wiring around the core: it parses a
// subcommand and a handful of flags, drives the project coordinator and
// build orchestrator, and translates a *cartforge.Error into a stable
// process exit code. Flag parsing, TTY formatting, and the rest of the CLI
// surface are kept deliberately small; the interesting behavior lives in
// the coordinator and buildkit packages.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cartforge/cartforge"
	"github.com/cartforge/cartforge/buildkit"
	"github.com/cartforge/cartforge/cartfile"
	"github.com/cartforge/cartforge/config"
	"github.com/cartforge/cartforge/coordinator"
)

// command is one subcommand's behavior: a name and the function that runs
// its flags and body.
type command struct {
	name string
	run  func(args []string) error
}

func main() {
	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	commands := []command{
		{name: "update", run: runUpdate(dir)},
		{name: "bootstrap", run: runBootstrap(dir)},
		{name: "checkout", run: runCheckout(dir)},
		{name: "build", run: runBuild(dir)},
	}

	if len(os.Args) < 2 {
		usage(commands)
		os.Exit(1)
	}

	for _, c := range commands {
		if c.name != os.Args[1] {
			continue
		}
		if err := c.run(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(exitCode(err))
		}
		return
	}

	fmt.Fprintf(os.Stderr, "%s: no such command\n", os.Args[1])
	usage(commands)
	os.Exit(1)
}

func usage(commands []command) {
	fmt.Fprintln(os.Stderr, "Usage: cartforge <command>")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "  %s\n", c.name)
	}
}

// exitCode translates err into a stable exit code: 1 on any core-reported
// error, or the error's own serialized code when it carries one.
func exitCode(err error) int {
	if ce, ok := cartforge.AsError(err); ok {
		if code := ce.Code(); code != 0 {
			return code
		}
	}
	return 1
}

func newCoordinator(dir string) (*coordinator.ProjectCoordinator, error) {
	cfg, err := config.Load(filepath.Join(dir, "cartforge.toml"))
	if err != nil {
		return nil, err
	}
	workRoot := filepath.Join(dir, "Carthage", "Checkouts")
	return coordinator.NewProjectCoordinator(dir, workRoot, cfg.CacheRoot, cfg.FetchWindow, cfg.VCSConcurrency), nil
}

func runUpdate(dir string) func([]string) error {
	return func(args []string) error {
		fs := flag.NewFlagSet("update", flag.ExitOnError)
		fs.Parse(args)

		c, err := newCoordinator(dir)
		if err != nil {
			return err
		}
		_, err = c.Update()
		return err
	}
}

func runBootstrap(dir string) func([]string) error {
	return func(args []string) error {
		fs := flag.NewFlagSet("bootstrap", flag.ExitOnError)
		fs.Parse(args)

		c, err := newCoordinator(dir)
		if err != nil {
			return err
		}
		return c.Bootstrap()
	}
}

func runCheckout(dir string) func([]string) error {
	return func(args []string) error {
		fs := flag.NewFlagSet("checkout", flag.ExitOnError)
		fs.Parse(args)

		c, err := newCoordinator(dir)
		if err != nil {
			return err
		}
		return c.Checkout()
	}
}

func runBuild(dir string) func([]string) error {
	return func(args []string) error {
		fs := flag.NewFlagSet("build", flag.ExitOnError)
		configuration := fs.String("configuration", "Release", "build configuration")
		tool := fs.String("tool", "xcodebuild", "native build tool")
		mergeTool := fs.String("merge-tool", "lipo", "universal binary merge tool")
		fs.Parse(args)

		lockPath := filepath.Join(dir, "Cartfile.resolved")
		data, err := os.ReadFile(lockPath)
		if err != nil {
			return cartforge.Wrap(err, cartforge.ReadFailed, "reading %s", lockPath)
		}
		lock, err := cartfile.ParseLockfile(data)
		if err != nil {
			return err
		}

		workRoot := filepath.Join(dir, "Carthage", "Checkouts")
		toolchain := buildkit.NewExecToolchain(*tool, *mergeTool, dir)
		o := &buildkit.Orchestrator{
			Toolchain:     toolchain,
			Configuration: *configuration,
			Output:        os.Stdout,
		}
		return o.BuildAll(context.Background(), dir, workRoot, lock)
	}
}
