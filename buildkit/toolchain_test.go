package buildkit

import (
	"context"
	"io"
)

// fakeToolchain is a scripted Toolchain for testing scheme filtering and
// orchestration without shelling out to a real native build tool.
type fakeToolchain struct {
	schemes  []string
	settings map[string]TargetSettings // scheme -> default (sdk "") settings
	bySDK    map[string]TargetSettings // "scheme/sdk" -> settings after a build

	builds []string // "scheme/sdk" in call order
	merges []string // "device/simulator" in call order
}

func (f *fakeToolchain) ListSchemes(ctx context.Context, project Project) ([]string, error) {
	return f.schemes, nil
}

func (f *fakeToolchain) ShowSettings(ctx context.Context, project Project, scheme, configuration, sdk string) (TargetSettings, error) {
	if sdk == "" {
		return f.settings[scheme], nil
	}
	return f.bySDK[scheme+"/"+sdk], nil
}

func (f *fakeToolchain) Build(ctx context.Context, project Project, scheme, configuration, sdk string, out io.Writer) error {
	f.builds = append(f.builds, scheme+"/"+sdk)
	return nil
}

func (f *fakeToolchain) MergeBinaries(ctx context.Context, device, simulator, output string) error {
	f.merges = append(f.merges, device+"/"+simulator)
	return nil
}

var _ Toolchain = (*fakeToolchain)(nil)
