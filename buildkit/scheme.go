package buildkit

import "context"

// FilterBuildable narrows schemes to those with at least one dynamic
// framework target. The settings lookup uses the default SDK (no -sdk
// argument) since product type doesn't vary by platform.
func FilterBuildable(ctx context.Context, tc Toolchain, project Project, configuration string, schemes []string) ([]string, error) {
	var buildable []string
	for _, scheme := range schemes {
		settings, err := tc.ShowSettings(ctx, project, scheme, configuration, "")
		if err != nil {
			return nil, err
		}
		for _, targetSettings := range settings {
			if isDynamicFramework(targetSettings) {
				buildable = append(buildable, scheme)
				break
			}
		}
	}
	return buildable, nil
}

// defaultPlatform inspects a scheme's default-SDK settings and resolves the
// Platform its targets build for. Returns false if no target reports a
// recognized PLATFORM_NAME.
func defaultPlatform(settings TargetSettings) (Platform, bool) {
	for _, targetSettings := range settings {
		if name, ok := targetSettings["PLATFORM_NAME"]; ok {
			if p, ok := platformFor(name); ok {
				return p, true
			}
		}
	}
	return Platform{}, false
}
