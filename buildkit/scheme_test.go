package buildkit

import (
	"context"
	"testing"
)

func TestFilterBuildableKeepsOnlyFrameworkSchemes(t *testing.T) {
	tc := &fakeToolchain{
		schemes: []string{"Lib", "LibTests"},
		settings: map[string]TargetSettings{
			"Lib": {
				"Lib": {"PRODUCT_TYPE": dynamicFrameworkProductType},
			},
			"LibTests": {
				"LibTests": {"PRODUCT_TYPE": "com.apple.product-type.bundle.unit-test"},
			},
		},
	}

	buildable, err := FilterBuildable(context.Background(), tc, Project{}, "Release", tc.schemes)
	if err != nil {
		t.Fatal(err)
	}
	if len(buildable) != 1 || buildable[0] != "Lib" {
		t.Errorf("got %v, want [Lib]", buildable)
	}
}

func TestDefaultPlatformResolvesFromSettings(t *testing.T) {
	settings := TargetSettings{
		"Lib": {"PLATFORM_NAME": "iphoneos"},
	}
	p, ok := defaultPlatform(settings)
	if !ok {
		t.Fatal("expected a platform to resolve")
	}
	if p.Name != "iOS" || p.isDesktop() {
		t.Errorf("got %+v, want mobile iOS", p)
	}
}

func TestDefaultPlatformUnrecognized(t *testing.T) {
	settings := TargetSettings{
		"Lib": {"PLATFORM_NAME": "nintendoswitch"},
	}
	if _, ok := defaultPlatform(settings); ok {
		t.Error("expected no platform to resolve for an unrecognized PLATFORM_NAME")
	}
}
