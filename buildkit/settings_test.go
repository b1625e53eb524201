package buildkit

import "testing"

const showSettingsFixture = `Build settings for action build and target "Alamofire iOS":
    PLATFORM_NAME = iphoneos
    PRODUCT_TYPE = com.apple.product-type.framework
    WRAPPER_NAME = Alamofire.framework
    TARGET_BUILD_DIR = /tmp/build/Release-iphoneos
    EXECUTABLE_PATH = Alamofire.framework/Alamofire
    CONTENTS_FOLDER_PATH = Alamofire.framework
    PRODUCT_MODULE_NAME = Alamofire

Build settings for action build and target "Alamofire iOSTests":
    PLATFORM_NAME = iphoneos
    PRODUCT_TYPE = com.apple.product-type.bundle.unit-test
`

func TestParseSettingsBucketsByTarget(t *testing.T) {
	settings := ParseSettings(showSettingsFixture)
	if len(settings) != 2 {
		t.Fatalf("got %d targets, want 2", len(settings))
	}
	fw, ok := settings["Alamofire iOS"]
	if !ok {
		t.Fatal("missing target \"Alamofire iOS\"")
	}
	if fw["PLATFORM_NAME"] != "iphoneos" {
		t.Errorf("PLATFORM_NAME = %q", fw["PLATFORM_NAME"])
	}
	if fw["WRAPPER_NAME"] != "Alamofire.framework" {
		t.Errorf("WRAPPER_NAME = %q", fw["WRAPPER_NAME"])
	}
	if fw["EXECUTABLE_PATH"] != "Alamofire.framework/Alamofire" {
		t.Errorf("EXECUTABLE_PATH = %q", fw["EXECUTABLE_PATH"])
	}
}

func TestIsDynamicFramework(t *testing.T) {
	settings := ParseSettings(showSettingsFixture)
	if !isDynamicFramework(settings["Alamofire iOS"]) {
		t.Error("Alamofire iOS should be a dynamic framework target")
	}
	if isDynamicFramework(settings["Alamofire iOSTests"]) {
		t.Error("Alamofire iOSTests should not be a dynamic framework target")
	}
}

const listSchemesFixture = `Information about workspace "Alamofire":
    Schemes:
        Alamofire iOS
        Alamofire macOS
        Alamofire tvOS

`

func TestParseSchemeList(t *testing.T) {
	schemes := ParseSchemeList(listSchemesFixture)
	want := []string{"Alamofire iOS", "Alamofire macOS", "Alamofire tvOS"}
	if len(schemes) != len(want) {
		t.Fatalf("got %v, want %v", schemes, want)
	}
	for i, s := range want {
		if schemes[i] != s {
			t.Errorf("schemes[%d] = %q, want %q", i, schemes[i], s)
		}
	}
}

func TestParseSchemeListNoHeader(t *testing.T) {
	if schemes := ParseSchemeList("no schemes here\n"); schemes != nil {
		t.Errorf("got %v, want nil", schemes)
	}
}
