package buildkit

// Platform describes one target platform a scheme may build for: a device
// SDK, and — for mobile platforms — a paired simulator SDK whose output is
// merged into the device build's binary. Desktop platforms build once and
// are never merged.
type Platform struct {
	Name         string // output-tree folder name, e.g. "iOS", "Mac"
	DeviceSDK    string // -sdk value for the device build
	SimulatorSDK string // -sdk value for the simulator build; "" for desktop
}

func (p Platform) isDesktop() bool { return p.SimulatorSDK == "" }

// platforms maps an xcodebuild PLATFORM_NAME setting to the Platform it
// belongs to. These are the platform families the native build tool is
// known to report; an unrecognized PLATFORM_NAME causes the scheme to be
// skipped rather than guessed at.
var platforms = map[string]Platform{
	"iphoneos":         {Name: "iOS", DeviceSDK: "iphoneos", SimulatorSDK: "iphonesimulator"},
	"iphonesimulator":  {Name: "iOS", DeviceSDK: "iphoneos", SimulatorSDK: "iphonesimulator"},
	"appletvos":        {Name: "tvOS", DeviceSDK: "appletvos", SimulatorSDK: "appletvsimulator"},
	"appletvsimulator": {Name: "tvOS", DeviceSDK: "appletvos", SimulatorSDK: "appletvsimulator"},
	"watchos":          {Name: "watchOS", DeviceSDK: "watchos", SimulatorSDK: "watchsimulator"},
	"watchsimulator":   {Name: "watchOS", DeviceSDK: "watchos", SimulatorSDK: "watchsimulator"},
	"macosx":           {Name: "Mac", DeviceSDK: "macosx"},
}

// platformFor resolves a PLATFORM_NAME setting value to its Platform. The
// second return is false for a setting this build tool doesn't recognize.
func platformFor(platformName string) (Platform, bool) {
	p, ok := platforms[platformName]
	return p, ok
}
