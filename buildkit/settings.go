package buildkit

import (
	"bufio"
	"regexp"
	"strings"
)

// targetHeader matches a "Build settings for action <action> and target
// "<target>":" header line, anchored to the start of the line; capture
// group 1 is the target name.
var targetHeader = regexp.MustCompile(`^Build settings for action \S+ and target "([^"]+)":$`)

// settingLine matches one "KEY = value" settings line. Keys are all-caps
// identifiers; the value is everything after " = " to end of line (values
// may contain spaces, e.g. OTHER_LDFLAGS).
var settingLine = regexp.MustCompile(`^\s{4}([A-Za-z0-9_]+) = (.*)$`)

// TargetSettings maps a target name to its build settings (KEY -> value),
// as produced by a show-settings invocation.
type TargetSettings map[string]map[string]string

// ParseSettings parses show-settings stdout into a TargetSettings, bucketing
// each "KEY = value" line under the most recently seen target header.
func ParseSettings(output string) TargetSettings {
	result := make(TargetSettings)
	var current string
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if m := targetHeader.FindStringSubmatch(line); m != nil {
			current = m[1]
			if _, ok := result[current]; !ok {
				result[current] = make(map[string]string)
			}
			continue
		}
		if current == "" {
			continue
		}
		if m := settingLine.FindStringSubmatch(line); m != nil {
			result[current][m[1]] = m[2]
		}
	}
	return result
}

// dynamicFrameworkProductType is the PRODUCT_TYPE value the native build
// tool reports for a dynamic framework target; every other product type
// (static library, unit test bundle, application) is skipped by the scheme
// filter.
const dynamicFrameworkProductType = "com.apple.product-type.framework"

// isDynamicFramework reports whether settings describes a dynamic
// framework target.
func isDynamicFramework(settings map[string]string) bool {
	return settings["PRODUCT_TYPE"] == dynamicFrameworkProductType
}

// schemesHeader and the blank line that terminates its block delimit the
// scheme list in a list-schemes invocation's stdout.
var schemesHeader = regexp.MustCompile(`^\s*Schemes:\s*$`)

// ParseSchemeList extracts scheme names from a list-schemes invocation's
// stdout: the trimmed, non-blank lines following a "Schemes:" header, up to
// the next blank line.
func ParseSchemeList(output string) []string {
	var schemes []string
	inBlock := false
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if !inBlock {
			if schemesHeader.MatchString(line) {
				inBlock = true
			}
			continue
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			break
		}
		schemes = append(schemes, trimmed)
	}
	return schemes
}
