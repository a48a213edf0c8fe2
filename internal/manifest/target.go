package manifest

import (
	"fmt"
	"strings"
)

// Target selects the browser engine and manifest schema version of a build.
type Target string

// Supported build targets.
const (
	ChromeMV3  Target = "chrome-mv3"
	FirefoxMV3 Target = "firefox-mv3"
	FirefoxMV2 Target = "firefox-mv2"
	SafariMV3  Target = "safari-mv3"
	EdgeMV3    Target = "edge-mv3"
	OperaMV3   Target = "opera-mv3"
)

// DefaultTarget is used when no target is configured.
const DefaultTarget = ChromeMV3

// Targets returns every supported target in display order.
func Targets() []Target {
	return []Target{ChromeMV3, FirefoxMV3, FirefoxMV2, SafariMV3, EdgeMV3, OperaMV3}
}

// ParseTarget validates a target selector. An empty string yields DefaultTarget.
func ParseTarget(s string) (Target, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultTarget, nil
	}
	for _, t := range Targets() {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownTarget, s)
}

// Browser returns the engine half of the target, e.g. "firefox".
func (t Target) Browser() string {
	browser, _, _ := strings.Cut(string(t), "-")
	return browser
}

// ManifestVersion returns 2 or 3.
func (t Target) ManifestVersion() int {
	if strings.HasSuffix(string(t), "-mv2") {
		return 2
	}
	return 3
}

// IsFirefox reports whether the target is a Gecko build.
func (t Target) IsFirefox() bool {
	return t.Browser() == "firefox"
}

// UsesServiceWorker reports whether the background entry is declared as
// background.service_worker. Firefox only accepts background.scripts.
func (t Target) UsesServiceWorker() bool {
	return !t.IsFirefox()
}

// ActionKey returns the manifest key of the toolbar action.
func (t Target) ActionKey() string {
	if t.ManifestVersion() == 2 {
		return "browser_action"
	}
	return "action"
}

// Mode is the build mode.
type Mode string

// Build modes.
const (
	Development Mode = "development"
	Production  Mode = "production"
)

// ParseMode validates a build mode. An empty string yields Production.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "production", "prod":
		return Production, nil
	case "development", "dev":
		return Development, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownMode, s)
	}
}

// IsDev reports whether m is the development mode.
func (m Mode) IsDev() bool { return m == Development }
