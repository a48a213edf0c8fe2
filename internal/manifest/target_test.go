package manifest

import (
	"errors"
	"testing"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		in       string
		want     Target
		version  int
		firefox  bool
		worker   bool
		action   string
		hasError bool
	}{
		{"", ChromeMV3, 3, false, true, "action", false},
		{"chrome-mv3", ChromeMV3, 3, false, true, "action", false},
		{"FIREFOX-MV3", FirefoxMV3, 3, true, false, "action", false},
		{"firefox-mv2", FirefoxMV2, 2, true, false, "browser_action", false},
		{"safari-mv3", SafariMV3, 3, false, true, "action", false},
		{"edge-mv3", EdgeMV3, 3, false, true, "action", false},
		{"opera-mv3", OperaMV3, 3, false, true, "action", false},
		{"chrome-mv2", "", 0, false, false, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTarget(tt.in)
			if tt.hasError {
				if !errors.Is(err, ErrUnknownTarget) {
					t.Fatalf("ParseTarget(%q) error = %v, want ErrUnknownTarget", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTarget(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseTarget(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if got.ManifestVersion() != tt.version {
				t.Errorf("ManifestVersion() = %d, want %d", got.ManifestVersion(), tt.version)
			}
			if got.IsFirefox() != tt.firefox {
				t.Errorf("IsFirefox() = %v, want %v", got.IsFirefox(), tt.firefox)
			}
			if got.UsesServiceWorker() != tt.worker {
				t.Errorf("UsesServiceWorker() = %v, want %v", got.UsesServiceWorker(), tt.worker)
			}
			if got.ActionKey() != tt.action {
				t.Errorf("ActionKey() = %q, want %q", got.ActionKey(), tt.action)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{
		"":            Production,
		"prod":        Production,
		"production":  Production,
		"dev":         Development,
		"Development": Development,
	} {
		got, err := ParseMode(in)
		if err != nil {
			t.Fatalf("ParseMode(%q) error: %v", in, err)
		}
		if got != want {
			t.Errorf("ParseMode(%q) = %q, want %q", in, got, want)
		}
	}

	if _, err := ParseMode("staging"); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("ParseMode(staging) error = %v, want ErrUnknownMode", err)
	}
}
