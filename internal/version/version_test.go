// ABOUTME: Tests for version constants
// ABOUTME: Ensures version information is properly defined
package version

import (
	"strings"
	"testing"
)

func TestConstantsDefined(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"Version", Version},
		{"Product", Product},
		{"Manufacturer", Manufacturer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value == "" {
				t.Errorf("%s should not be empty", tt.name)
			}
			if len(tt.value) > 100 {
				t.Errorf("%s is unreasonably long", tt.name)
			}
			for _, placeholder := range []string{"TODO", "FIXME", "XXX", "placeholder"} {
				if tt.value == placeholder {
					t.Errorf("%s should not be placeholder value: %s", tt.name, placeholder)
				}
			}
		})
	}
}

func TestString(t *testing.T) {
	s := String()
	if !strings.HasPrefix(s, Product) || !strings.HasSuffix(s, Version) {
		t.Errorf("unexpected version string %q", s)
	}
}

func TestVersionOverridable(t *testing.T) {
	saved := Version
	defer func() { Version = saved }()

	Version = "1.2.3-test"
	if got := String(); got != Product+" 1.2.3-test" {
		t.Errorf("expected overridden version in %q", got)
	}
}
