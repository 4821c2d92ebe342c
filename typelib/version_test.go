package typelib

import "testing"

func TestParseVersion(t *testing.T) {
	tests := []struct {
		input  string
		want   Version
		wantOk bool
	}{
		{"2.0", Version{2, 0}, true},
		{"3.24", Version{3, 24}, true},
		{"1.0.0", Version{1, 0}, true}, // WIT semver
		{"4294967295.1", Version{4294967295, 1}, true},
		{"3", Version{}, false},
		{"", Version{}, false},
		{"abc", Version{}, false},
		{"1.a", Version{}, false},
		{"1.2.3.4", Version{}, false},
		{"4294967296.0", Version{}, false}, // overflow
		{"1..0", Version{}, false},
		{"1.0.", Version{}, false},
		{"+1.0", Version{}, false},
	}

	for _, tt := range tests {
		v, ok := ParseVersion(tt.input)
		if ok != tt.wantOk {
			t.Errorf("ParseVersion(%q) ok = %v, want %v", tt.input, ok, tt.wantOk)
		}
		if ok && v != tt.want {
			t.Errorf("ParseVersion(%q) = %v, want %v", tt.input, v, tt.want)
		}
	}
}

func TestVersionCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0", "1.0", 0},
		{"1.2", "1.10", -1}, // numeric, not lexical
		{"2.0", "1.99", 1},
		{"1.0.1", "1.0", 1}, // equal numerically, lexical tie-break
		{"1.0", "beta", 1},  // parseable sorts above unparseable
		{"alpha", "beta", -1},
	}

	for _, tt := range tests {
		if got := compareVersionStrings(tt.a, tt.b); got != tt.want {
			t.Errorf("compareVersionStrings(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
