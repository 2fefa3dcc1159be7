package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrintBanner_IncludesVersion(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "0.1.0")

	out := buf.String()
	if !strings.Contains(out, "v0.1.0") {
		t.Errorf("expected version in banner output, got: %s", out)
	}
	if !strings.Contains(out, "reachability analyzer") {
		t.Errorf("expected tagline in banner output, got: %s", out)
	}
}

func TestShouldShowBanner(t *testing.T) {
	cases := []struct {
		isTTY, noBanner, want bool
	}{
		{true, false, true},
		{true, true, false},
		{false, false, false},
		{false, true, false},
	}
	for _, tc := range cases {
		if got := ShouldShowBanner(tc.isTTY, tc.noBanner); got != tc.want {
			t.Errorf("ShouldShowBanner(%v, %v) = %v, want %v", tc.isTTY, tc.noBanner, got, tc.want)
		}
	}
}
