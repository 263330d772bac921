package cmd

import (
	"strings"
	"testing"
)

func TestPrintHelp(t *testing.T) {
	var buf strings.Builder
	printHelp(&buf)

	out := buf.String()
	for _, want := range []string{"add", "add-url", "ask", "docs", "rm", "version", "GEMINI_API_KEY"} {
		if !strings.Contains(out, want) {
			t.Errorf("help output missing %q", want)
		}
	}
}

func TestRunVersion(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key-1234567890")

	var buf strings.Builder
	if err := runVersion(&buf); err != nil {
		t.Fatalf("runVersion() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"corpus development",
		"Build Time: unknown",
		"Git Commit: unknown",
		"test...7890 (configured)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("version output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "test-key-1234567890") {
		t.Error("version output leaks the full API key")
	}
}

func TestRunVersionWithoutKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	var buf strings.Builder
	if err := runVersion(&buf); err != nil {
		t.Fatalf("runVersion() error = %v", err)
	}
	if !strings.Contains(buf.String(), "not set") {
		t.Errorf("version output should flag the missing key:\n%s", buf.String())
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0B"},
		{512, "512B"},
		{2048, "2.0KB"},
		{3 << 20, "3.0MB"},
	}
	for _, tt := range tests {
		if got := formatSize(tt.n); got != tt.want {
			t.Errorf("formatSize(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
