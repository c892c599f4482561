package buildinfo

import (
	"strings"
	"testing"
)

func TestUserAgent(t *testing.T) {
	old := Version
	Version = "v1.2.3"
	defer func() { Version = old }()

	if got, want := UserAgent(), "langpack/v1.2.3 (+https://github.com/matzehuels/langpack)"; got != want {
		t.Errorf("UserAgent() = %q, want %q", got, want)
	}
	if !strings.Contains(Template(), "v1.2.3") {
		t.Errorf("Template() = %q, want version", Template())
	}
	if !strings.Contains(String(), "commit: ") {
		t.Errorf("String() = %q", String())
	}
}
