package cli

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/langpack/pkg/langpack"
	"github.com/matzehuels/langpack/pkg/observability"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func pickOutcomes() []langpack.Outcome {
	return []langpack.Outcome{
		{
			Config: &langpack.RepositoryConfig{Slug: "hello", Provider: "github", LanguagesURI: "https://github.com/acme/hello"},
			Result: &langpack.Result{Packs: map[string]langpack.LocalePackage{
				"de_DE": {Locale: "de_DE", Package: "https://github.com/acme/hello/blob/main/de_DE.zip?raw=true", Version: "1.0", Updated: "2024-03-01 10:00:00"},
			}},
			Status: observability.OutcomeFetched,
		},
		{
			Config: &langpack.RepositoryConfig{Slug: "broken", Provider: "gitlab"},
			Status: observability.OutcomeError,
		},
	}
}

func update(m RepoListModel, keys ...string) (RepoListModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(key(k))
		m = next.(RepoListModel)
	}
	return m, cmd
}

func TestRepoListNavigation(t *testing.T) {
	m := NewRepoListModel(pickOutcomes())

	m, _ = update(m, "down", "down", "down")
	if m.Cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.Cursor)
	}
	m, _ = update(m, "k", "up")
	if m.Cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.Cursor)
	}

	view := m.View()
	for _, want := range []string{"hello", "broken", "[1/2]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestRepoListDetail(t *testing.T) {
	m := NewRepoListModel(pickOutcomes())
	m.Now = func() time.Time { return time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC) }

	m, _ = update(m, "enter")
	if !m.Detail {
		t.Fatal("enter did not open detail view")
	}
	view := m.View()
	if !strings.Contains(view, "de_DE") || !strings.Contains(view, "3h ago") {
		t.Errorf("detail view = %s", view)
	}

	m, _ = update(m, "esc")
	if m.Detail {
		t.Error("esc did not close detail view")
	}

	// Failed repositories have nothing to show.
	m, _ = update(m, "down", "enter")
	if m.Detail {
		t.Error("detail opened for a repository without packs")
	}
}

func TestRepoListQuit(t *testing.T) {
	_, cmd := update(NewRepoListModel(pickOutcomes()), "q")
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		in, want string
	}{
		{"2024-03-10 11:30:00", "30m ago"},
		{"2024-03-10 07:00:00", "5h ago"},
		{"2024-03-08", "2d ago"},
		{"2024-01-15 09:00:00", "Jan 15, 2024"},
		{"soon", "soon"},
	}
	for _, tt := range tests {
		if got := formatRelativeTime(tt.in, now); got != tt.want {
			t.Errorf("formatRelativeTime(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
