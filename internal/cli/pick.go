package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/langpack/pkg/langpack"
	"github.com/matzehuels/langpack/pkg/observability"
)

// pickCommand creates the pick command.
func (c *CLI) pickCommand() *cobra.Command {
	var opts resolveOptions

	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Browse repositories and their language packs",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, outcomes, err := c.runResolve(cmd.Context(), nil, opts)
			if err != nil || len(outcomes) == 0 {
				return err
			}
			_, err = tea.NewProgram(NewRepoListModel(outcomes), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "drop cached entries before resolving")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the cache entirely")
	return cmd
}

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// RepoListModel - Interactive repository browser
// =============================================================================

// RepoListModel is the bubbletea model for browsing resolved repositories.
// Enter opens the packs of the repository under the cursor.
type RepoListModel struct {
	Outcomes []langpack.Outcome
	Cursor   int
	Height   int
	Offset   int
	Detail   bool
	Now      func() time.Time
}

// NewRepoListModel creates a new repo list model.
func NewRepoListModel(outcomes []langpack.Outcome) RepoListModel {
	return RepoListModel{
		Outcomes: outcomes,
		Height:   15,
		Now:      time.Now,
	}
}

func (m RepoListModel) Init() tea.Cmd {
	return nil
}

func (m RepoListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.Detail {
			switch msg.String() {
			case "q", "ctrl+c":
				return m, tea.Quit
			case "esc", "backspace", "enter":
				m.Detail = false
			}
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Outcomes)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Outcomes) > 0 && m.Outcomes[m.Cursor].Result != nil {
				m.Detail = true
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m RepoListModel) View() string {
	if m.Detail {
		return m.detailView()
	}

	var b strings.Builder

	b.WriteString(StyleTitle.Render("Repositories"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ show packs  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Outcomes) {
		end = len(m.Outcomes)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		o := m.Outcomes[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		locales := "—"
		if o.Result != nil {
			locales = fmt.Sprintf("%d", len(o.Result.Packs))
		}
		rows = append(rows, []string{cursor, o.Config.Slug, string(o.Config.Provider), o.Status, locales})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Slug", "Provider", "Status", "Locales").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			idx := m.Offset + row
			if idx >= len(m.Outcomes) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if m.Outcomes[idx].Result == nil {
				base = base.Foreground(colorDim)
			} else if col != 2 {
				base = base.Foreground(colorGreen)
			}
			if idx == m.Cursor {
				base = base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Outcomes))))

	return b.String()
}

func (m RepoListModel) detailView() string {
	o := m.Outcomes[m.Cursor]
	var b strings.Builder

	b.WriteString(StyleTitle.Render(o.Config.Slug))
	b.WriteString(listDimStyle.Render("  " + string(o.Config.Provider) + "  " + o.Config.LanguagesURI))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("esc back  q quit"))
	b.WriteString("\n\n")

	rows := [][]string{}
	for _, locale := range sortedLocales(o.Result.Packs) {
		p := o.Result.Packs[locale]
		rows = append(rows, []string{locale, p.Version, formatRelativeTime(p.Updated, m.now()), p.Package})
	}
	b.WriteString(renderTable([]string{"Locale", "Version", "Updated", "Package"}, rows))
	b.WriteString("\n")
	if o.Status == observability.OutcomeCached {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  cached, fetched %s", formatRelativeTime(o.Result.FetchedAt.UTC().Format(time.RFC3339), m.now()))))
	}
	return b.String()
}

func (m RepoListModel) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// =============================================================================
// Helpers
// =============================================================================

// formatRelativeTime renders a manifest timestamp relative to now.
// Unparseable values are returned unchanged.
func formatRelativeTime(s string, now time.Time) string {
	t := langpack.ParseTimestamp(s)
	if t.IsZero() {
		return s
	}

	diff := now.Sub(t)

	switch {
	case diff < 0:
		return t.Format("Jan 2, 2006")
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
