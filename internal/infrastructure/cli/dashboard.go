package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/beaconhq/beacon/internal/infrastructure/storage"
	"github.com/beaconhq/beacon/pkg/domain/projection"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive TUI over persisted execution contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		if os.Getenv("BEACON_SKIP_DASHBOARD_RUN") == "true" {
			return nil
		}
		p := tea.NewProgram(initialModel())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("dashboard run failed: %w", err)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(dashboardCmd)
}

// Styles
var baseStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	BorderForeground(lipgloss.Color("240"))

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#7D56F4")).
	PaddingLeft(1).
	PaddingRight(1)

var statusOK = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
var statusErr = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

type model struct {
	table    table.Model
	root     string
	total    int
	active   int
	failed   int
	degraded []string
	err      error
}

func initialModel() model {
	cwd, _ := os.Getwd()
	contexts := storage.NewContextRepository(cwd)

	if !contexts.IsInitialized() {
		return model{err: fmt.Errorf("no %s directory found in %s; run 'beacon serve' first or submit a context", storage.BeaconDir, cwd)}
	}

	ids, err := contexts.ListContexts()
	if err != nil {
		return model{err: err}
	}

	// Setup Table
	columns := []table.Column{
		{Title: "Execution", Width: 20},
		{Title: "Status", Width: 12},
		{Title: "Progress", Width: 10},
		{Title: "Task", Width: 8},
		{Title: "Branch", Width: 25},
	}

	rows := []table.Row{}
	var total, active, failed int
	var degraded []string
	for _, id := range ids {
		doc, err := contexts.LoadContext(id)
		if err != nil {
			degraded = append(degraded, fmt.Sprintf("%s: %v", id, err))
			continue
		}
		p, err := projection.FromTaskContext(doc, id, "")
		if err != nil {
			degraded = append(degraded, fmt.Sprintf("%s: %v", id, err))
			continue
		}

		total++
		switch p.Status {
		case projection.StatusError:
			failed++
		case projection.StatusRunning, projection.StatusInitializing:
			active++
		}

		task := p.CurrentTask
		if task == "" {
			task = "-"
		}
		branch := p.Branch
		if branch == "" {
			branch = "-"
		}
		rows = append(rows, table.Row{
			p.ExecutionID,
			string(p.Status),
			fmt.Sprintf("%.1f%%", p.Progress),
			task,
			branch,
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240"))

	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229"))

	t.SetStyles(s)

	return model{
		table:    t,
		root:     cwd,
		total:    total,
		active:   active,
		failed:   failed,
		degraded: degraded,
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	}
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error loading dashboard: %v\nPress q to quit.", m.err)
	}

	header := headerStyle.Render(fmt.Sprintf("beacon %s", m.root))

	summary := fmt.Sprintf("Executions: %d  Active: %d  Failed: %d", m.total, m.active, m.failed)

	healthView := ""
	if len(m.degraded) > 0 {
		healthView = statusErr.Render("\nUNREADABLE CONTEXTS:\n")
		for _, d := range m.degraded {
			healthView += fmt.Sprintf("- %s\n", d)
		}
	} else {
		healthView = statusOK.Render("\nAll contexts readable")
	}

	return baseStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			summary,
			"\nExecutions:",
			m.table.View(),
			healthView,
			"\n[q] Quit  [Up/Down] Navigate",
		),
	) + "\n"
}
