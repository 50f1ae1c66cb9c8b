package controller

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	m "allmerge.dev/pkg/allmerge/internal/model"
)

// pagerChrome is the number of lines used by the title and the footer.
const pagerChrome = 4

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

// TUI implements UI with styled output and a Bubble Tea pager for content
// taller than the terminal.
type TUI struct {
	output io.Writer
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// DisplayIterations shows the discovered iterations.
func (p *TUI) DisplayIterations(ctx context.Context, iterations []m.IterationInfo) error {
	if len(iterations) == 0 {
		return p.show(ctx, "Iterations", "  No iterations found\n")
	}

	return p.show(ctx, fmt.Sprintf("Iterations (%d)", len(iterations)), renderIterationsTable(iterations))
}

// DisplayLedger shows the ledger overrides.
func (p *TUI) DisplayLedger(ctx context.Context, entries []m.LedgerEntry) error {
	if len(entries) == 0 {
		return p.show(ctx, "Execution ledger", "  No ledger overrides\n")
	}

	return p.show(ctx, fmt.Sprintf("Execution ledger (%d overrides)", len(entries)), renderLedgerTable(entries))
}

// DisplayResult shows the outcome of a consolidation.
func (p *TUI) DisplayResult(ctx context.Context, result m.Result) error {
	status := okStyle.Render("complete")
	if !result.Complete() {
		status = warnStyle.Render(fmt.Sprintf("%d warning(s)", len(result.Warnings)))
	}

	return p.show(ctx, "Consolidation "+status, renderResult(result))
}

// DisplayReport shows the widgets of a consolidated report.
func (p *TUI) DisplayReport(ctx context.Context, view ReportView) error {
	return p.show(ctx, "Report "+string(view.Report), renderReport(view))
}

func (p *TUI) show(ctx context.Context, title, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	width, height := terminalSize(p.output)

	if height == 0 || strings.Count(content, "\n")+pagerChrome <= height {
		_, err := fmt.Fprintf(p.output, "%s\n\n%s", titleStyle.Render(title), content)
		return err
	}

	model := newPagerModel(title, content, width, height)

	program := tea.NewProgram(model, tea.WithOutput(p.output), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return err
	}

	return nil
}

func terminalSize(w io.Writer) (int, int) {
	f, ok := w.(*os.File)
	if !ok {
		return 0, 0
	}

	width, height, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0, 0
	}

	return width, height
}

// pagerModel scrolls long content in a viewport.
type pagerModel struct {
	title    string
	viewport viewport.Model
	quitting bool
}

func newPagerModel(title, content string, width, height int) pagerModel {
	vp := viewport.New(width, max(height-pagerChrome, 1))
	vp.SetContent(content)

	return pagerModel{title: title, viewport: vp}
}

func (pm pagerModel) Init() tea.Cmd {
	return nil
}

func (pm pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			pm.quitting = true
			return pm, tea.Quit
		}
	case tea.WindowSizeMsg:
		pm.viewport.Width = msg.Width
		pm.viewport.Height = max(msg.Height-pagerChrome, 1)

		return pm, nil
	}

	var cmd tea.Cmd

	pm.viewport, cmd = pm.viewport.Update(msg)

	return pm, cmd
}

func (pm pagerModel) View() string {
	if pm.quitting {
		return ""
	}

	footer := footerStyle.Render(fmt.Sprintf(
		"%3.f%% | ↑/k: up | ↓/j: down | pgup/pgdown | q: quit",
		pm.viewport.ScrollPercent()*100,
	))

	return fmt.Sprintf("%s\n\n%s\n\n%s", titleStyle.Render(pm.title), pm.viewport.View(), footer)
}
