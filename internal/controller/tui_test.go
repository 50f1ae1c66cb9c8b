package controller

import (
	"bytes"
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "allmerge.dev/pkg/allmerge/internal/model"
)

func TestTUI_PrintsWhenNotATerminal(t *testing.T) {
	var buf bytes.Buffer

	ui := NewTUI(&buf)

	err := ui.DisplayLedger(context.Background(), []m.LedgerEntry{{RunID: "Run1", TestCaseID: "TC-1", Status: m.StatusFailed}})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "Execution ledger (1 overrides)")
	assert.Contains(t, buf.String(), "TC-1")
}

func TestTUI_DisplayResultShowsWarningCount(t *testing.T) {
	var buf bytes.Buffer

	ui := NewTUI(&buf)

	err := ui.DisplayResult(context.Background(), m.Result{Warnings: []m.Warning{{Stage: "output", Reason: "boom"}}})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "1 warning(s)")
}

func TestPagerModel_KeysAndResize(t *testing.T) {
	content := strings.Repeat("line\n", 100)
	model := newPagerModel("Report", content, 80, 20)

	assert.Equal(t, 20-pagerChrome, model.viewport.Height)

	updated, cmd := model.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.Nil(t, cmd)

	pm := updated.(pagerModel)
	assert.Equal(t, 100, pm.viewport.Width)
	assert.Equal(t, 30-pagerChrome, pm.viewport.Height)
	assert.Contains(t, pm.View(), "q: quit")

	updated, cmd = pm.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.True(t, updated.(pagerModel).quitting)
	assert.Empty(t, updated.(pagerModel).View())
}

func TestNewUI(t *testing.T) {
	cmd := &cobra.Command{}

	assert.IsType(t, &SimpleUI{}, NewUI(cmd, false))
	assert.IsType(t, &TUI{}, NewUI(cmd, true))
	assert.False(t, IsTTY(&bytes.Buffer{}))
}
