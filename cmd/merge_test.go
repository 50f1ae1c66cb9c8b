package cmd

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"allmerge.dev/pkg/allmerge/internal/adapter"
	"allmerge.dev/pkg/allmerge/internal/domain"
	domainmocks "allmerge.dev/pkg/allmerge/internal/domain/mocks"
	m "allmerge.dev/pkg/allmerge/internal/model"
)

func TestMergeCmd_Defaults(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)

	cmd := newRootCmd()
	cmd.AddCommand(newMergeCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	originalWorkflow := workflow
	workflow = mockWorkflow
	defer func() { workflow = originalWorkflow }()

	mockWorkflow.On("Merge", mock.Anything, mock.MatchedBy(func(args domain.MergeArgs) bool {
		return args.Input == m.Path(defaultInputDir) &&
			args.Output == m.Path(defaultOutputDir) &&
			args.Ledger == "" &&
			args.Iterations == 0 &&
			args.Plugin == adapter.DefaultPlugin &&
			args.RunPrefix == adapter.DefaultRunPrefix &&
			args.Parallel == defaultRunParallel &&
			args.Counting == domain.AdditiveCounting &&
			args.ReportName == domain.DefaultReportName &&
			!args.Strict &&
			!args.Archive
	})).Return(nil)

	cmd.SetArgs([]string{"merge"})
	err := cmd.Execute()
	require.NoError(t, err)

	mockWorkflow.AssertExpectations(t)
}

func TestMergeCmd_FlagsArePassedThrough(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)

	cmd := newRootCmd()
	cmd.AddCommand(newMergeCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	originalWorkflow := workflow
	workflow = mockWorkflow
	defer func() { workflow = originalWorkflow }()

	mockWorkflow.On("Merge", mock.Anything, mock.MatchedBy(func(args domain.MergeArgs) bool {
		return args.Input == m.Path("./runs") &&
			args.Output == m.Path("./out") &&
			args.Ledger == m.Path("ledger.xlsx") &&
			args.Iterations == 3 &&
			args.Plugin == "allure-gradle-plugin" &&
			args.RunPrefix == "Iteration" &&
			args.Parallel == 4 &&
			args.Counting == domain.NetCounting &&
			args.ReportName == "Release 7" &&
			args.Strict &&
			args.Archive
	})).Return(nil)

	cmd.SetArgs([]string{
		"merge",
		"-i", "./runs",
		"-o", "./out",
		"--ledger", "ledger.xlsx",
		"-n", "3",
		"--plugin", "allure-gradle-plugin",
		"--run-prefix", "Iteration",
		"--parallel", "4",
		"--counting", "net",
		"--report-name", "Release 7",
		"--strict",
		"--archive",
	})
	err := cmd.Execute()
	require.NoError(t, err)

	mockWorkflow.AssertExpectations(t)
}

func TestMergeCmd_InvalidCountingMode(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)

	cmd := newRootCmd()
	cmd.AddCommand(newMergeCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	originalWorkflow := workflow
	workflow = mockWorkflow
	defer func() { workflow = originalWorkflow }()

	cmd.SetArgs([]string{"merge", "--counting", "sum"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown counting mode")
}

func TestMergeCmd_PropagatesWorkflowError(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)

	cmd := newRootCmd()
	cmd.AddCommand(newMergeCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	originalWorkflow := workflow
	workflow = mockWorkflow
	defer func() { workflow = originalWorkflow }()

	mockWorkflow.EXPECT().Merge(mock.Anything, mock.Anything).Return(domain.ErrIncompleteConsolidation)

	cmd.SetArgs([]string{"merge", "--strict"})
	err := cmd.Execute()
	require.True(t, errors.Is(err, domain.ErrIncompleteConsolidation))
}

func TestMergeCmd_PositionalArgsAreRejected(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)

	cmd := newRootCmd()
	cmd.AddCommand(newMergeCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	originalWorkflow := workflow
	workflow = mockWorkflow
	defer func() { workflow = originalWorkflow }()

	cmd.SetArgs([]string{"merge", "./runs"})
	err := cmd.Execute()
	require.Error(t, err)
}
