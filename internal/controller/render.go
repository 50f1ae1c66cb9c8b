package controller

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	m "allmerge.dev/pkg/allmerge/internal/model"
)

const (
	availableMark = "yes"
	missingMark   = "-"
)

func newTable(buffer *bytes.Buffer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(buffer)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)

	return table
}

func renderIterationsTable(iterations []m.IterationInfo) string {
	var buffer bytes.Buffer

	header := []string{"Run", "Test Cases"}
	for _, taxonomy := range m.Taxonomies {
		header = append(header, string(taxonomy))
	}

	table := newTable(&buffer, header)

	totalCases := 0

	for _, iteration := range iterations {
		row := []string{iteration.RunID, strconv.Itoa(iteration.TestCases)}

		for _, taxonomy := range m.Taxonomies {
			mark := missingMark
			if iteration.Taxonomies[taxonomy] {
				mark = availableMark
			}

			row = append(row, mark)
		}

		table.Append(row)

		totalCases += iteration.TestCases
	}

	footer := []string{fmt.Sprintf("Total Runs %d", len(iterations)), strconv.Itoa(totalCases)}
	for range m.Taxonomies {
		footer = append(footer, "")
	}

	table.SetFooter(footer)
	table.Render()

	return buffer.String()
}

func renderLedgerTable(entries []m.LedgerEntry) string {
	var buffer bytes.Buffer

	table := newTable(&buffer, []string{"Run", "Test Case", "Status"})

	for _, entry := range entries {
		table.Append([]string{entry.RunID, entry.TestCaseID, entry.Status.String()})
	}

	table.SetFooter([]string{"Overrides", strconv.Itoa(len(entries)), ""})
	table.Render()

	return buffer.String()
}

func renderStatisticTable(title string, items []m.WidgetItem) string {
	var buffer bytes.Buffer

	table := newTable(&buffer, []string{title, "Passed", "Failed", "Broken", "Skipped", "Unknown", "Total"})
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
	})

	for _, item := range items {
		table.Append(statisticRow(item.Name, item.Statistic))
	}

	table.Render()

	return buffer.String()
}

func statisticRow(name string, statistic m.StatisticCounter) []string {
	return []string{
		name,
		strconv.Itoa(statistic.Passed),
		strconv.Itoa(statistic.Failed),
		strconv.Itoa(statistic.Broken),
		strconv.Itoa(statistic.Skipped),
		strconv.Itoa(statistic.Unknown),
		strconv.Itoa(statistic.Total),
	}
}

func renderResult(result m.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Consolidated %d run(s) into %s\n", len(result.Iterations), result.Output)
	fmt.Fprintf(&b, "Test cases: %d (overrides applied: %d)\n\n", result.TestCases, result.Overrides)

	b.WriteString(renderStatisticTable("Summary", []m.WidgetItem{{Name: "all", Statistic: result.Summary}}))

	var buffer bytes.Buffer

	table := newTable(&buffer, []string{"Taxonomy", "Leaves"})
	for _, taxonomy := range m.Taxonomies {
		table.Append([]string{string(taxonomy), strconv.Itoa(result.Leaves[taxonomy])})
	}

	table.Render()
	b.WriteString("\n")
	b.WriteString(buffer.String())

	b.WriteString(renderWarnings(result.Warnings))

	if result.Archive != "" {
		fmt.Fprintf(&b, "\nArchive: %s\n", result.Archive)
	}

	return b.String()
}

func renderWarnings(warnings []m.Warning) string {
	if len(warnings) == 0 {
		return ""
	}

	var buffer bytes.Buffer

	table := newTable(&buffer, []string{"Stage", "Path", "Reason"})
	for _, warning := range warnings {
		table.Append([]string{warning.Stage, string(warning.Path), warning.Reason})
	}

	table.Render()

	return fmt.Sprintf("\nWarnings (%d):\n%s", len(warnings), buffer.String())
}

func renderReport(view ReportView) string {
	var b strings.Builder

	name := view.Summary.ReportName
	if name == "" {
		name = string(view.Report)
	}

	fmt.Fprintf(&b, "%s\n", name)

	if len(view.Summary.TestRuns) > 0 {
		fmt.Fprintf(&b, "Runs: %s\n", strings.Join(view.Summary.TestRuns, ", "))
	}

	b.WriteString("\n")
	b.WriteString(renderStatisticTable("Summary", []m.WidgetItem{{Name: "all", Statistic: view.Summary.Statistic}}))

	widgets := append([]NamedWidget(nil), view.Widgets...)
	sort.SliceStable(widgets, func(i, j int) bool {
		return widgets[i].Name < widgets[j].Name
	})

	for _, widget := range widgets {
		b.WriteString("\n")
		b.WriteString(renderStatisticTable(widget.Name, widget.Widget.Items))
	}

	if view.Manifest != nil {
		fmt.Fprintf(&b, "\nRun %s finished %s\n", view.Manifest.RunID, view.Manifest.FinishedAt.Format("2006-01-02 15:04:05"))
		b.WriteString(renderWarnings(view.Manifest.Warnings))
	}

	return b.String()
}
