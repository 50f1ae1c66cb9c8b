package domain

import (
	"strings"

	m "allmerge.dev/pkg/allmerge/internal/model"
)

// Widget names.
const (
	WidgetBehaviors  = "behaviors"
	WidgetCategories = "categories"
	WidgetSuites     = "suites"
	WidgetSummary    = "summary"
)

// RebuiltWidgets lists the widgets recomputed from merged data, in processing
// order. Any other widget file is copied through.
var RebuiltWidgets = []string{WidgetBehaviors, WidgetCategories, WidgetSuites, WidgetSummary}

// Flat data files rebuilt from the final records.
const (
	DataDuration    = "duration"
	DataSeverity    = "severity"
	DataStatusChart = "status-chart"
)

const passedItemMarker = "passed"

// CountAdmissions replays the admissions of one pass into agg. Each leaf is
// counted under its top-level branch; leaves sitting directly under the root
// have no item and are not counted.
func CountAdmissions(agg *StatisticAggregator, admissions []Admission, pass Pass) {
	for _, admission := range admissions {
		if admission.Pass != pass {
			continue
		}

		item, ok := admission.Item()
		if !ok {
			continue
		}

		agg.Count(item.UID, item.Name, admission.LeafUID, admission.Status)
	}
}

// ExtractTaxonomyWidget counts the baseline admissions, runs afterBaseline and
// then counts the override admissions.
func ExtractTaxonomyWidget(agg *StatisticAggregator, admissions []Admission, afterBaseline func()) m.Widget {
	CountAdmissions(agg, admissions, PassBaseline)

	if afterBaseline != nil {
		afterBaseline()
	}

	CountAdmissions(agg, admissions, PassOverride)

	return agg.Widget()
}

// ApplyPreconditionAdjustment subtracts the precondition passes recorded by the
// Behaviors widget from the first Categories item whose name contains
// "passed". The exported reports subtract the full tally even when it exceeds
// the item's passed count; here the counter stops at zero instead and the
// clamp is reported as a warning.
func ApplyPreconditionAdjustment(categories *StatisticAggregator, tally *PreconditionTally) []m.Warning {
	if tally == nil || tally.Passed() == 0 {
		return nil
	}

	matchPassed := func(item m.WidgetItem) bool {
		return strings.Contains(strings.ToLower(item.Name), passedItemMarker)
	}

	item, clamped, ok := categories.AdjustFirst(matchPassed, m.StatisticCounter{Passed: tally.Passed()})
	if !ok || !clamped {
		return nil
	}

	return []m.Warning{{
		Stage:  "widgets." + WidgetCategories,
		Reason: "precondition adjustment clamped at zero for item " + item.Name,
	}}
}

// BuildSummary computes the summary widget from the final records.
func BuildSummary(reportName string, testRuns []string, records []m.TestCaseRecord, mode CountingMode) m.SummaryWidget {
	agg := NewStatisticAggregator(WidgetSummary, KeepPreconditions{}, mode)

	var span m.TimeSpan

	for i, record := range records {
		agg.Count(WidgetSummary, reportName, record.ID, record.Status)

		doc := testCaseDocument{raw: record.Document, path: record.OriginFile}
		span = extendTimeSpan(span, doc.Time(), i == 0)
	}

	if span.Stop > span.Start {
		span.Duration = span.Stop - span.Start
	}

	runs := testRuns
	if runs == nil {
		runs = []string{}
	}

	return m.SummaryWidget{
		ReportName: reportName,
		TestRuns:   runs,
		Statistic:  agg.Totals(),
		Time:       span,
	}
}

func extendTimeSpan(span, t m.TimeSpan, first bool) m.TimeSpan {
	if t.Start > 0 && (span.Start == 0 || t.Start < span.Start) {
		span.Start = t.Start
	}

	if t.Stop > span.Stop {
		span.Stop = t.Stop
	}

	if first {
		span.MinDuration = t.Duration
	} else if t.Duration < span.MinDuration {
		span.MinDuration = t.Duration
	}

	if t.Duration > span.MaxDuration {
		span.MaxDuration = t.Duration
	}

	span.SumDuration += t.Duration

	return span
}

// FlatData holds the per-test-case data files.
type FlatData struct {
	Duration    []m.FlatEntry
	Severity    []m.FlatEntry
	StatusChart []m.FlatEntry
}

// BuildFlatData derives the flat data files from the final records.
func BuildFlatData(records []m.TestCaseRecord) FlatData {
	data := FlatData{
		Duration:    make([]m.FlatEntry, 0, len(records)),
		Severity:    make([]m.FlatEntry, 0, len(records)),
		StatusChart: make([]m.FlatEntry, 0, len(records)),
	}

	for _, record := range records {
		doc := testCaseDocument{raw: record.Document, path: record.OriginFile}

		entry := m.FlatEntry{
			UID:    record.ID,
			Name:   record.Name,
			Status: record.Status,
			Time:   doc.Time(),
		}
		data.Duration = append(data.Duration, entry)

		entry.Severity = doc.Severity()
		data.Severity = append(data.Severity, entry)
		data.StatusChart = append(data.StatusChart, entry)
	}

	return data
}
