package model

// WidgetItem is one row of a statistics widget.
type WidgetItem struct {
	UID       string           `json:"uid"`
	Name      string           `json:"name"`
	Statistic StatisticCounter `json:"statistic"`
}

// Widget is the flat statistics view written to widgets/<name>.json.
type Widget struct {
	Total int          `json:"total"`
	Items []WidgetItem `json:"items"`
}

// TimeSpan mirrors the "time" block of report documents, in milliseconds.
type TimeSpan struct {
	Start       int64 `json:"start,omitempty"`
	Stop        int64 `json:"stop,omitempty"`
	Duration    int64 `json:"duration,omitempty"`
	MinDuration int64 `json:"minDuration,omitempty"`
	MaxDuration int64 `json:"maxDuration,omitempty"`
	SumDuration int64 `json:"sumDuration,omitempty"`
}

// SummaryWidget is the shape of widgets/summary.json.
type SummaryWidget struct {
	ReportName string           `json:"reportName"`
	TestRuns   []string         `json:"testRuns"`
	Statistic  StatisticCounter `json:"statistic"`
	Time       TimeSpan         `json:"time"`
}

// FlatEntry is one element of the flat data files (duration, severity,
// status-chart).
type FlatEntry struct {
	UID      string   `json:"uid"`
	Name     string   `json:"name"`
	Status   Status   `json:"status"`
	Time     TimeSpan `json:"time"`
	Severity string   `json:"severity,omitempty"`
}
