package pdf

import "context"

// ReportRow is one line of a tabular report.
type ReportRow struct {
	Cells []string
}

// ReportData is the renderer-agnostic payload for a generated report.
type ReportData struct {
	Title       string
	PeriodLabel string
	Columns     []string
	Rows        []ReportRow
}

type Provider interface {
	GenerateReport(ctx context.Context, data ReportData) ([]byte, error)
}

type NoOpProvider struct{}

func (p *NoOpProvider) GenerateReport(ctx context.Context, data ReportData) ([]byte, error) {
	return nil, nil
}
