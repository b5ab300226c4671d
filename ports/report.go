package ports

import (
	"context"

	"tolninja/domain/stackup"
)

// ReportWriter renders an analysis result into a report file (e.g. an
// xlsx workbook) at the given path.
type ReportWriter interface {
	Write(ctx context.Context, result *stackup.AnalysisResult, path string) error
}
