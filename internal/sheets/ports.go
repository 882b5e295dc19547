package sheets

import (
	"context"

	"kharcha/internal/core"
)

// Ports for outbound adapters.
type (
	// ReportWriter publishes a built report somewhere people can read it.
	ReportWriter interface {
		WriteReport(ctx context.Context, r core.Report) error
	}
)
