package orchestration

import (
	"context"

	"github.com/bizmatters/agent-builder/circuit-designer/internal/models"
)

// Progress receives one message per pipeline step. Report must not block for long.
type Progress interface {
	Report(ctx context.Context, message string)
}

// Approver asks the user whether an improvement suggestion may be applied.
// A Progress that also implements Approver is used as the approval channel.
type Approver interface {
	RequestApproval(ctx context.Context, suggestion models.ImprovementSuggestion) (bool, error)
}

// ProgressFunc adapts a function to Progress.
type ProgressFunc func(ctx context.Context, message string)

// Report calls f.
func (f ProgressFunc) Report(ctx context.Context, message string) {
	f(ctx, message)
}

type nopProgress struct{}

func (nopProgress) Report(context.Context, string) {}

// requestApproval resolves false when no approval channel exists.
func requestApproval(ctx context.Context, progress Progress, suggestion models.ImprovementSuggestion) (bool, error) {
	approver, ok := progress.(Approver)
	if !ok {
		return false, nil
	}
	return approver.RequestApproval(ctx, suggestion)
}
