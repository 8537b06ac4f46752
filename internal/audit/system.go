package audit

import "context"

// System defines the public contract for audit recording.
type System interface {
	// Record appends one entry asynchronously. The write is detached from
	// the caller's context and its failure is logged, never returned.
	Record(ctx context.Context, op Operation, outcome Outcome)
}
