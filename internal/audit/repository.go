package audit

import (
	"context"
	"database/sql"
	"log/slog"
	"time"
)

const recordTimeout = 5 * time.Second

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates an audit recorder implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "audit"),
	}
}

func (r *repo) Record(ctx context.Context, op Operation, outcome Outcome) {
	// Detach from the request context so a completed or cancelled request
	// does not abort the write.
	ctx = context.WithoutCancel(ctx)

	go func() {
		writeCtx, cancel := context.WithTimeout(ctx, recordTimeout)
		defer cancel()

		_, err := r.db.ExecContext(
			writeCtx,
			"INSERT INTO audit_log(operation, outcome) VALUES ($1, $2)",
			string(op),
			string(outcome),
		)
		if err != nil {
			r.logger.Warn("audit record failed", "operation", op, "outcome", outcome, "error", err)
		}
	}()
}
