package regulation

import (
	"context"
	"database/sql/driver"
	"errors"

	"normas/internal/logger"
	apperrors "normas/pkg/errors"
)

// WriteReport summarizes one batch write. Failures carry per-record errors
// that were recovered locally; they never silently disappear.
type WriteReport struct {
	Inserted   int
	Skipped    int
	Components int
	Failures   []WriteFailure
}

type WriteFailure struct {
	Key Key
	Err error
}

// Writer persists new regulations one transaction per record: the row and
// its component rows commit together or not at all.
type Writer struct {
	repo Repository
	log  logger.Logger
}

func NewWriter(repo Repository, log logger.Logger) *Writer {
	return &Writer{repo: repo, log: log}
}

// Write inserts each record in order. A dedup-key conflict (typically a
// race with a concurrent run) is counted as skipped, not escalated. Other
// per-record storage errors are recorded on the report and the batch
// continues. A connection-level failure aborts the run.
func (w *Writer) Write(ctx context.Context, regs []Regulation) (WriteReport, error) {
	report := WriteReport{}

	for i := range regs {
		if err := ctx.Err(); err != nil {
			return report, apperrors.ErrStorage.WithMessage("write interrupted").WithCause(err)
		}

		reg := &regs[i]
		err := w.repo.Insert(ctx, reg)

		switch {
		case err == nil:
			report.Inserted++
			report.Components += len(reg.Components)
			w.log.Debugw("Inserted regulation",
				"id", reg.ID,
				"title", reg.Title,
				"created_at", reg.CreatedAt,
			)

		case errors.Is(err, apperrors.ErrDuplicateKey):
			report.Skipped++
			w.log.Warnw("Skipped duplicate at storage layer",
				"key", reg.Key().String(),
			)

		case isConnectionFailure(err):
			return report, apperrors.ErrStorage.WithMessage("database connection lost during write").WithCause(err)

		default:
			report.Failures = append(report.Failures, WriteFailure{Key: reg.Key(), Err: err})
			w.log.Errorw("Failed to insert regulation",
				"key", reg.Key().String(),
				"error", err,
			)
		}
	}

	return report, nil
}

func isConnectionFailure(err error) bool {
	return errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
