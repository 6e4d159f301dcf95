// Package trx projects test records into the Visual Studio TRX results format.
package trx

import (
	"trxr/internal/config"
	"trxr/internal/domain"
)

// MapOutcome converts a record's runtime state into a report outcome.
//
// Rules are applied in order, first match wins:
//
//	timed out                 -> Timeout
//	pending with an error     -> Failed
//	pending                   -> NotExecuted or Pending (TreatPendingAsNotExecuted)
//	state passed              -> Passed
//	state failed              -> Failed
//	no state                  -> Inconclusive
func MapOutcome(r *domain.TestRecord, opts config.ReporterOptions) domain.Outcome {
	if r.TimedOut {
		return domain.OutcomeTimeout
	}
	if r.IsPending() {
		if r.Err != nil {
			return domain.OutcomeFailed
		}
		if opts.TreatPendingAsNotExecuted {
			return domain.OutcomeNotExecuted
		}
		return domain.OutcomePending
	}
	switch r.State {
	case domain.StatePassed:
		return domain.OutcomePassed
	case domain.StateFailed:
		return domain.OutcomeFailed
	default:
		return domain.OutcomeInconclusive
	}
}
