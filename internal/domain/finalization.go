package domain

import (
	"time"

	"github.com/google/uuid"
)

// FinalizationState tracks one run of game finalization.
//
//	NotStarted -> Computing -> AlreadyFinalized
//	                        -> SummaryWriteFailed
//	                        -> WritingTransactions -> Success
//	                                               -> TransactionWriteFailed
type FinalizationState string

const (
	FinalizationNotStarted             FinalizationState = "not_started"
	FinalizationComputing              FinalizationState = "computing"
	FinalizationWritingTransactions    FinalizationState = "writing_transactions"
	FinalizationAlreadyFinalized       FinalizationState = "already_finalized"
	FinalizationSuccess                FinalizationState = "success"
	FinalizationSummaryWriteFailed     FinalizationState = "summary_write_failed"
	FinalizationTransactionWriteFailed FinalizationState = "transaction_write_failed"
)

// InFlight reports whether a run is still working in this state.
func (s FinalizationState) InFlight() bool {
	return s == FinalizationComputing || s == FinalizationWritingTransactions
}

// Terminal reports whether the state ends a run.
func (s FinalizationState) Terminal() bool {
	switch s {
	case FinalizationAlreadyFinalized, FinalizationSuccess,
		FinalizationSummaryWriteFailed, FinalizationTransactionWriteFailed:
		return true
	}
	return false
}

// FinalizationStatus is the latest known state of a game's finalization, as
// shown to dashboard clients.
type FinalizationStatus struct {
	GameID         uuid.UUID         `json:"gameId"`
	State          FinalizationState `json:"state"`
	TriggerEnabled bool              `json:"triggerEnabled"`
	Message        string            `json:"message"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}
