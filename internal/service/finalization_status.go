package service

import (
	"sync"
	"time"

	"github.com/dom/squad-dashboard/internal/domain"
	"github.com/google/uuid"
)

// FinalizationNotifier receives every status change. Implementations must not
// block; they are called while a finalization run is in progress.
type FinalizationNotifier interface {
	FinalizationChanged(status domain.FinalizationStatus)
}

// statusTracker keeps the latest status per game for this process.
type statusTracker struct {
	mu       sync.RWMutex
	statuses map[uuid.UUID]domain.FinalizationStatus
	// Games left partially finalized keep their trigger disabled until
	// their merits are reconciled.
	partial  map[uuid.UUID]bool
	notifier FinalizationNotifier
	now      func() time.Time
}

func newStatusTracker(notifier FinalizationNotifier) *statusTracker {
	return &statusTracker{
		statuses: make(map[uuid.UUID]domain.FinalizationStatus),
		partial:  make(map[uuid.UUID]bool),
		notifier: notifier,
		now:      time.Now,
	}
}

func (t *statusTracker) set(gameID uuid.UUID, state domain.FinalizationState, message string) domain.FinalizationStatus {
	t.mu.Lock()
	switch state {
	case domain.FinalizationTransactionWriteFailed:
		t.partial[gameID] = true
	case domain.FinalizationSuccess:
		delete(t.partial, gameID)
	}
	status := domain.FinalizationStatus{
		GameID:         gameID,
		State:          state,
		TriggerEnabled: !state.InFlight() && !t.partial[gameID],
		Message:        message,
		UpdatedAt:      t.now(),
	}
	t.statuses[gameID] = status
	t.mu.Unlock()

	if t.notifier != nil {
		t.notifier.FinalizationChanged(status)
	}
	return status
}

// markPartial latches a game as partially finalized without publishing a
// status; the next set carries the disabled trigger.
func (t *statusTracker) markPartial(gameID uuid.UUID) {
	t.mu.Lock()
	t.partial[gameID] = true
	t.mu.Unlock()
}

func (t *statusTracker) get(gameID uuid.UUID) (domain.FinalizationStatus, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	status, ok := t.statuses[gameID]
	return status, ok
}
