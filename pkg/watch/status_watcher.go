// Package watch detects leave request status transitions between successive
// query snapshots.
package watch

import (
	"sync"

	"github.com/google/uuid"

	"studenthub-be/internal/entity"
)

// StatusChange is one observed transition of a leave request.
type StatusChange struct {
	RequestID uuid.UUID
	StudentID uuid.UUID
	Type      string
	NewStatus entity.LeaveStatus
}

// Watcher keeps the last observed status per request id and reports each
// transition exactly once. The first time an id is observed it only primes
// the baseline: pre-existing statuses are not transitions.
type Watcher struct {
	mu   sync.Mutex
	last map[uuid.UUID]entity.LeaveStatus
}

func NewWatcher() *Watcher {
	return &Watcher{
		last: make(map[uuid.UUID]entity.LeaveStatus),
	}
}

// Observe diffs a fresh snapshot against the remembered statuses and returns
// the transitions, in snapshot order. Ids absent from the snapshot are
// forgotten; if such a request reappears it primes again without an event.
func (w *Watcher) Observe(requests []*entity.LeaveRequest) []StatusChange {
	w.mu.Lock()
	defer w.mu.Unlock()

	var changes []StatusChange
	seen := make(map[uuid.UUID]entity.LeaveStatus, len(requests))

	for _, req := range requests {
		seen[req.Id] = req.Status

		prev, known := w.last[req.Id]
		if known && prev != req.Status {
			changes = append(changes, StatusChange{
				RequestID: req.Id,
				StudentID: req.StudentId,
				Type:      req.Type,
				NewStatus: req.Status,
			})
		}
	}

	w.last = seen
	return changes
}
