package expansion

import (
	"errors"
	"fmt"

	"github.com/superle3/snippet-leaf/internal/log"
)

// ErrOverlap is returned when a queued change overlaps one already queued.
var ErrOverlap = errors.New("overlapping snippet changes")

// Queue collects the changes produced by one keystroke, one per cursor,
// until the engine applies them as a single transaction.
type Queue struct {
	entries []ChangeSpec
}

// Push adds c. A change overlapping a queued one is rejected.
func (q *Queue) Push(c ChangeSpec) error {
	for _, e := range q.entries {
		if e.overlaps(c) {
			log.Warn(log.CatExpand, "dropping overlapping snippet change",
				"from", c.From, "to", c.To, "queuedFrom", e.From, "queuedTo", e.To)
			return fmt.Errorf("[%d,%d) overlaps [%d,%d): %w", c.From, c.To, e.From, e.To, ErrOverlap)
		}
	}
	q.entries = append(q.entries, c)
	return nil
}

// Len returns the number of queued changes.
func (q *Queue) Len() int { return len(q.entries) }

// Drain returns the queued changes and empties the queue.
func (q *Queue) Drain() []ChangeSpec {
	out := q.entries
	q.entries = nil
	return out
}

// Clear discards the queued changes.
func (q *Queue) Clear() {
	if len(q.entries) > 0 {
		log.Debug(log.CatExpand, "clearing snippet queue", "entries", len(q.entries))
	}
	q.entries = nil
}
