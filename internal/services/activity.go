package services

import (
	"time"

	"pointplay-backend/internal/models"
)

const activityTimeLayout = "15:04:05"

// ActivityRecorder is a bounded, newest-first feed of human readable events.
// It is not safe for concurrent use; Session serializes access.
type ActivityRecorder struct {
	entries  []string
	capacity int
	now      func() time.Time
}

func NewActivityRecorder(capacity int, now func() time.Time) *ActivityRecorder {
	if capacity <= 0 {
		capacity = models.ActivityCapacity
	}
	if now == nil {
		now = time.Now
	}
	return &ActivityRecorder{
		entries:  make([]string, 0, capacity+1),
		capacity: capacity,
		now:      now,
	}
}

// Record prepends a timestamped entry and evicts the oldest one past capacity.
func (r *ActivityRecorder) Record(text string) string {
	entry := r.now().Format(activityTimeLayout) + " — " + text

	r.entries = append(r.entries, "")
	copy(r.entries[1:], r.entries)
	r.entries[0] = entry

	if len(r.entries) > r.capacity {
		r.entries = r.entries[:r.capacity]
	}
	return entry
}

func (r *ActivityRecorder) Entries() []string {
	out := make([]string, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *ActivityRecorder) Len() int {
	return len(r.entries)
}
