package app

import (
	"sync"
	"time"

	"german-reading-quiz/internal/domain"
)

// ProgressFeed fans progress snapshots out to subscribers.
type ProgressFeed struct {
	now         func() time.Time
	mu          sync.Mutex
	last        domain.ProgressSnapshot
	subscribers map[chan domain.ProgressSnapshot]struct{}
}

func NewProgressFeed() *ProgressFeed {
	return NewProgressFeedWithClock(time.Now)
}

// NewProgressFeedWithClock is test-only for deterministic timestamps.
func NewProgressFeedWithClock(now func() time.Time) *ProgressFeed {
	return &ProgressFeed{
		now:         now,
		last:        domain.ProgressSnapshot{UpdatedAt: now()},
		subscribers: make(map[chan domain.ProgressSnapshot]struct{}),
	}
}

// Seed sets the snapshot handed to new subscribers without broadcasting it.
func (f *ProgressFeed) Seed(completed int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.last = domain.ProgressSnapshot{CompletedReadings: completed, UpdatedAt: f.now()}
}

// Subscribe returns a channel primed with the latest snapshot.
// The caller must invoke the returned cancel function to avoid leaks.
func (f *ProgressFeed) Subscribe() (<-chan domain.ProgressSnapshot, func()) {
	ch := make(chan domain.ProgressSnapshot, 8)

	f.mu.Lock()
	ch <- f.last
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// Publish records snapshot as the latest and delivers it to every subscriber.
func (f *ProgressFeed) Publish(snapshot domain.ProgressSnapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.last = snapshot
	for ch := range f.subscribers {
		select {
		case ch <- snapshot:
		default:
			// Slow subscriber: drop its oldest pending snapshot.
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}

// Subscribers reports the number of active subscriptions.
func (f *ProgressFeed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers)
}
