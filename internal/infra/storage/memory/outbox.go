package memory

import (
	"context"
	"sync"
	"time"

	appoutbox "innkeep/internal/app/outbox"
	infraoutbox "innkeep/internal/infra/outbox"
)

// Outbox keeps staged events in memory. It serves both as the staging
// area for commits and as the claim queue for the publishing worker.
type Outbox struct {
	mu      sync.Mutex
	records []entry
}

type entry struct {
	record   appoutbox.EventRecord
	attempts int
	next     time.Time
	claimed  bool
	sent     bool
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.records = append(o.records, entry{record: record, next: time.Now().UTC()})
	return nil
}

func (o *Outbox) Flush(ctx context.Context) error {
	return nil
}

func (o *Outbox) Claim(ctx context.Context, workerID string) (*infraoutbox.Pending, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now().UTC()
	for i := range o.records {
		e := &o.records[i]
		if e.sent || e.claimed || e.next.After(now) {
			continue
		}
		e.claimed = true
		return &infraoutbox.Pending{Record: e.record, Attempts: e.attempts}, nil
	}
	return nil, nil
}

func (o *Outbox) MarkSent(ctx context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := range o.records {
		if o.records[i].record.ID == id {
			o.records[i].sent = true
			o.records[i].claimed = false
			return nil
		}
	}
	return nil
}

func (o *Outbox) MarkFailed(ctx context.Context, id string, nextAttempt time.Time, cause string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := range o.records {
		if o.records[i].record.ID == id {
			o.records[i].claimed = false
			o.records[i].attempts++
			o.records[i].next = nextAttempt
			return nil
		}
	}
	return nil
}

// Unsent reports staged-but-unpublished events; used by tests and the
// readiness probe.
func (o *Outbox) Unsent() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, e := range o.records {
		if !e.sent {
			n++
		}
	}
	return n
}

var (
	_ appoutbox.Outbox  = (*Outbox)(nil)
	_ infraoutbox.Queue = (*Outbox)(nil)
)
