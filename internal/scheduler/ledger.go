package scheduler

import "sync"

// Ledger remembers which (event, guest) pairs have already had a reminder
// dispatch attempted. Entries are never removed for the life of the
// ledger. The ledger is private to the scheduler; no other component reads
// or writes it.
type Ledger interface {
	Seen(eventID, contact string) bool
	Mark(eventID, contact string)
}

// MemoryLedger is a process-scoped Ledger. Sufficient for a
// single-process deployment; a durable implementation can replace it
// without changing the scan algorithm.
type MemoryLedger struct {
	mu   sync.Mutex
	sent map[string]struct{}
}

// NewMemoryLedger constructs an empty MemoryLedger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{sent: make(map[string]struct{})}
}

func (l *MemoryLedger) Seen(eventID, contact string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.sent[ledgerKey(eventID, contact)]
	return ok
}

func (l *MemoryLedger) Mark(eventID, contact string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sent[ledgerKey(eventID, contact)] = struct{}{}
}

// ledgerKey joins the pair with a NUL byte, which cannot appear in either
// an event ID or a canonical contact.
func ledgerKey(eventID, contact string) string {
	return eventID + "\x00" + contact
}
