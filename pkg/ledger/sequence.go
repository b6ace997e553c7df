package ledger

import "sync"

// sequenceLocker serializes load-sequence -> build -> sign -> submit
// per signing account. The account's transaction sequence number is a
// shared, externally-visible counter: two settlements racing on the
// same signer would read the same sequence and one submission would
// bounce with a sequence error.
type sequenceLocker struct {
	mu       sync.Mutex
	accounts map[string]*sync.Mutex
}

func newSequenceLocker() *sequenceLocker {
	return &sequenceLocker{accounts: make(map[string]*sync.Mutex)}
}

// lock acquires the per-account mutex and returns its release func.
func (l *sequenceLocker) lock(accountID string) func() {
	l.mu.Lock()
	m, ok := l.accounts[accountID]
	if !ok {
		m = &sync.Mutex{}
		l.accounts[accountID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
