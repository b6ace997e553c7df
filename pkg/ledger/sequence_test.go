package ledger

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequenceLockerSerializes(t *testing.T) {
	locker := newSequenceLocker()

	const goroutines = 50
	const iterations = 100

	counter := 0
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				unlock := locker.lock("GACCOUNT")
				counter++
				unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines*iterations, counter)
}

func TestSequenceLockerIndependentAccounts(t *testing.T) {
	locker := newSequenceLocker()

	// Holding one account's lock must not block another account.
	unlockA := locker.lock("GACCOUNT_A")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := locker.lock("GACCOUNT_B")
		unlockB()
		close(done)
	}()

	// If account locks were shared this would deadlock and the test
	// would time out.
	<-done
}

func TestSequenceLockerReentryAfterUnlock(t *testing.T) {
	locker := newSequenceLocker()

	unlock := locker.lock("GACCOUNT")
	unlock()

	// Relocking the same account after release must not deadlock.
	unlock = locker.lock("GACCOUNT")
	unlock()
}
