package circuitbreaker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ap2stellar/gateway/pkg/logger"
)

func TestTripsAfterThreshold(t *testing.T) {
	cb := New(true, 3, time.Minute, time.Minute, &logger.EmptyLogger{})

	assert.False(t, cb.RecordFailure())
	assert.False(t, cb.RecordFailure())
	assert.False(t, cb.IsOpen())

	assert.True(t, cb.RecordFailure())
	assert.True(t, cb.IsOpen())
}

func TestResetTimeoutCloses(t *testing.T) {
	cb := New(true, 1, time.Minute, 20*time.Millisecond, &logger.EmptyLogger{})

	cb.RecordFailure()
	assert.True(t, cb.IsOpen())

	time.Sleep(30 * time.Millisecond)
	assert.False(t, cb.IsOpen())
}

func TestManualReset(t *testing.T) {
	cb := New(true, 1, time.Minute, time.Hour, &logger.EmptyLogger{})

	cb.RecordFailure()
	assert.True(t, cb.IsOpen())

	cb.Reset()
	assert.False(t, cb.IsOpen())

	count, threshold := cb.State()
	assert.Equal(t, 0, count)
	assert.Equal(t, 1, threshold)
}

func TestDisabledNeverOpens(t *testing.T) {
	cb := New(false, 1, time.Minute, time.Minute, &logger.EmptyLogger{})

	for i := 0; i < 10; i++ {
		assert.False(t, cb.RecordFailure())
	}
	assert.False(t, cb.IsOpen())
	assert.False(t, cb.IsEnabled())
}
