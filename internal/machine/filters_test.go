package machine_test

import (
	"testing"
	"time"

	"go-timeclock/internal/machine"

	"github.com/stretchr/testify/assert"
)

func TestIsStale(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.Local)

	assert.False(t, machine.IsStale(now, now))
	assert.False(t, machine.IsStale(now.Add(-59*time.Minute), now))
	assert.False(t, machine.IsStale(now.Add(-60*time.Minute), now))
	assert.True(t, machine.IsStale(now.Add(-61*time.Minute), now))
	// Future-dated punches from a fast device clock are not stale.
	assert.False(t, machine.IsStale(now.Add(5*time.Minute), now))
}
