package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimerFiresOnStrictlyGreater(t *testing.T) {
	var tm Timer
	tm.Start(0.5)
	assert.False(t, tm.Advance(0.25))
	assert.False(t, tm.Advance(0.25), "exactly at threshold is not done")
	assert.True(t, tm.Advance(0.01))
	assert.False(t, tm.Running())
	assert.False(t, tm.Advance(1), "fires once")
}

func TestTimerStopDiscards(t *testing.T) {
	var tm Timer
	tm.Start(1)
	tm.Advance(0.9)
	tm.Stop()
	assert.False(t, tm.Advance(5))
	assert.False(t, tm.Running())
}

func TestTimerProgrammingErrors(t *testing.T) {
	var tm Timer
	assert.Panics(t, func() { tm.Start(-1) })
	tm.Start(1)
	assert.Panics(t, func() { tm.Advance(-0.1) })
}

func TestTimerProgress(t *testing.T) {
	var tm Timer
	tm.Start(4)
	tm.Advance(1)
	assert.InDelta(t, 0.25, tm.Progress(), 1e-12)
	tm.Advance(10)
	assert.Equal(t, 1.0, tm.Progress())
}
