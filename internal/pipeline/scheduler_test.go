package pipeline

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

func TestSchedulerReArmFiresOnceAtSecondDeadline(t *testing.T) {
	clk := clockwork.NewFakeClock()
	fired := make(chan uint64, 4)
	s := newScheduler(clk, func(gen uint64) { fired <- gen })

	s.arm(5 * time.Second)
	clk.BlockUntil(1)
	s.arm(10 * time.Second)
	clk.BlockUntil(1)

	// first deadline passes silently; arming again cancelled it
	clk.Advance(5 * time.Second)
	select {
	case gen := <-fired:
		t.Fatalf("cancelled timer fired, gen=%d", gen)
	case <-time.After(100 * time.Millisecond):
	}

	clk.Advance(5 * time.Second)
	select {
	case gen := <-fired:
		require.Equal(t, s.gen, gen)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for second deadline")
	}

	// and exactly once
	select {
	case <-fired:
		t.Fatal("deadline fired twice")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSchedulerStopPreventsFire(t *testing.T) {
	clk := clockwork.NewFakeClock()
	fired := make(chan uint64, 1)
	s := newScheduler(clk, func(gen uint64) { fired <- gen })

	s.arm(time.Second)
	clk.BlockUntil(1)
	s.stop()

	clk.Advance(2 * time.Second)
	select {
	case <-fired:
		t.Fatal("stopped timer fired")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSchedulerFiredConsumesOnlyLiveGeneration(t *testing.T) {
	clk := clockwork.NewFakeClock()
	s := newScheduler(clk, func(uint64) {})

	s.arm(time.Second)
	clk.BlockUntil(1)
	live := s.gen

	require.False(t, s.fired(live-1), "stale generation accepted")
	require.True(t, s.fired(live))
	require.False(t, s.fired(live), "fire consumed twice")

	s.arm(time.Second)
	clk.BlockUntil(1)
	armed := s.gen
	s.stop()
	require.False(t, s.fired(armed), "cancelled timer accepted")
}

func TestSchedulerStopBumpsGeneration(t *testing.T) {
	clk := clockwork.NewFakeClock()
	s := newScheduler(clk, func(uint64) {})

	s.arm(time.Second)
	clk.BlockUntil(1)
	armedGen := s.gen
	s.stop()

	// a fire already in flight when stop ran must look stale
	require.NotEqual(t, armedGen, s.gen)
}
