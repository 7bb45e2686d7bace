package testutil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/blockcache/device"
)

func TestRNGDeterministic(t *testing.T) {
	a := NewRNG(42)
	b := NewRNG(42)

	assert.Equal(t, a.Block(64), b.Block(64))
	assert.Equal(t, a.Intn(1000), b.Intn(1000))
	assert.Equal(t, int64(42), a.Seed())

	first := NewRNG(7).Block(16)
	r := NewRNG(7)
	r.Block(16)
	r.Reset()
	assert.Equal(t, first, r.Block(16))

	for range 100 {
		assert.Less(t, r.Sector(10), uint32(10))
	}
}

func TestPattern(t *testing.T) {
	assert.Equal(t, []byte{7, 7, 7}, Pattern(3, 7))
}

func TestRecordingDevice(t *testing.T) {
	ctx := context.Background()
	dev := NewRecordingDevice(device.NewMemoryDevice(8, 4))
	buf := make([]byte, 8)

	require.NoError(t, dev.WriteBlock(ctx, 1, buf))
	require.NoError(t, dev.ReadBlock(ctx, 1, buf))
	require.NoError(t, dev.ReadBlock(ctx, 2, buf))

	assert.Equal(t, 1, dev.Reads(1))
	assert.Equal(t, 1, dev.Writes(1))
	assert.Equal(t, 2, dev.TotalReads())
	assert.Equal(t, 1, dev.TotalWrites())
	assert.Equal(t, []Event{
		{Op: device.OpWrite, Sector: 1},
		{Op: device.OpRead, Sector: 1},
		{Op: device.OpRead, Sector: 2},
	}, dev.Events())

	boom := errors.New("boom")
	dev.FailOn(device.OpRead, 3, boom)
	assert.ErrorIs(t, dev.ReadBlock(ctx, 3, buf), boom)

	dev.Reset()
	assert.Empty(t, dev.Events())
	assert.Zero(t, dev.TotalReads())
	assert.ErrorIs(t, dev.ReadBlock(ctx, 3, buf), boom)
}

func TestGatedDevice(t *testing.T) {
	dev := NewGatedDevice(device.NewMemoryDevice(8, 4))
	g := dev.Gate(device.OpWrite, 2)

	done := make(chan error, 1)
	go func() {
		done <- dev.WriteBlock(context.Background(), 2, Pattern(8, 1))
	}()

	<-g.Entered

	select {
	case <-done:
		t.Fatal("gated write finished before the gate opened")
	case <-time.After(20 * time.Millisecond):
	}

	g.Open()
	g.Open()
	require.NoError(t, <-done)

	// The gate fired once.
	require.NoError(t, dev.WriteBlock(context.Background(), 2, Pattern(8, 2)))
}
