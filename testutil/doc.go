// Package testutil provides helpers for tests of the cache and its devices.
//
// It is intended for tests and benchmarks only.
//
// # Random Content
//
//	rng := testutil.NewRNG(seed)
//	block := rng.Block(512)        // random block content
//	rng.FillBytes(buf)             // in place
//	sector := rng.Sector(numBlocks)
//
// # Instrumented Devices
//
// RecordingDevice wraps any device.Device and counts reads and writes per
// sector, keeps an ordered event log, and injects errors:
//
//	dev := testutil.NewRecordingDevice(device.NewMemoryDevice(512, 64))
//	...
//	dev.Writes(7)        // number of WriteBlock calls for sector 7
//	dev.Events()         // []testutil.Event in call order
//
// GatedDevice holds selected operations until the test opens the gate, which
// makes interleavings around in-flight I/O deterministic:
//
//	gd := testutil.NewGatedDevice(dev)
//	gate := gd.Gate(device.OpWrite, 3)
//	go c.Flush()
//	<-gate.Entered      // write-back of sector 3 has started
//	...
//	gate.Open()
package testutil
