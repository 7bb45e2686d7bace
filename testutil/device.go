package testutil

import (
	"context"
	"sync"

	"github.com/hupe1980/blockcache/device"
)

// Event is one device call observed by a RecordingDevice.
type Event struct {
	Op     device.Op
	Sector uint32
}

type opKey struct {
	op     device.Op
	sector uint32
}

// RecordingDevice counts and logs every call to the wrapped device.
type RecordingDevice struct {
	device.Device

	mu     sync.Mutex
	events []Event
	counts map[opKey]int
	faults map[opKey]error
}

// NewRecordingDevice wraps dev.
func NewRecordingDevice(dev device.Device) *RecordingDevice {
	return &RecordingDevice{
		Device: dev,
		counts: make(map[opKey]int),
		faults: make(map[opKey]error),
	}
}

func (d *RecordingDevice) ReadBlock(ctx context.Context, sector uint32, p []byte) error {
	if err := d.record(device.OpRead, sector); err != nil {
		return err
	}
	return d.Device.ReadBlock(ctx, sector, p)
}

func (d *RecordingDevice) WriteBlock(ctx context.Context, sector uint32, p []byte) error {
	if err := d.record(device.OpWrite, sector); err != nil {
		return err
	}
	return d.Device.WriteBlock(ctx, sector, p)
}

func (d *RecordingDevice) record(op device.Op, sector uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	k := opKey{op, sector}
	d.events = append(d.events, Event{Op: op, Sector: sector})
	d.counts[k]++

	return d.faults[k]
}

// FailOn makes every later op on sector return err.
func (d *RecordingDevice) FailOn(op device.Op, sector uint32, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.faults[opKey{op, sector}] = err
}

// Reads returns the number of ReadBlock calls for sector.
func (d *RecordingDevice) Reads(sector uint32) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.counts[opKey{device.OpRead, sector}]
}

// Writes returns the number of WriteBlock calls for sector.
func (d *RecordingDevice) Writes(sector uint32) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.counts[opKey{device.OpWrite, sector}]
}

// TotalReads returns the number of ReadBlock calls.
func (d *RecordingDevice) TotalReads() int { return d.total(device.OpRead) }

// TotalWrites returns the number of WriteBlock calls.
func (d *RecordingDevice) TotalWrites() int { return d.total(device.OpWrite) }

func (d *RecordingDevice) total(op device.Op) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := 0
	for k, c := range d.counts {
		if k.op == op {
			n += c
		}
	}
	return n
}

// Events returns a copy of the call log.
func (d *RecordingDevice) Events() []Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Event(nil), d.events...)
}

// Reset clears counters and the log. Faults stay armed.
func (d *RecordingDevice) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = nil
	d.counts = make(map[opKey]int)
}

// Gate holds one operation of a GatedDevice.
type Gate struct {
	// Entered is closed when the gated call has started.
	Entered chan struct{}

	release chan struct{}
	once    sync.Once
}

// Open lets the gated call proceed.
func (g *Gate) Open() {
	g.once.Do(func() { close(g.release) })
}

// GatedDevice blocks selected operations until their gate is opened.
// A gate fires once; later calls pass through.
type GatedDevice struct {
	device.Device

	mu    sync.Mutex
	gates map[opKey]*Gate
}

// NewGatedDevice wraps dev.
func NewGatedDevice(dev device.Device) *GatedDevice {
	return &GatedDevice{Device: dev, gates: make(map[opKey]*Gate)}
}

// Gate arms a gate for the next op on sector.
func (d *GatedDevice) Gate(op device.Op, sector uint32) *Gate {
	g := &Gate{Entered: make(chan struct{}), release: make(chan struct{})}

	d.mu.Lock()
	d.gates[opKey{op, sector}] = g
	d.mu.Unlock()

	return g
}

func (d *GatedDevice) ReadBlock(ctx context.Context, sector uint32, p []byte) error {
	d.wait(device.OpRead, sector)
	return d.Device.ReadBlock(ctx, sector, p)
}

func (d *GatedDevice) WriteBlock(ctx context.Context, sector uint32, p []byte) error {
	d.wait(device.OpWrite, sector)
	return d.Device.WriteBlock(ctx, sector, p)
}

func (d *GatedDevice) wait(op device.Op, sector uint32) {
	k := opKey{op, sector}

	d.mu.Lock()
	g, ok := d.gates[k]
	delete(d.gates, k)
	d.mu.Unlock()

	if !ok {
		return
	}

	close(g.Entered)
	<-g.release
}
