package trace

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

// gate holds a sink's level; every tracer embeds one.
type gate struct{ level Level }

func (g gate) Level() Level { return g.level }

func (g gate) Enabled() bool { return g.level > LevelOff }

func (g gate) admits(ev *Event) bool { return g.level.ShouldEmit(ev.Scope) }

type nopTracer struct{ gate }

func (nopTracer) Emit(*Event) {}

func (nopTracer) Flush() error { return nil }

func (nopTracer) Close() error { return nil }

// Nop discards every event.
var Nop Tracer = nopTracer{}

// StreamTracer formats events as they arrive. Output is buffered until
// Flush or Close.
type StreamTracer struct {
	gate
	format Format

	mu  sync.Mutex
	out io.Writer
	buf *bufio.Writer
}

func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	return &StreamTracer{gate: gate{level}, format: format, out: w, buf: bufio.NewWriter(w)}
}

func (t *StreamTracer) Emit(ev *Event) {
	if !t.admits(ev) {
		return
	}
	line := FormatEvent(ev, t.format)
	t.mu.Lock()
	// trace output is best-effort
	_, _ = t.buf.Write(line)
	t.mu.Unlock()
}

func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buf.Flush()
}

// Close flushes and closes the destination when it is an io.Closer.
func (t *StreamTracer) Close() error {
	err := t.Flush()
	if c, ok := t.out.(io.Closer); ok {
		err = errors.Join(err, c.Close())
	}
	return err
}

// RingTracer retains the most recent events in memory.
type RingTracer struct {
	gate

	mu    sync.Mutex
	slots []Event
	total uint64 // events ever stored
}

func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = 4096
	}
	return &RingTracer{gate: gate{level}, slots: make([]Event, capacity)}
}

func (t *RingTracer) Emit(ev *Event) {
	if !t.admits(ev) {
		return
	}
	t.mu.Lock()
	t.slots[t.total%uint64(len(t.slots))] = *ev
	t.total++
	t.mu.Unlock()
}

// Snapshot returns the retained events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := uint64(len(t.slots))
	start := uint64(0)
	if t.total > n {
		start = t.total - n
	}
	out := make([]Event, 0, t.total-start)
	for i := start; i < t.total; i++ {
		out = append(out, t.slots[i%n])
	}
	return out
}

// Dropped reports how many events were overwritten.
func (t *RingTracer) Dropped() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n := uint64(len(t.slots)); t.total > n {
		return t.total - n
	}
	return 0
}

// Dump writes the retained events to w.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	bw := bufio.NewWriter(w)
	for _, ev := range t.Snapshot() {
		if _, err := bw.Write(FormatEvent(&ev, format)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func (t *RingTracer) Flush() error { return nil }

func (t *RingTracer) Close() error { return nil }

// Tee forwards every event to each of its tracers.
type Tee struct {
	gate
	tracers []Tracer
}

func NewTee(level Level, tracers ...Tracer) *Tee {
	return &Tee{gate: gate{level}, tracers: tracers}
}

func (t *Tee) Emit(ev *Event) {
	for _, tr := range t.tracers {
		tr.Emit(ev)
	}
}

func (t *Tee) Flush() error {
	var err error
	for _, tr := range t.tracers {
		err = errors.Join(err, tr.Flush())
	}
	return err
}

func (t *Tee) Close() error {
	var err error
	for _, tr := range t.tracers {
		err = errors.Join(err, tr.Close())
	}
	return err
}
