package logging

import (
	"sync"
	"time"
)

// DefaultCapacity is the number of events a Buffer keeps if no other capacity is given.
const DefaultCapacity = 200

// Event is a single log line emitted by the application while handling a request, tagged with
// the run id of that request.
type Event struct {
	RunID   string
	Time    time.Time
	Level   string
	Source  string
	Message string
}

// Buffer collects the log events of one run id. It holds at most a fixed number of events; when
// it is full, the oldest event is dropped and the buffer remembers that it has overflowed.
//
// Any number of goroutines may call Append while another calls Snapshot.
type Buffer struct {
	capacity   int
	events     []Event
	overflowed bool
	lock       sync.Mutex
}

// NewBuffer creates a Buffer. A capacity of zero or less means DefaultCapacity.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{capacity: capacity, events: make([]Event, 0, capacity)}
}

// Append adds an event, evicting the oldest one if the buffer is full.
func (b *Buffer) Append(e Event) {
	b.lock.Lock()
	if len(b.events) >= b.capacity {
		copy(b.events, b.events[1:])
		b.events = b.events[:len(b.events)-1]
		b.overflowed = true
	}
	b.events = append(b.events, e)
	b.lock.Unlock()
}

// Snapshot returns the current contents and empties the buffer. This is the only way to read a
// Buffer.
func (b *Buffer) Snapshot() Snapshot {
	b.lock.Lock()
	ret := Snapshot{
		events:     append([]Event(nil), b.events...),
		overflowed: b.overflowed,
	}
	b.events = b.events[:0]
	b.overflowed = false
	b.lock.Unlock()
	return ret
}

// Snapshot is an immutable copy of a Buffer's contents at one point in time.
type Snapshot struct {
	events     []Event
	overflowed bool
}

// Events returns the captured events in the order they were appended.
func (s Snapshot) Events() []Event {
	return append([]Event(nil), s.events...)
}

// Len returns the number of captured events.
func (s Snapshot) Len() int {
	return len(s.events)
}

// Overflowed returns true if older events were dropped to stay within the buffer's capacity.
func (s Snapshot) Overflowed() bool {
	return s.overflowed
}
