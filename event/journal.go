package event

import (
	"github.com/oomph-ac/railcart/utils"
	"github.com/sasha-s/go-deadlock"
)

// Journal keeps the most recent events in memory.
type Journal struct {
	mu    deadlock.Mutex
	queue *utils.CircularQueue[Event]
}

// NewJournal creates a journal holding up to size events. A size of zero disables recording.
func NewJournal(size int) *Journal {
	return &Journal{queue: utils.NewCircularQueue[Event](size, nil)}
}

// Record adds an event, dropping the oldest one if the journal is full.
func (j *Journal) Record(ev Event) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.queue.Cap() == 0 {
		return
	}
	_ = j.queue.Append(ev)
}

// Events returns the recorded events from oldest to newest.
func (j *Journal) Events() []Event {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]Event, 0, j.queue.Len())
	for ev := range j.queue.Iter() {
		out = append(out, ev)
	}
	return out
}

// Encode encodes all recorded events back to back. The result can be read with DecodeEvents.
func (j *Journal) Encode() []byte {
	var out []byte
	for _, ev := range j.Events() {
		out = append(out, ev.Encode()...)
	}
	return out
}
