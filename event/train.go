package event

import (
	"bytes"

	"github.com/google/uuid"
)

// GroupCreateEvent is recorded when a train is created or restored.
type GroupCreateEvent struct {
	NopEvent

	Size int
}

func (GroupCreateEvent) ID() byte {
	return EventIDGroupCreate
}

func (ev GroupCreateEvent) Encode() []byte {
	return encode(ev, func(buf *bytes.Buffer) {
		writeInt32(buf, int32(ev.Size))
	})
}

// GroupRemoveEvent is recorded when a train is destroyed.
type GroupRemoveEvent struct {
	NopEvent
}

func (GroupRemoveEvent) ID() byte {
	return EventIDGroupRemove
}

func (ev GroupRemoveEvent) Encode() []byte {
	return encode(ev, nil)
}

// GroupUnloadEvent is recorded when a train is stored offline.
type GroupUnloadEvent struct {
	NopEvent
}

func (GroupUnloadEvent) ID() byte {
	return EventIDGroupUnload
}

func (ev GroupUnloadEvent) Encode() []byte {
	return encode(ev, nil)
}

// LinkEvent is recorded when the train Donor was merged into the train.
type LinkEvent struct {
	NopEvent

	Donor string
}

func (LinkEvent) ID() byte {
	return EventIDLink
}

func (ev LinkEvent) Encode() []byte {
	return encode(ev, func(buf *bytes.Buffer) {
		writeString(buf, ev.Donor)
	})
}

// SplitEvent is recorded when the members from index At onwards left the train to form Created.
type SplitEvent struct {
	NopEvent

	Created string
	At      int
}

func (SplitEvent) ID() byte {
	return EventIDSplit
}

func (ev SplitEvent) Encode() []byte {
	return encode(ev, func(buf *bytes.Buffer) {
		writeString(buf, ev.Created)
		writeInt32(buf, int32(ev.At))
	})
}

// BlockChangeEvent is recorded when a member moved onto another rail block.
type BlockChangeEvent struct {
	NopEvent

	Member uuid.UUID
	Block  [3]int
}

func (BlockChangeEvent) ID() byte {
	return EventIDBlockChange
}

func (ev BlockChangeEvent) Encode() []byte {
	return encode(ev, func(buf *bytes.Buffer) {
		buf.Write(ev.Member[:])
		for _, v := range ev.Block {
			writeInt32(buf, int32(v))
		}
	})
}

// FailureEvent is recorded when ticking a train failed.
type FailureEvent struct {
	NopEvent

	Err string
}

func (FailureEvent) ID() byte {
	return EventIDFailure
}

func (ev FailureEvent) Encode() []byte {
	return encode(ev, func(buf *bytes.Buffer) {
		writeString(buf, ev.Err)
	})
}
