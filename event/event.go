package event

import (
	"bytes"
	"encoding/binary"

	"github.com/google/uuid"
	"github.com/oomph-ac/railcart/internal"
	"github.com/oomph-ac/railcart/oerror"
)

// EventsVersion is bumped whenever the encoding of an event changes.
const EventsVersion = "1"

const (
	_ = iota
	EventIDGroupCreate
	EventIDGroupRemove
	EventIDGroupUnload
	EventIDLink
	EventIDSplit
	EventIDBlockChange
	EventIDFailure
)

// Event is a record of something that happened to a train.
type Event interface {
	ID() byte
	Encode() []byte

	// Time is the tick the event happened on.
	Time() int64
	// Train is the name of the train the event happened to.
	Train() string
}

// NopEvent holds the fields shared by all events.
type NopEvent struct {
	EvTime  int64
	EvTrain string
}

func (n NopEvent) Time() int64 {
	return n.EvTime
}

func (n NopEvent) Train() string {
	return n.EvTrain
}

func encode(ev Event, body func(buf *bytes.Buffer)) []byte {
	buf := internal.BufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer internal.BufferPool.Put(buf)

	WriteEventHeader(ev, buf)
	if body != nil {
		body(buf)
	}
	return bytes.Clone(buf.Bytes())
}

// WriteEventHeader writes the id, time and train of an event.
func WriteEventHeader(ev Event, buf *bytes.Buffer) {
	buf.WriteByte(ev.ID())
	binary.Write(buf, binary.LittleEndian, ev.Time())
	writeString(buf, ev.Train())
}

func writeString(buf *bytes.Buffer, s string) {
	binary.Write(buf, binary.LittleEndian, uint16(len(s)))
	buf.WriteString(s)
}

func writeInt32(buf *bytes.Buffer, v int32) {
	binary.Write(buf, binary.LittleEndian, v)
}

func readString(buf *bytes.Buffer) (string, error) {
	if buf.Len() < 2 {
		return "", oerror.New("unexpected end of string length")
	}
	n := int(binary.LittleEndian.Uint16(buf.Next(2)))
	if buf.Len() < n {
		return "", oerror.New("string of length %d exceeds remaining %d bytes", n, buf.Len())
	}
	return string(buf.Next(n)), nil
}

func readInt32(buf *bytes.Buffer) (int32, error) {
	if buf.Len() < 4 {
		return 0, oerror.New("unexpected end of int32")
	}
	return int32(binary.LittleEndian.Uint32(buf.Next(4))), nil
}

func readUUID(buf *bytes.Buffer) (uuid.UUID, error) {
	if buf.Len() < 16 {
		return uuid.Nil, oerror.New("unexpected end of uuid")
	}
	return uuid.FromBytes(buf.Next(16))
}

// DecodeEvents decodes all events encoded back to back in dat.
func DecodeEvents(dat []byte) ([]Event, error) {
	buf := bytes.NewBuffer(dat)
	var events []Event
	for buf.Len() > 0 {
		ev, err := DecodeEvent(buf)
		if err != nil {
			return events, oerror.New("error decoding event: %v", err)
		}
		events = append(events, ev)
	}
	return events, nil
}

// DecodeEvent decodes a single event from the buffer passed.
func DecodeEvent(buf *bytes.Buffer) (Event, error) {
	if buf.Len() < 9 {
		return nil, oerror.New("unexpected end of event header")
	}
	id, _ := buf.ReadByte()
	t := int64(binary.LittleEndian.Uint64(buf.Next(8)))
	train, err := readString(buf)
	if err != nil {
		return nil, err
	}
	base := NopEvent{EvTime: t, EvTrain: train}

	switch id {
	case EventIDGroupCreate:
		size, err := readInt32(buf)
		return GroupCreateEvent{NopEvent: base, Size: int(size)}, err
	case EventIDGroupRemove:
		return GroupRemoveEvent{NopEvent: base}, nil
	case EventIDGroupUnload:
		return GroupUnloadEvent{NopEvent: base}, nil
	case EventIDLink:
		donor, err := readString(buf)
		return LinkEvent{NopEvent: base, Donor: donor}, err
	case EventIDSplit:
		created, err := readString(buf)
		if err != nil {
			return nil, err
		}
		at, err := readInt32(buf)
		return SplitEvent{NopEvent: base, Created: created, At: int(at)}, err
	case EventIDBlockChange:
		member, err := readUUID(buf)
		if err != nil {
			return nil, err
		}
		var pos [3]int32
		for i := range pos {
			if pos[i], err = readInt32(buf); err != nil {
				return nil, err
			}
		}
		ev := BlockChangeEvent{NopEvent: base, Member: member}
		ev.Block = [3]int{int(pos[0]), int(pos[1]), int(pos[2])}
		return ev, nil
	case EventIDFailure:
		msg, err := readString(buf)
		return FailureEvent{NopEvent: base, Err: msg}, err
	default:
		return nil, oerror.New("unknown event: %d", id)
	}
}
