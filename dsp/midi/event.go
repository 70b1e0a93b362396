package midi

import "fmt"

// Kind is the event type.
type Kind uint8

const (
	KindNoteOff Kind = iota
	KindNoteOn
	KindControlChange
	KindAllNotesOff
)

// Controller numbers used by the modules.
const (
	CCModWheel     = 1
	CCCutoff       = 74
	CCAllSoundOff  = 120
	CCAllNotesOff  = 123
	DefaultChannel = 0
)

// Event is a channel voice message scheduled at a sample offset.
type Event struct {
	Kind    Kind
	Channel uint8
	// Data1 is the note number or controller number.
	Data1 uint8
	// Data2 is the velocity or controller value.
	Data2  uint8
	Offset int
}

// NoteOn returns a note-on event.
func NoteOn(channel, note, velocity uint8, offset int) Event {
	return Event{Kind: KindNoteOn, Channel: channel & 0x0f, Data1: note & 0x7f, Data2: velocity & 0x7f, Offset: offset}
}

// NoteOff returns a note-off event.
func NoteOff(channel, note uint8, offset int) Event {
	return Event{Kind: KindNoteOff, Channel: channel & 0x0f, Data1: note & 0x7f, Offset: offset}
}

// ControlChange returns a controller event.
func ControlChange(channel, controller, value uint8, offset int) Event {
	return Event{Kind: KindControlChange, Channel: channel & 0x0f, Data1: controller & 0x7f, Data2: value & 0x7f, Offset: offset}
}

// AllNotesOff returns the all-notes-off channel mode event.
func AllNotesOff(channel uint8, offset int) Event {
	return Event{Kind: KindAllNotesOff, Channel: channel & 0x0f, Data1: CCAllNotesOff, Offset: offset}
}

// Note returns the note number of a note event.
func (e Event) Note() int { return int(e.Data1) }

// Velocity returns the velocity of a note event.
func (e Event) Velocity() int { return int(e.Data2) }

// IsNoteOn reports a note-on with non-zero velocity.
func (e Event) IsNoteOn() bool {
	return e.Kind == KindNoteOn && e.Data2 > 0
}

// IsNoteOff reports a note-off, including the note-on with velocity zero
// running-status idiom.
func (e Event) IsNoteOff() bool {
	return e.Kind == KindNoteOff || (e.Kind == KindNoteOn && e.Data2 == 0)
}

// IsAllNotesOff reports an all-notes-off or all-sound-off message.
func (e Event) IsAllNotesOff() bool {
	if e.Kind == KindAllNotesOff {
		return true
	}
	return e.Kind == KindControlChange && (e.Data1 == CCAllNotesOff || e.Data1 == CCAllSoundOff)
}

// IsController reports a controller change for the given number.
func (e Event) IsController(cc uint8) bool {
	return e.Kind == KindControlChange && e.Data1 == cc
}

// Transpose shifts a note event by semitones, clamped to the MIDI range.
func (e Event) Transpose(semitones int) Event {
	if e.Kind != KindNoteOn && e.Kind != KindNoteOff {
		return e
	}
	note := min(max(int(e.Data1)+semitones, 0), 127)
	e.Data1 = uint8(note)
	return e
}

// String implements fmt.Stringer.
func (e Event) String() string {
	switch e.Kind {
	case KindNoteOn:
		return fmt.Sprintf("NoteOn ch=%d note=%d vel=%d @%d", e.Channel+1, e.Data1, e.Data2, e.Offset)
	case KindNoteOff:
		return fmt.Sprintf("NoteOff ch=%d note=%d @%d", e.Channel+1, e.Data1, e.Offset)
	case KindControlChange:
		return fmt.Sprintf("CC ch=%d cc=%d val=%d @%d", e.Channel+1, e.Data1, e.Data2, e.Offset)
	case KindAllNotesOff:
		return fmt.Sprintf("AllNotesOff ch=%d @%d", e.Channel+1, e.Offset)
	default:
		return fmt.Sprintf("Event(%d)", e.Kind)
	}
}
