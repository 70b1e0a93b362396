package midi

import (
	gomidi "gitlab.com/gomidi/midi/v2"
)

// FromMessage decodes a wire-format message into an Event at offset.
// Messages other than note and controller changes are reported as not ok.
func FromMessage(msg gomidi.Message, offset int) (Event, bool) {
	var channel, key, velocity, controller, value uint8

	switch {
	case msg.GetNoteStart(&channel, &key, &velocity):
		return NoteOn(channel, key, velocity, offset), true
	case msg.GetNoteEnd(&channel, &key):
		return NoteOff(channel, key, offset), true
	case msg.GetControlChange(&channel, &controller, &value):
		if controller == CCAllNotesOff {
			return AllNotesOff(channel, offset), true
		}
		return ControlChange(channel, controller, value, offset), true
	default:
		return Event{}, false
	}
}

// Message encodes e as a wire-format message.
func (e Event) Message() gomidi.Message {
	switch e.Kind {
	case KindNoteOn:
		return gomidi.NoteOn(e.Channel, e.Data1, e.Data2)
	case KindNoteOff:
		return gomidi.NoteOff(e.Channel, e.Data1)
	case KindAllNotesOff:
		return gomidi.ControlChange(e.Channel, CCAllNotesOff, 0)
	default:
		return gomidi.ControlChange(e.Channel, e.Data1, e.Data2)
	}
}
