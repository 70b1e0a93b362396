package modules

import "github.com/cwbudde/algo-modsynth/dsp/midi"

// eventCursor walks a block's events in offset order.
type eventCursor struct {
	events []midi.Event
	next   int
}

func newCursor(events *midi.Buffer) eventCursor {
	if events == nil {
		return eventCursor{}
	}
	return eventCursor{events: events.Events()}
}

// due returns the next event scheduled at or before sample i.
func (c *eventCursor) due(i int) (midi.Event, bool) {
	if c.next >= len(c.events) || c.events[c.next].Offset > i {
		return midi.Event{}, false
	}
	e := c.events[c.next]
	c.next++
	return e, true
}

// nextOffset returns the offset of the next pending event, or end.
func (c *eventCursor) nextOffset(end int) int {
	if c.next >= len(c.events) {
		return end
	}
	return min(max(c.events[c.next].Offset, 0), end)
}

func channel(audio [][]float64, ch int) []float64 {
	if ch < len(audio) {
		return audio[ch]
	}
	return nil
}

func blockLen(audio [][]float64) int {
	if len(audio) == 0 {
		return 0
	}
	return len(audio[0])
}
