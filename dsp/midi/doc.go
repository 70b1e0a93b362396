// Package midi defines the timed note and controller events that flow
// along MIDI connections in the processing graph.
//
// Events are plain values carrying a sample offset within the current
// block. A [Buffer] holds them in offset order with a fixed capacity, so
// adding events on the audio thread never allocates. A [Queue] moves
// events from a control goroutine to the audio thread without locking.
// Conversion to and from wire-format messages goes through
// gitlab.com/gomidi/midi/v2.
package midi
