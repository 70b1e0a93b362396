// Package voice assigns notes to a fixed pool of voices with
// least-recently-used stealing.
package voice

import (
	"github.com/cwbudde/algo-modsynth/dsp/core"
)

// NoNote marks a voice that has never played or was cleared.
const NoNote = -1

// Voice is one slot of the pool.
type Voice struct {
	Note   int
	Active bool
	// LastUsed is the allocator clock value at the most recent note-on
	// that claimed this voice.
	LastUsed  uint64
	Frequency float64
}

// Allocator owns a fixed number of voices. It is not safe for concurrent
// use; the owning module drives it from the audio thread.
type Allocator struct {
	voices []Voice
	clock  uint64
}

// NewAllocator returns a pool of n idle voices (at least one).
func NewAllocator(n int) *Allocator {
	n = max(n, 1)
	a := &Allocator{voices: make([]Voice, n)}
	a.Reset()
	return a
}

// Reset returns every voice to the idle, never-used state.
func (a *Allocator) Reset() {
	for i := range a.voices {
		a.voices[i] = Voice{Note: NoNote}
	}
	a.clock = 0
}

// Len returns the pool size.
func (a *Allocator) Len() int { return len(a.voices) }

// Voice returns a copy of voice i.
func (a *Allocator) Voice(i int) Voice { return a.voices[i] }

// Voices returns the pool. Callers must not modify it.
func (a *Allocator) Voices() []Voice { return a.voices }

// NoteOn assigns note to a voice and returns its index. A voice already
// holding the note is retriggered; otherwise the lowest idle voice is
// used; otherwise the active voice with the smallest LastUsed is stolen.
func (a *Allocator) NoteOn(note int) int {
	a.clock++

	idx := a.find(note)
	if idx < 0 {
		idx = a.firstIdle()
	}
	if idx < 0 {
		idx = a.oldest()
	}

	v := &a.voices[idx]
	v.Note = note
	v.Active = true
	v.LastUsed = a.clock
	v.Frequency = core.NoteToHz(float64(note))
	return idx
}

// NoteOff deactivates every active voice holding note and returns how many
// were released. The frequency is held so a release tail keeps its pitch.
func (a *Allocator) NoteOff(note int) int {
	n := 0
	for i := range a.voices {
		if a.voices[i].Active && a.voices[i].Note == note {
			a.voices[i].Active = false
			n++
		}
	}
	return n
}

// AllNotesOff deactivates every voice.
func (a *Allocator) AllNotesOff() {
	for i := range a.voices {
		a.voices[i].Active = false
	}
}

// ActiveCount returns the number of active voices.
func (a *Allocator) ActiveCount() int {
	n := 0
	for _, v := range a.voices {
		if v.Active {
			n++
		}
	}
	return n
}

func (a *Allocator) find(note int) int {
	for i, v := range a.voices {
		if v.Active && v.Note == note {
			return i
		}
	}
	return -1
}

func (a *Allocator) firstIdle() int {
	for i, v := range a.voices {
		if !v.Active {
			return i
		}
	}
	return -1
}

func (a *Allocator) oldest() int {
	idx := 0
	for i, v := range a.voices {
		if v.LastUsed < a.voices[idx].LastUsed {
			idx = i
		}
	}
	return idx
}
