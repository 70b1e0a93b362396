//go:build headless

package audio

import "io"

// Player is a no-op stand-in for builds without an audio device.
type Player struct {
	started bool
}

// NewPlayer returns a player that never reads src.
func NewPlayer(int, io.Reader) (*Player, error) {
	return &Player{}, nil
}

func (p *Player) Start() { p.started = true }

func (p *Player) Stop() { p.started = false }

func (p *Player) Close() error {
	p.started = false
	return nil
}

func (p *Player) IsStarted() bool { return p.started }
