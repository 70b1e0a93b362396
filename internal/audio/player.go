//go:build !headless

package audio

import (
	"fmt"
	"io"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// Player streams a reader to the default output device.
type Player struct {
	ctx     *oto.Context
	player  *oto.Player
	started bool
	mutex   sync.Mutex
}

// NewPlayer opens the device at sampleRate and binds src, which must
// produce interleaved stereo float32 frames.
func NewPlayer(sampleRate int, src io.Reader) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: Channels,
		Format:       oto.FormatFloat32LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("audio: open device: %w", err)
	}
	<-ready

	return &Player{ctx: ctx, player: ctx.NewPlayer(src)}, nil
}

// Start begins playback.
func (p *Player) Start() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if !p.started && p.player != nil {
		p.player.Play()
		p.started = true
	}
}

// Stop pauses playback.
func (p *Player) Stop() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.started && p.player != nil {
		p.player.Pause()
		p.started = false
	}
}

// Close releases the player.
func (p *Player) Close() error {
	p.Stop()
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.player == nil {
		return nil
	}
	err := p.player.Close()
	p.player = nil
	return err
}

// IsStarted reports whether playback is running.
func (p *Player) IsStarted() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.started
}
