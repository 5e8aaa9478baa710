package audio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"

	"github.com/oshokin/dhikr-alarm/internal/domain/dismissal"
	"github.com/oshokin/dhikr-alarm/internal/logger"
)

const (
	// SampleRate is the speaker sample rate every sound is resampled to.
	SampleRate = beep.SampleRate(44100)
	// speakerBuffer is the speaker latency.
	speakerBuffer = 100 * time.Millisecond
	// resampleQuality is beep's resampling quality, 1 to 64.
	resampleQuality = 4
	// volumeBase is the exponent base of effects.Volume.
	volumeBase = 2
)

var (
	// ErrUnsupportedFormat is returned for files that are neither .wav nor .mp3.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	// ErrEmptySound is returned for files that decode to no samples.
	ErrEmptySound = errors.New("sound has no samples")
)

// Dispatcher delivers a function to the caller's execution context.
// It returns false if the function will never run.
type Dispatcher func(fn func()) bool

// sound is one loaded file.
type sound struct {
	// buffer holds the decoded samples.
	buffer *beep.Buffer
	// ctrl is the mixer entry while playing, nil otherwise.
	ctrl *beep.Ctrl
	// volume is the gain stage of the current playback, nil otherwise.
	volume *effects.Volume
	// level is the last linear volume requested.
	level float64
}

// Player plays decoded sounds through a shared mixer.
type Player struct {
	// dispatch delivers load completions.
	dispatch Dispatcher
	// mixer is the speaker's single streamer.
	mixer *beep.Mixer
	// silent is true when no speaker is available.
	silent bool

	// mu protects last and sounds.
	mu sync.Mutex
	// last is the last issued handle.
	last dismissal.SoundHandle
	// sounds maps handles to loaded sounds.
	sounds map[dismissal.SoundHandle]*sound
}

// Option configures a Player.
type Option func(*Player)

// WithoutSpeaker keeps the player silent instead of opening the speaker.
func WithoutSpeaker() Option {
	return func(p *Player) {
		p.silent = true
	}
}

// NewPlayer opens the speaker and creates a player delivering load results
// through dispatch. Speaker failures are logged and leave the player silent.
func NewPlayer(ctx context.Context, dispatch Dispatcher, opts ...Option) *Player {
	p := &Player{
		dispatch: dispatch,
		mixer:    new(beep.Mixer),
		sounds:   make(map[dismissal.SoundHandle]*sound),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.silent {
		return p
	}

	if err := speaker.Init(SampleRate, SampleRate.N(speakerBuffer)); err != nil {
		logger.WarnKV(ctx, "Speaker unavailable, alarm will be silent", "error", err)

		p.silent = true

		return p
	}

	speaker.Play(p.mixer)

	return p
}

// Close stops every sound and releases the speaker.
func (p *Player) Close() {
	p.mu.Lock()
	handles := make([]dismissal.SoundHandle, 0, len(p.sounds))

	for handle := range p.sounds {
		handles = append(handles, handle)
	}
	p.mu.Unlock()

	for _, handle := range handles {
		p.Release(handle)
	}

	if !p.silent {
		speaker.Clear()
		speaker.Close()
	}
}

// Load implements dismissal.AudioPlayer. Decoding happens in the background.
func (p *Player) Load(resource string, done func(dismissal.SoundHandle, error)) {
	go func() {
		handle, err := p.load(resource)

		delivered := p.dispatch(func() {
			done(handle, err)
		})

		if !delivered && err == nil {
			p.Release(handle)
		}
	}()
}

// Play implements dismissal.AudioPlayer. A playing sound restarts from its beginning.
func (p *Player) Play(handle dismissal.SoundHandle, loop bool, volume float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.sounds[handle]
	if !ok {
		return
	}

	var streamer beep.Streamer = s.buffer.Streamer(0, s.buffer.Len())
	if loop {
		streamer = beep.Loop(-1, s.buffer.Streamer(0, s.buffer.Len()))
	}

	gain := &effects.Volume{
		Streamer: streamer,
		Base:     volumeBase,
	}
	applyLevel(gain, volume)

	ctrl := &beep.Ctrl{Streamer: gain}

	p.withSpeaker(func() {
		if s.ctrl != nil {
			// A Ctrl without a streamer is drained and dropped by the mixer.
			s.ctrl.Streamer = nil
		}

		p.mixer.Add(ctrl)
	})

	s.ctrl = ctrl
	s.volume = gain
	s.level = volume
}

// SetVolume implements dismissal.AudioPlayer.
func (p *Player) SetVolume(handle dismissal.SoundHandle, volume float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.sounds[handle]
	if !ok {
		return
	}

	s.level = volume

	if s.volume == nil {
		return
	}

	p.withSpeaker(func() {
		applyLevel(s.volume, volume)
	})
}

// Stop implements dismissal.AudioPlayer.
func (p *Player) Stop(handle dismissal.SoundHandle) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if s, ok := p.sounds[handle]; ok {
		p.stop(s)
	}
}

// Release implements dismissal.AudioPlayer.
func (p *Player) Release(handle dismissal.SoundHandle) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.sounds[handle]
	if !ok {
		return
	}

	p.stop(s)
	delete(p.sounds, handle)
}

// IsPlaying reports whether the sound is in the mixer.
func (p *Player) IsPlaying(handle dismissal.SoundHandle) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.sounds[handle]

	return ok && s.ctrl != nil
}

// Volume returns the last linear volume requested for the sound.
func (p *Player) Volume(handle dismissal.SoundHandle) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	if s, ok := p.sounds[handle]; ok {
		return s.level
	}

	return 0
}

// IsSilent reports whether the player runs without a speaker.
func (p *Player) IsSilent() bool {
	return p.silent
}

// load decodes resource into memory and registers it.
func (p *Player) load(resource string) (dismissal.SoundHandle, error) {
	buffer, err := decodeFile(resource)
	if err != nil {
		return 0, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.last++
	p.sounds[p.last] = &sound{buffer: buffer}

	return p.last, nil
}

// stop removes the sound from the mixer. Callers hold p.mu.
func (p *Player) stop(s *sound) {
	if s.ctrl == nil {
		return
	}

	ctrl := s.ctrl

	p.withSpeaker(func() {
		ctrl.Streamer = nil
	})

	s.ctrl = nil
	s.volume = nil
}

// withSpeaker runs fn under the speaker lock when a speaker is open.
func (p *Player) withSpeaker(fn func()) {
	if p.silent {
		fn()
		return
	}

	speaker.Lock()
	defer speaker.Unlock()

	fn()
}

// applyLevel maps a linear volume in [0, 1] onto the exponential gain stage.
func applyLevel(gain *effects.Volume, level float64) {
	if level <= 0 {
		gain.Silent = true
		gain.Volume = 0

		return
	}

	gain.Silent = false
	gain.Volume = math.Log2(math.Min(level, 1))
}

// decodeFile reads a .wav or .mp3 file into a buffer at SampleRate.
func decodeFile(path string) (*beep.Buffer, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open sound: %w", err)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		streamer, format, err = wav.Decode(file)
	case ".mp3":
		streamer, format, err = mp3.Decode(file)
	default:
		_ = file.Close()

		return nil, fmt.Errorf("%s: %w", ext, ErrUnsupportedFormat)
	}

	if err != nil {
		_ = file.Close()

		return nil, fmt.Errorf("decode sound: %w", err)
	}

	defer func() {
		_ = streamer.Close()
	}()

	var source beep.Streamer = streamer
	if format.SampleRate != SampleRate {
		source = beep.Resample(resampleQuality, format.SampleRate, SampleRate, streamer)
	}

	buffer := beep.NewBuffer(beep.Format{
		SampleRate:  SampleRate,
		NumChannels: 2,
		Precision:   2,
	})
	buffer.Append(source)

	if buffer.Len() == 0 {
		return nil, ErrEmptySound
	}

	return buffer, nil
}
