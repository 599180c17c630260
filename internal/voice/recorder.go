// Package voice models one microphone recording as a small state machine:
// Idle until Start, Recording while chunks arrive, Processing once Stop has
// sealed the buffer. The finished audio is delivered through a channel, so
// the consumer awaits the recording's end instead of registering callbacks.
package voice

import (
	"errors"
	"io"
	"sync"
)

type State int

const (
	Idle State = iota
	Recording
	Processing
)

var (
	ErrNotRecording     = errors.New("voice: not recording")
	ErrAlreadyRecording = errors.New("voice: recording already in progress")
)

// maxRecordingBytes caps a single recording; past it Chunk starts failing so
// a stuck client cannot grow the buffer forever.
const maxRecordingBytes = 25 << 20

type Recorder struct {
	mu    sync.Mutex
	state State
	buf   []byte
	done  chan []byte
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Start begins a new recording. Only valid from Idle.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != Idle {
		return ErrAlreadyRecording
	}
	r.state = Recording
	r.buf = nil
	r.done = make(chan []byte, 1)
	return nil
}

// Chunk appends captured audio. Only valid while Recording.
func (r *Recorder) Chunk(data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != Recording {
		return ErrNotRecording
	}
	if len(r.buf)+len(data) > maxRecordingBytes {
		return errors.New("voice: recording too large")
	}
	r.buf = append(r.buf, data...)
	return nil
}

// Stop seals the buffer, moves to Processing, and returns the channel the
// finished audio is delivered on. The capture device must already be
// released by the caller before Stop returns, success or not.
func (r *Recorder) Stop() (<-chan []byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != Recording {
		return nil, ErrNotRecording
	}
	r.state = Processing
	r.done <- r.buf
	close(r.done)
	return r.done, nil
}

// Finish returns the recorder to Idle once the consumer has taken the audio,
// making it reusable for the next recording.
func (r *Recorder) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state = Idle
	r.buf = nil
	r.done = nil
}

// Capture drains an incoming audio stream through a fresh recording cycle
// and returns the sealed buffer. This is how the upload handler consumes a
// browser recording: the stream stands in for the microphone track.
func (r *Recorder) Capture(src io.Reader) ([]byte, error) {
	if err := r.Start(); err != nil {
		return nil, err
	}
	defer r.Finish()

	chunk := make([]byte, 32*1024)
	for {
		n, err := src.Read(chunk)
		if n > 0 {
			if cErr := r.Chunk(chunk[:n]); cErr != nil {
				return nil, cErr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	done, err := r.Stop()
	if err != nil {
		return nil, err
	}
	return <-done, nil
}
