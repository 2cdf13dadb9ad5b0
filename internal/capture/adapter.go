// Package capture wraps camera-style frame sources: acquire a live stream,
// preview it, grab one JPEG still on demand, and release the device
// deterministically. Whoever calls Acquire owns the obligation to call
// Release; nothing releases the device automatically.
package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"sync"

	"trivia-quiz-service/internal/domain"
)

// JPEGQuality is the fixed encode quality for captured stills.
const JPEGQuality = 80

// Constraints carries ideal-resolution hints for device acquisition.
type Constraints struct {
	Width      int
	Height     int
	FacingMode string
}

// DefaultConstraints asks for a 1280x720 user-facing stream.
func DefaultConstraints() Constraints {
	return Constraints{Width: 1280, Height: 720, FacingMode: "user"}
}

// Stream is a live video source. Frame returns the current frame; nothing is
// buffered beyond what the source itself holds.
type Stream interface {
	Frame() (image.Image, error)
	Stop()
}

// Device acquires streams. Implementations surface domain.ErrPermissionDenied
// or domain.ErrDeviceUnavailable when the platform refuses.
type Device interface {
	Open(ctx context.Context, c Constraints) (Stream, error)
}

// Adapter drives one capture flow over a device: preview, capture, retake,
// release. It holds at most one acquired stream and one captured still.
type Adapter struct {
	device Device

	mu       sync.Mutex
	stream   Stream
	still    []byte
	released bool
}

func NewAdapter(device Device) *Adapter {
	return &Adapter{device: device}
}

// Acquire opens the device stream. Acquisition is exclusive per adapter;
// acquiring twice without a release in between is a programming error.
func (a *Adapter) Acquire(ctx context.Context, c Constraints) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stream != nil {
		return fmt.Errorf("camera already acquired")
	}
	stream, err := a.device.Open(ctx, c)
	if err != nil {
		return err
	}
	a.stream = stream
	a.released = false
	a.still = nil
	return nil
}

// Preview returns the current live frame for rendering.
func (a *Adapter) Preview() (image.Image, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stream == nil {
		return nil, domain.ErrNotAcquired
	}
	return a.stream.Frame()
}

// CaptureStill encodes the current frame as JPEG and holds it until Retake or
// Release. Only legal between a successful Acquire and Release.
func (a *Adapter) CaptureStill() ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stream == nil {
		return nil, domain.ErrNotAcquired
	}
	frame, err := a.stream.Frame()
	if err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encode still: %w", err)
	}
	a.still = buf.Bytes()
	return a.still, nil
}

// Still returns the held capture, if any.
func (a *Adapter) Still() ([]byte, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.still, a.still != nil
}

// Retake discards the held still and returns to previewing. The stream stays
// open; acquisition is expensive, stills are cheap to throw away.
func (a *Adapter) Retake() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.still = nil
}

// Release stops the underlying stream. Safe to call more than once; every
// exit path of a capture flow must reach it.
func (a *Adapter) Release() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.released || a.stream == nil {
		a.released = true
		return
	}
	a.stream.Stop()
	a.stream = nil
	a.still = nil
	a.released = true
}
