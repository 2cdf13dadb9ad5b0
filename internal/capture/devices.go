package capture

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"time"

	"trivia-quiz-service/internal/domain"
)

// StaticDevice serves a fixed frame (useful for tests/demos, the same way a
// static loader stands in for a question database).
type StaticDevice struct {
	frame image.Image
}

func NewStaticDevice(frame image.Image) *StaticDevice {
	return &StaticDevice{frame: frame}
}

func (d *StaticDevice) Open(_ context.Context, _ Constraints) (Stream, error) {
	if d.frame == nil {
		return nil, domain.ErrDeviceUnavailable
	}
	return &staticStream{frame: d.frame}, nil
}

type staticStream struct {
	frame   image.Image
	stopped bool
}

func (s *staticStream) Frame() (image.Image, error) {
	if s.stopped {
		return nil, domain.ErrNotAcquired
	}
	return s.frame, nil
}

func (s *staticStream) Stop() {
	s.stopped = true
}

// HTTPDevice treats an IP-webcam style endpoint as the camera: every GET on
// the URL returns the current frame as JPEG or PNG.
type HTTPDevice struct {
	url    string
	client *http.Client
}

func NewHTTPDevice(url string) *HTTPDevice {
	return &HTTPDevice{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Open probes the endpoint once so acquisition failures surface immediately
// rather than on the first preview.
func (d *HTTPDevice) Open(ctx context.Context, _ Constraints) (Stream, error) {
	stream := &httpStream{device: d, ctx: ctx}
	if _, err := stream.Frame(); err != nil {
		return nil, err
	}
	return stream, nil
}

type httpStream struct {
	device  *HTTPDevice
	ctx     context.Context
	stopped bool
}

func (s *httpStream) Frame() (image.Image, error) {
	if s.stopped {
		return nil, domain.ErrNotAcquired
	}
	req, err := http.NewRequestWithContext(s.ctx, http.MethodGet, s.device.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build frame request: %w", err)
	}
	resp, err := s.device.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDeviceUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, domain.ErrPermissionDenied
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", domain.ErrDeviceUnavailable, resp.StatusCode)
	}

	frame, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	return frame, nil
}

func (s *httpStream) Stop() {
	s.stopped = true
}
