package gesture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/image/draw"
)

// FrameGrabber supplies camera frames.
type FrameGrabber interface {
	Grab() (image.Image, error)
}

// EncodeOptions sets the size and quality of frames sent for inference.
type EncodeOptions struct {
	Width, Height int
	Quality       int // JPEG quality 1-100
}

// DefaultEncodeOptions matches the inference service's expected input.
var DefaultEncodeOptions = EncodeOptions{Width: 320, Height: 240, Quality: 60}

// EncodeFrame scales img to the target size and encodes it as JPEG.
func EncodeFrame(img image.Image, opts EncodeOptions) ([]byte, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = DefaultEncodeOptions.Width, DefaultEncodeOptions.Height
	}
	if opts.Quality <= 0 {
		opts.Quality = DefaultEncodeOptions.Quality
	}

	dst := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: opts.Quality}); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return buf.Bytes(), nil
}

// FramePump grabs, encodes and sends frames on a fixed cadence, decoupled
// from rendering.
type FramePump struct {
	grabber  FrameGrabber
	send     func([]byte)
	interval time.Duration
	opts     EncodeOptions

	mu      sync.Mutex
	sent    uint64
	skipped uint64
}

// NewFramePump creates a pump sending to send every interval.
func NewFramePump(g FrameGrabber, send func([]byte), interval time.Duration, opts EncodeOptions) *FramePump {
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	return &FramePump{grabber: g, send: send, interval: interval, opts: opts}
}

// Run pumps frames until ctx ends. Grab and encode failures are logged and
// skipped.
func (p *FramePump) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.pumpOne()
		}
	}
}

func (p *FramePump) pumpOne() {
	img, err := p.grabber.Grab()
	if err == nil {
		var data []byte
		data, err = EncodeFrame(img, p.opts)
		if err == nil {
			p.send(data)
			p.mu.Lock()
			p.sent++
			p.mu.Unlock()
			return
		}
	}
	p.mu.Lock()
	p.skipped++
	n := p.skipped
	p.mu.Unlock()
	slog.Debug("frame skipped", "error", err, "skipped", n)
}

// Stats returns frames sent and frames skipped.
func (p *FramePump) Stats() (sent, skipped uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sent, p.skipped
}

// DirectoryGrabber cycles through the JPEG and PNG images in a directory.
type DirectoryGrabber struct {
	mu    sync.Mutex
	paths []string
	next  int
}

// NewDirectoryGrabber lists the images in dir in name order.
func NewDirectoryGrabber(dir string) (*DirectoryGrabber, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading frames dir: %w", err)
	}
	g := &DirectoryGrabber{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png":
			g.paths = append(g.paths, filepath.Join(dir, e.Name()))
		}
	}
	if len(g.paths) == 0 {
		return nil, fmt.Errorf("no images in %s", dir)
	}
	sort.Strings(g.paths)
	return g, nil
}

// Grab decodes the next image, wrapping at the end of the list.
func (g *DirectoryGrabber) Grab() (image.Image, error) {
	g.mu.Lock()
	path := g.paths[g.next]
	g.next = (g.next + 1) % len(g.paths)
	g.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening frame: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

// Len returns the number of frames in the cycle.
func (g *DirectoryGrabber) Len() int { return len(g.paths) }
