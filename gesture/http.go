package gesture

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// HTTPConfig configures a remote inference client.
type HTTPConfig struct {
	Endpoint    string // base URL, e.g. http://localhost:8088
	Model       string
	APIKey      string // sent as a bearer token when set
	Timeout     time.Duration
	QueueSize   int // frames waiting for a request slot; extra frames are dropped
	Instruction string
}

// HTTPSource streams frames to an inference service over JSON/HTTP. One
// worker sends frames in order; any transport error ends the session with a
// single OnDisconnect.
type HTTPSource struct {
	cfg    HTTPConfig
	client *http.Client

	mu       sync.Mutex
	frames   chan []byte
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	live     atomic.Bool
	sent     atomic.Uint64
	dropped  atomic.Uint64
	lastFail atomic.Pointer[string]
}

// inferRequest is the request body.
type inferRequest struct {
	Model       string `json:"model"`
	Instruction string `json:"instruction"`
	MimeType    string `json:"mime_type"`
	Data        string `json:"data"`
}

// inferResponse is the response body. Values are loosely typed on the wire.
type inferResponse struct {
	Expansion any `json:"expansion"`
	Tension   any `json:"tension"`
}

// NewHTTPSource creates a disconnected client.
func NewHTTPSource(cfg HTTPConfig) *HTTPSource {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 1
	}
	if cfg.Instruction == "" {
		cfg.Instruction = Instruction
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	return &HTTPSource{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Connect checks the service health endpoint and starts the send worker.
func (s *HTTPSource) Connect(ctx context.Context, h Handlers) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.stopLocked()
	}

	if err := s.healthCheck(ctx); err != nil {
		return err
	}

	wctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.frames = make(chan []byte, s.cfg.QueueSize)
	s.live.Store(true)

	s.wg.Add(1)
	go s.run(wctx, s.frames, h)

	h.connect()
	return nil
}

func (s *HTTPSource) healthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.Endpoint+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("create health request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check: status %d", resp.StatusCode)
	}
	return nil
}

func (s *HTTPSource) run(ctx context.Context, frames <-chan []byte, h Handlers) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case frame := <-frames:
			expansion, tension, err := s.infer(ctx, frame)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				msg := err.Error()
				s.lastFail.Store(&msg)
				s.live.Store(false)
				slog.Warn("inference request failed", "error", err, "sent", s.sent.Load())
				h.disconnect()
				return
			}
			s.sent.Add(1)
			h.update(expansion, tension)
		}
	}
}

func (s *HTTPSource) infer(ctx context.Context, frame []byte) (float64, float64, error) {
	body, err := json.Marshal(inferRequest{
		Model:       s.cfg.Model,
		Instruction: s.cfg.Instruction,
		MimeType:    "image/jpeg",
		Data:        base64.StdEncoding.EncodeToString(frame),
	})
	if err != nil {
		return 0, 0, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint+"/v1/infer", bytes.NewReader(body))
	if err != nil {
		return 0, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("inference call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, 0, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("inference error %d: %s", resp.StatusCode, string(respBody))
	}

	var out inferResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return 0, 0, fmt.Errorf("unmarshal response: %w", err)
	}

	slog.Debug("inference reading", "expansion", out.Expansion, "tension", out.Tension)
	return coerce(out.Expansion), coerce(out.Tension), nil
}

// SendFrame queues a frame, dropping it if the queue is full or the
// session is down.
func (s *HTTPSource) SendFrame(jpeg []byte) {
	if !s.live.Load() {
		return
	}
	s.mu.Lock()
	frames := s.frames
	s.mu.Unlock()

	select {
	case frames <- jpeg:
	default:
		s.dropped.Add(1)
	}
}

// Disconnect stops the worker and waits for an in-flight request to end.
func (s *HTTPSource) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *HTTPSource) stopLocked() {
	s.live.Store(false)
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.wg.Wait()
}

// Sent returns the number of frames answered by the service.
func (s *HTTPSource) Sent() uint64 { return s.sent.Load() }

// Dropped returns the number of frames discarded because the queue was full.
func (s *HTTPSource) Dropped() uint64 { return s.dropped.Load() }

// LastError returns the error that ended the most recent session, if any.
func (s *HTTPSource) LastError() string {
	if p := s.lastFail.Load(); p != nil {
		return *p
	}
	return ""
}
