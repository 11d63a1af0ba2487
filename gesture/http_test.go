package gesture

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pthm-cable/zenparticles/control"
)

func inferenceServer(t *testing.T, infer http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/v1/infer", infer)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPSourceRoundTrip(t *testing.T) {
	frame := []byte{0xff, 0xd8, 0x01, 0x02}
	var gotReq atomic.Pointer[inferRequest]
	var auth atomic.Pointer[string]

	srv := inferenceServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req inferRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotReq.Store(&req)
		a := r.Header.Get("Authorization")
		auth.Store(&a)
		w.Write([]byte(`{"expansion": 0.7, "tension": "0.2"}`))
	})

	src := NewHTTPSource(HTTPConfig{Endpoint: srv.URL + "/", Model: "m1", APIKey: "k", Timeout: time.Second, QueueSize: 2})
	mb := control.NewMailbox(control.State{})
	l := NewLink(src, mb)

	if err := l.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer l.Disconnect()

	l.SendFrame(frame)
	waitFor(t, "an update", func() bool { return mb.Seq() > 0 })

	if got := mb.Peek(); got != (control.State{Expansion: 0.7, Tension: 0.2}) {
		t.Errorf("mailbox = %v, want {0.7 0.2}", got)
	}

	req := gotReq.Load()
	if req.Model != "m1" || req.MimeType != "image/jpeg" || req.Instruction != Instruction {
		t.Errorf("request = model %q mime %q, instruction set %v", req.Model, req.MimeType, req.Instruction == Instruction)
	}
	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil || string(data) != string(frame) {
		t.Errorf("frame payload = %v (err %v), want %v", data, err, frame)
	}
	if *auth.Load() != "Bearer k" {
		t.Errorf("Authorization = %q", *auth.Load())
	}
}

func TestHTTPSourceFailureDisconnectsOnce(t *testing.T) {
	var calls atomic.Int32
	srv := inferenceServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Write([]byte(`{"expansion": 0.6, "tension": 0.4}`))
			return
		}
		http.Error(w, "quota", http.StatusTooManyRequests)
	})

	src := NewHTTPSource(HTTPConfig{Endpoint: srv.URL, Timeout: time.Second, QueueSize: 4})
	var disconnects atomic.Int32
	mb := control.NewMailbox(control.State{})

	err := src.Connect(context.Background(), Handlers{
		OnUpdate:     func(e, t float64) { mb.Publish(control.FromFloat64(e, t)) },
		OnDisconnect: func() { disconnects.Add(1) },
	})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer src.Disconnect()

	src.SendFrame([]byte{1})
	waitFor(t, "first update", func() bool { return mb.Seq() == 1 })
	src.SendFrame([]byte{2})
	src.SendFrame([]byte{3})
	waitFor(t, "disconnect", func() bool { return disconnects.Load() > 0 })

	time.Sleep(20 * time.Millisecond)
	if n := disconnects.Load(); n != 1 {
		t.Errorf("OnDisconnect fired %d times, want 1", n)
	}
	if got := mb.Peek(); got != (control.State{Expansion: 0.6, Tension: 0.4}) {
		t.Errorf("mailbox = %v, want last good reading", got)
	}
	if src.LastError() == "" {
		t.Error("LastError empty after failure")
	}

	src.SendFrame([]byte{4})
	if calls.Load() != 2 {
		t.Errorf("server saw %d calls, want 2", calls.Load())
	}
}

func TestHTTPSourceHealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	l := NewLink(NewHTTPSource(HTTPConfig{Endpoint: srv.URL}), control.NewMailbox(control.State{}))
	if err := l.Connect(context.Background()); err == nil {
		t.Fatal("Connect succeeded against an unhealthy service")
	}
	if l.Status() != Offline {
		t.Errorf("Status = %v, want offline", l.Status())
	}
}

func TestHTTPSourceDropsWhenQueueFull(t *testing.T) {
	release := make(chan struct{})
	srv := inferenceServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
		w.Write([]byte(`{"expansion": 0, "tension": 0}`))
	})
	defer close(release)

	src := NewHTTPSource(HTTPConfig{Endpoint: srv.URL, Timeout: 2 * time.Second, QueueSize: 1})
	if err := src.Connect(context.Background(), Handlers{}); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer src.Disconnect()

	start := time.Now()
	for i := 0; i < 10; i++ {
		src.SendFrame([]byte{byte(i)})
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Error("SendFrame blocked")
	}
	if src.Dropped() == 0 {
		t.Error("no frames dropped with a full queue")
	}
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		in   any
		want float64
	}{
		{0.25, 0.25},
		{"0.5", 0.5},
		{" 1 ", 1},
		{"abc", 0},
		{true, 1},
		{false, 0},
		{nil, 0},
		{[]any{1.0}, 0},
	}
	for _, tt := range tests {
		if got := coerce(tt.in); got != tt.want {
			t.Errorf("coerce(%#v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
