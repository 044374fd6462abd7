package output

import (
	"bufio"
	"context"
	"encoding/json"
	"image"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMJPEGLifecycle(t *testing.T) {
	m := NewMJPEGOutput(Config{Width: 64, Height: 48, FPS: 5})

	frame := image.NewRGBA(image.Rect(0, 0, 64, 48))
	if err := m.WriteFrame(frame); err == nil {
		t.Error("expected error writing to a stopped output")
	}

	if err := m.Start(); err != nil {
		t.Fatal(err)
	}
	if err := m.Start(); err == nil {
		t.Error("expected error starting twice")
	}
	if err := m.WriteFrame(frame); err != nil {
		t.Fatal(err)
	}
	if m.CurrentFrame() != frame {
		t.Error("current frame not updated")
	}

	stats := m.Stats()
	if !stats.Running || stats.Frames != 1 {
		t.Errorf("stats = %+v", stats)
	}

	if err := m.Stop(); err != nil {
		t.Fatal(err)
	}
	if m.IsRunning() {
		t.Error("still running after Stop")
	}
}

func TestMJPEGStream(t *testing.T) {
	m := NewMJPEGOutput(Config{Width: 32, Height: 32, FPS: 5})
	if err := m.Start(); err != nil {
		t.Fatal(err)
	}
	defer m.Stop()

	srv := httptest.NewServer(m.GetHTTPHandler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "multipart/x-mixed-replace") {
		t.Fatalf("content type = %q", ct)
	}

	// wait for the handler to register before writing
	deadline := time.Now().Add(2 * time.Second)
	for m.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if err := m.WriteFrame(image.NewRGBA(image.Rect(0, 0, 32, 32))); err != nil {
		t.Fatal(err)
	}

	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(line) != "--frame" {
		t.Errorf("first line = %q", line)
	}
}

func TestStatsHandler(t *testing.T) {
	m := NewMJPEGOutput(Config{Width: 10, Height: 10, FPS: 1})
	rec := httptest.NewRecorder()
	m.GetStatsHandler()(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

	var stats Stats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatal(err)
	}
	if stats.Running || stats.Width != 10 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestConfigDefaults(t *testing.T) {
	tests := []struct {
		in   Config
		want Config
	}{
		{Config{Width: 10, Height: 10}, Config{Width: 10, Height: 10, FPS: DefaultFPS, Quality: DefaultQuality}},
		{Config{FPS: 30, Quality: 50}, Config{FPS: 30, Quality: 50}},
		{Config{FPS: -1, Quality: 101}, Config{FPS: DefaultFPS, Quality: DefaultQuality}},
	}
	for _, tt := range tests {
		if got := tt.in.WithDefaults(); got != tt.want {
			t.Errorf("%+v.WithDefaults() = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
