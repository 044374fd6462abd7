package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bryanchriswhite/WebDesk/internal/api"
	"github.com/bryanchriswhite/WebDesk/internal/config"
	"github.com/bryanchriswhite/WebDesk/internal/shell"
	"github.com/bryanchriswhite/WebDesk/internal/window"
)

func newTestClient(t *testing.T) (*Client, *shell.Shell) {
	t.Helper()
	cfg := config.Defaults()
	cfg.Animation.Auto = false
	sh, err := shell.New(cfg)
	if err != nil {
		t.Fatalf("shell.New: %v", err)
	}
	t.Cleanup(sh.Stop)

	srv := httptest.NewServer(api.NewServer(sh, nil, nil, nil).Handler())
	t.Cleanup(srv.Close)

	c, err := New(srv.URL + "/")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, sh
}

func TestNewRejectsBadURL(t *testing.T) {
	for _, u := range []string{"localhost:8080", "ftp://example.com", "://"} {
		if _, err := New(u); err == nil {
			t.Errorf("New(%q) succeeded", u)
		}
	}
}

func TestHealthAndState(t *testing.T) {
	c, sh := newTestClient(t)
	ctx := context.Background()

	h, err := c.Health(ctx)
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if h.Session != sh.Session() {
		t.Errorf("session = %q, want %q", h.Session, sh.Session())
	}

	st, err := c.State(ctx)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	// settings opens at start in the default catalogue
	if st.Active != "settings" || len(st.Stack) != 1 {
		t.Errorf("state = active %q stack %v", st.Active, st.Stack)
	}
}

func TestToggleFocusCloseAll(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	v, err := c.Toggle(ctx, "terminal")
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if !v.Open || !v.Active || v.Phase != window.PhaseEntering {
		t.Errorf("terminal = %v", v)
	}

	v, err = c.Focus(ctx, "settings")
	if err != nil {
		t.Fatalf("Focus: %v", err)
	}
	if !v.Active {
		t.Errorf("settings not active after focus: %v", v)
	}

	views, err := c.Windows(ctx)
	if err != nil {
		t.Fatalf("Windows: %v", err)
	}
	open := 0
	for _, w := range views {
		if w.Open {
			open++
		}
	}
	if open != 2 {
		t.Errorf("%d windows open, want 2", open)
	}

	n, err := c.CloseAll(ctx)
	if err != nil {
		t.Fatalf("CloseAll: %v", err)
	}
	if n != 2 {
		t.Errorf("CloseAll closed %d, want 2", n)
	}
}

func TestAPIErrors(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	_, err := c.Toggle(ctx, "nope")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Toggle(nope) error = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", apiErr.Status)
	}

	_, err = c.Focus(ctx, "music")
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusConflict {
		t.Errorf("Focus(closed) error = %v, want 409", err)
	}
}
