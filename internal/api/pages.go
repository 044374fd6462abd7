package api

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"net/http"

	"github.com/bryanchriswhite/WebDesk/internal/display"
)

// handleSnapshot renders the current layout as a PNG
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	var img *image.RGBA
	if s.displayMgr != nil {
		img = s.displayMgr.Snapshot()
	} else {
		img = display.RenderLayout(s.shell.State())
	}

	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("failed to encode snapshot: %w", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(buf.Bytes())
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	preview := `<img src="/api/snapshot.png" alt="layout snapshot">`
	if s.stream != nil {
		preview = `<img src="/api/stream" alt="live layout">`
	}

	w.Header().Set("Content-Type", "text/html")
	fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>WebDesk</title>
    <style>
        body { font-family: system-ui, sans-serif; margin: 40px auto; max-width: 960px; background: #111; color: #ddd; }
        a { color: #60a5fa; }
        img { width: 100%%; border: 1px solid #333; }
    </style>
</head>
<body>
    <h1>WebDesk</h1>
    <p>Session <code>%s</code></p>
    %s
    <ul>
        <li><a href="/api/health">/api/health</a></li>
        <li><a href="/api/state">/api/state</a></li>
        <li><a href="/api/windows">/api/windows</a></li>
        <li><a href="/api/stream/stats">/api/stream/stats</a></li>
    </ul>
</body>
</html>`, s.shell.Session(), preview)
}
