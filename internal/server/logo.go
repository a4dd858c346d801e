package server

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/roach88/cts/internal/animation"
	"github.com/roach88/cts/internal/logo"
)

// logoOptions applies the query parameters text, background, colors (comma
// separated), zoom, ratio and animation over the defaults.
func (s *Server) logoOptions(r *http.Request) (logo.Options, error) {
	opts := s.logo
	q := r.URL.Query()

	if q.Has("text") {
		opts.Text = q.Get("text")
	}
	if v := q.Get("background"); v != "" {
		opts.Background = v
	}
	if v := q.Get("colors"); v != "" {
		opts.Colors = strings.Split(v, ",")
	}
	if v := q.Get("animation"); v != "" {
		opts.Animation = v
	}
	if v := q.Get("zoom"); v != "" {
		zoom, err := strconv.Atoi(v)
		if err != nil || zoom < 1 || zoom > 100 {
			return opts, fmt.Errorf("invalid zoom %q", v)
		}
		opts.Zoom = zoom
	}
	if v := q.Get("ratio"); v != "" {
		ratio, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(ratio) || ratio < 0 || ratio > logo.MaxRatio {
			return opts, fmt.Errorf("invalid ratio %q", v)
		}
		opts.Ratio = ratio
	}
	return opts, nil
}

func (s *Server) buildLogo(w http.ResponseWriter, r *http.Request) (*logo.Logo, bool) {
	opts, err := s.logoOptions(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	l, err := logo.New(opts)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	if l.Empty() {
		http.Error(w, logo.ErrEmpty.Error(), http.StatusBadRequest)
		return nil, false
	}
	return l, true
}

func (s *Server) logoSVG(w http.ResponseWriter, r *http.Request) {
	l, ok := s.buildLogo(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := l.WriteSVG(&buf); err != nil {
		s.logger.Error("render svg", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) logoPNG(w http.ResponseWriter, r *http.Request) {
	l, ok := s.buildLogo(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := l.WritePNG(&buf); err != nil {
		// Unparseable colours come from the query.
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(buf.Bytes())
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

const writeWait = 5 * time.Second

// logoLive streams the animated logo. Every step sends the whole SVG as one
// text message. Frames are dropped while the client is behind.
func (s *Server) logoLive(w http.ResponseWriter, r *http.Request) {
	l, ok := s.buildLogo(w, r)
	if !ok {
		return
	}
	if l.Options().Animation == "" {
		http.Error(w, logo.ErrNoAnimation.Error(), http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("failed to upgrade", "err", err)
		return
	}
	defer conn.Close()

	frames := make(chan []byte, 1)
	stepper, err := l.Animate(func() {
		var buf bytes.Buffer
		if err := l.WriteSVG(&buf); err != nil {
			return
		}
		select {
		case frames <- buf.Bytes():
		default:
		}
	}, animation.WithInterval(s.interval), animation.WithScheduler(s.scheduler))
	if err != nil {
		s.logger.Error("failed to animate", "err", err)
		return
	}
	defer stepper.Stop()

	// The client only ever closes; reading notices that.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if !stepper.Start() {
		return
	}
	s.logger.Debug("live logo started", "text", l.Options().Text)

	for {
		select {
		case frame := <-frames:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					s.logger.Debug("live logo write failed", "err", err)
				}
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}
