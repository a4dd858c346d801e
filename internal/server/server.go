package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/roach88/cts/internal/animation"
	"github.com/roach88/cts/internal/attendee"
	"github.com/roach88/cts/internal/form"
	"github.com/roach88/cts/internal/logo"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Options configures a Server.
type Options struct {
	// Store holds the attendees. Nil disables the registration endpoints'
	// backend; the form then explains that it can't save.
	Store attendee.Store

	// Logo are the defaults for the logo endpoints and the page header.
	Logo logo.Options

	// Interval is the animation step of /logo/live.
	Interval time.Duration

	// Scheduler drives /logo/live. Defaults to real timers.
	Scheduler animation.Scheduler

	Logger *slog.Logger
}

// Server serves the registration API, page and logo.
type Server struct {
	store     attendee.Store
	logo      logo.Options
	interval  time.Duration
	scheduler animation.Scheduler
	logger    *slog.Logger
	form      *form.RegisterForm
	router    *mux.Router
}

// New creates a server. The default logo options are checked up front.
func New(opts Options) (*Server, error) {
	if _, err := logo.New(opts.Logo); err != nil {
		return nil, fmt.Errorf("logo: %w", err)
	}
	f, err := form.NewRegisterForm("/register")
	if err != nil {
		return nil, err
	}

	s := &Server{
		store:     opts.Store,
		logo:      opts.Logo,
		interval:  opts.Interval,
		scheduler: opts.Scheduler,
		logger:    opts.Logger,
		form:      f,
	}
	if s.interval <= 0 {
		s.interval = animation.DefaultInterval
	}
	if s.scheduler == nil {
		s.scheduler = animation.RealScheduler{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.accessLog)

	r.Methods(http.MethodGet).Path("/health").HandlerFunc(s.health)

	r.Methods(http.MethodGet).Path("/attendee").HandlerFunc(s.listAttendees)
	r.Methods(http.MethodGet).Path("/attendee/{firstname}/{lastname}").HandlerFunc(s.getAttendee)
	r.Methods(http.MethodPut).Path("/attendee").HandlerFunc(s.putAttendee)

	r.Methods(http.MethodGet).Path("/").HandlerFunc(s.index)
	r.Methods(http.MethodPost).Path("/register").HandlerFunc(s.register)

	r.Methods(http.MethodGet).Path("/logo.svg").HandlerFunc(s.logoSVG)
	r.Methods(http.MethodGet).Path("/logo.png").HandlerFunc(s.logoPNG)
	r.Methods(http.MethodGet).Path("/logo/live").HandlerFunc(s.logoLive)
	return r
}

// Handler returns the server's root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve accepts connections on l until ctx is done, then shuts down,
// waiting up to shutdownTimeout for running requests.
func (s *Server) Serve(ctx context.Context, l net.Listener, shutdownTimeout time.Duration) error {
	httpServer := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", l.Addr().String())
		errCh <- httpServer.Serve(l)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		_ = httpServer.Close()
		return fmt.Errorf("shutdown: %w", err)
	}
	<-errCh
	return nil
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return s.Serve(ctx, l, shutdownTimeout)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("OK"))
}
