// Package server implements "floorview serve": an HTTP API that mounts
// viewers on behalf of thin clients and relays realtime patches to browsers.
//
// Routes, all under /api/v1:
//
//	GET    /floors                  list floor ids (when the source can)
//	GET    /floors/{id}             stored layout
//	POST   /floors/{id}/patches     publish a patch
//	GET    /floors/{id}/ws          WebSocket stream of the floor's patches
//	POST   /sessions                mount a viewer
//	GET    /sessions/{id}           current frame as JSON
//	GET    /sessions/{id}/svg       current frame as SVG
//	POST   /sessions/{id}/input     pointer or touch input
//	POST   /sessions/{id}/resize    viewport size change
//	POST   /sessions/{id}/zoom      zoom in or out
//	POST   /sessions/{id}/pan       pan by a screen delta
//	POST   /sessions/{id}/reset     reset view
//	GET    /sessions/{id}/intents   drain navigation intents
//	DELETE /sessions/{id}           unmount
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/floorview/pkg/config"
	"github.com/matzehuels/floorview/pkg/floorplan/realtime"
	"github.com/matzehuels/floorview/pkg/session"
	"github.com/matzehuels/floorview/pkg/source"
)

// Server serves the viewer API.
type Server struct {
	cfg       config.Config
	src       source.Source
	transport realtime.Channel
	sessions  *session.Store
	logger    *log.Logger
	upgrader  websocket.Upgrader
	router    chi.Router
}

// New returns a server reading layouts from src and patches from transport.
func New(cfg config.Config, src source.Source, transport realtime.Channel, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		cfg:       cfg,
		src:       src,
		transport: transport,
		sessions:  session.NewStore(cfg.Server.SessionTTL, cfg.Server.MaxSessions),
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.sessions.Len()})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/floors", func(r chi.Router) {
			r.Get("/", s.handleListFloors)
			r.Get("/{floorID}", s.handleGetFloor)
			r.Post("/{floorID}/patches", s.handlePublish)
			r.Get("/{floorID}/ws", s.handleStream)
		})
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", s.handleGetFrame)
				r.Get("/svg", s.handleGetSVG)
				r.Post("/input", s.handleInput)
				r.Post("/resize", s.handleResize)
				r.Post("/zoom", s.handleZoom)
				r.Post("/pan", s.handlePan)
				r.Post("/reset", s.handleReset)
				r.Get("/intents", s.handleIntents)
				r.Delete("/", s.handleDeleteSession)
			})
		})
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Sessions exposes the session store.
func (s *Server) Sessions() *session.Store { return s.sessions }

// Run serves on cfg.Server.Addr until ctx ends, then shuts down and
// unmounts every session.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.sessions.Run(ctx, time.Minute)

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	var err error
	select {
	case err = <-errc:
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err = srv.Shutdown(shutdownCtx)
	}
	s.sessions.Close()
	if stderrors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
