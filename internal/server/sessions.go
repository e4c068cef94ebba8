package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/floorview/pkg/errors"
	"github.com/matzehuels/floorview/pkg/floorplan/geom"
	"github.com/matzehuels/floorview/pkg/floorplan/gesture"
	"github.com/matzehuels/floorview/pkg/floorplan/render"
	"github.com/matzehuels/floorview/pkg/floorplan/viewer"
	"github.com/matzehuels/floorview/pkg/session"
	"github.com/matzehuels/floorview/pkg/source"
)

// maxIntents bounds each session's undrained navigation queue.
const maxIntents = 32

type createSessionRequest struct {
	FloorID  string    `json:"floorId"`
	Viewport geom.Size `json:"viewport"`
}

type sessionResponse struct {
	ID      string          `json:"id"`
	FloorID string          `json:"floorId"`
	Frame   render.Frame    `json:"frame"`
	Intents []viewer.Intent `json:"intents,omitempty"`
}

type inputRequest struct {
	Phase    string       `json:"phase"`
	Contacts []geom.Point `json:"contacts"`
}

type zoomRequest struct {
	Direction string  `json:"direction"`
	Factor    float64 `json:"factor"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Viewport.Width <= 0 || req.Viewport.Height <= 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "viewport must have a positive size"))
		return
	}

	floor, err := source.Load(r.Context(), s.src, req.FloorID, s.logger)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	intents := &viewer.Intents{Max: maxIntents}
	resizer := &viewer.Resizer{}
	vc := s.cfg.Viewer
	m, err := viewer.Open(context.WithoutCancel(r.Context()), floor, viewer.MountConfig{
		Channel:  s.transport,
		Resize:   resizer,
		Viewport: req.Viewport,
	},
		viewer.WithRouter(intents),
		viewer.WithLogger(s.logger.With("floor", floor.ID)),
		viewer.WithDefaults(vc.Defaults()),
		viewer.WithDragThreshold(vc.DragThreshold),
	)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sess := session.New(floor.ID, m, resizer, intents)
	if err := s.sessions.Add(sess); err != nil {
		_ = m.Close()
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("session created", "session", sess.ID, "floor", floor.ID, "rooms", len(floor.Blocks))

	st, err := m.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{ID: sess.ID, FloorID: sess.FloorID, Frame: render.NewFrame(st)})
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return sess, true
}

// apply sends ev to the session's viewer and responds with the new frame.
func (s *Server) apply(w http.ResponseWriter, r *http.Request, sess *session.Session, ev viewer.Event) {
	st, err := sess.Mount.Send(r.Context(), ev)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		ID:      sess.ID,
		FloorID: sess.FloorID,
		Frame:   render.NewFrame(st),
		Intents: sess.Intents.Drain(),
	})
}

func (s *Server) handleGetFrame(w http.ResponseWriter, r *http.Request) {
	if sess, ok := s.session(w, r); ok {
		s.apply(w, r, sess, nil)
	}
}

func (s *Server) handleGetSVG(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	st, err := sess.Mount.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var opts []render.SVGOption
	if base := s.cfg.Server.LinkBase; base != "" {
		opts = append(opts, render.WithLinks(base))
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(render.RenderSVG(render.NewFrame(st), opts...))
}

func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req inputRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	phase, err := parsePhase(req.Phase)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.apply(w, r, sess, viewer.InputEvent{Input: gesture.Input{Phase: phase, Contacts: req.Contacts}})
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var size geom.Size
	if err := decode(r, &size); err != nil {
		s.writeError(w, r, err)
		return
	}
	if size.Width <= 0 || size.Height <= 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "viewport must have a positive size"))
		return
	}
	sess.Resize.Notify(size)
	s.apply(w, r, sess, nil)
}

func (s *Server) handleZoom(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req zoomRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	step := s.cfg.Viewer.ZoomStep
	var ev viewer.ZoomEvent
	switch {
	case req.Factor > 0:
		ev = viewer.ZoomEvent{Factor: req.Factor}
	case strings.EqualFold(req.Direction, "in"):
		ev = viewer.ZoomIn(step)
	case strings.EqualFold(req.Direction, "out"):
		ev = viewer.ZoomOut(step)
	default:
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, `zoom needs a positive factor or direction "in" or "out"`))
		return
	}
	s.apply(w, r, sess, ev)
}

func (s *Server) handlePan(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var d geom.Point
	if err := decode(r, &d); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.apply(w, r, sess, viewer.PanEvent{Delta: d})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if sess, ok := s.session(w, r); ok {
		s.apply(w, r, sess, viewer.ResetEvent{})
	}
}

func (s *Server) handleIntents(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	intents := sess.Intents.Drain()
	if intents == nil {
		intents = []viewer.Intent{}
	}
	writeJSON(w, http.StatusOK, intents)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if err := s.sessions.Delete(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("session closed", "session", id)
	w.WriteHeader(http.StatusNoContent)
}

func parsePhase(p string) (gesture.Phase, error) {
	switch strings.ToLower(p) {
	case "start", "down":
		return gesture.Start, nil
	case "move":
		return gesture.Move, nil
	case "end", "up", "cancel":
		return gesture.End, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown input phase %q", p)
}
