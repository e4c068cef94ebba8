package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/floorview/pkg/errors"
	"github.com/matzehuels/floorview/pkg/floorplan/realtime"
	"github.com/matzehuels/floorview/pkg/source"
)

const (
	relayBuffer     = 64 // distinct rooms pending per client
	relayWriteWait  = 10 * time.Second
	relayPingPeriod = 30 * time.Second
)

func (s *Server) handleListFloors(w http.ResponseWriter, r *http.Request) {
	l, ok := s.src.(source.Lister)
	if !ok {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "this source cannot list floors"))
		return
	}
	ids, err := l.Floors(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids)
}

func (s *Server) handleGetFloor(w http.ResponseWriter, r *http.Request) {
	f, err := source.Load(r.Context(), s.src, chi.URLParam(r, "floorID"), s.logger)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	floorID := chi.URLParam(r, "floorID")
	if err := errors.ValidateFloorID(floorID); err != nil {
		s.writeError(w, r, err)
		return
	}
	pub, ok := s.transport.(realtime.Publisher)
	if !ok {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "transport cannot publish"))
		return
	}
	var p realtime.Patch
	if err := decode(r, &p); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidPatch, err, "decode patch"))
		return
	}
	if err := p.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := pub.Publish(r.Context(), floorID, p); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// handleStream upgrades to a WebSocket and forwards every patch published
// for the floor as one text message. Patches for a slow client coalesce
// per room rather than stall the transport.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	floorID := chi.URLParam(r, "floorID")
	if err := errors.ValidateFloorID(floorID); err != nil {
		s.writeError(w, r, err)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	queue := newRelayQueue(relayBuffer)
	sub, err := s.transport.Subscribe(r.Context(), floorID, func(p []byte) {
		evicted, ok := queue.push(p)
		switch {
		case !ok:
			s.logger.Debug("relay skipping malformed patch", "floor", floorID)
		case evicted:
			s.logger.Warn("relay client too slow, dropping oldest room", "floor", floorID)
		}
	})
	if err != nil {
		s.logger.Warn("relay subscribe failed", "floor", floorID, "err", err)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "subscribe failed"),
			time.Now().Add(relayWriteWait))
		return
	}
	defer sub.Close()
	s.logger.Debug("relay attached", "floor", floorID, "remote", r.RemoteAddr)

	// The read side only detects the client going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(relayPingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-gone:
			return
		case <-r.Context().Done():
			return
		case <-queue.ready:
			for _, p := range queue.drain() {
				_ = conn.SetWriteDeadline(time.Now().Add(relayWriteWait))
				if err := conn.WriteMessage(websocket.TextMessage, p); err != nil {
					return
				}
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(relayWriteWait)); err != nil {
				return
			}
		}
	}
}
