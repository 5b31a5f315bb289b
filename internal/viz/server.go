// Package viz serves a single live state-snapshot feed over a websocket:
// ping/pong keepalive, a write-deadline, and a throttled-publish pump
// over the engine's per-tick agent snapshots.
package viz

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"
	"github.com/rs/zerolog"

	"dtnsim/internal/engine"
)

var upgrader = websocket.Upgrader{}

const (
	writeWait        = 1 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	closeGracePeriod = 10 * time.Second
	pubResolution    = 100 * time.Millisecond
	pingResolution   = 500 * time.Millisecond
)

// Server publishes one Simulation's per-tick snapshots to a single
// connected websocket client.
type Server struct {
	addr string
	sim  *engine.Simulation
	log  zerolog.Logger

	// updates carries a fresh snapshot after every tick; the caller (the
	// engine's run loop) pushes into it, non-blocking, between ticks.
	updates chan []engine.Snapshot
}

// NewServer constructs a viz server bound to addr, publishing sim's
// snapshots as they're pushed via Publish.
func NewServer(addr string, sim *engine.Simulation, log zerolog.Logger) *Server {
	return &Server{
		addr:    addr,
		sim:     sim,
		log:     log,
		updates: make(chan []engine.Snapshot, 1),
	}
}

// Publish offers the current snapshot set to any connected client without
// blocking: if the channel's single slot is full, the stale snapshot in it
// is dropped and replaced by this one (the consumer throttles anyway, at
// pubResolution below).
func (s *Server) Publish(snaps []engine.Snapshot) {
	select {
	case s.updates <- snaps:
	default:
		select {
		case <-s.updates:
		default:
		}
		s.updates <- snaps
	}
}

// Serve starts the HTTP server; blocks until it returns an error.
func (s *Server) Serve() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWebsocket)
	return http.ListenAndServe(s.addr, mux)
}

func (s *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		s.log.Warn().Err(err).Msg("viz: websocket upgrade failed")
		return
	}
	defer closeWebsocket(ws)
	s.publishLoop(r.Context(), ws)
}

// publishLoop runs a read pump goroutine to drive the pong handler, a
// ticker-driven ping, and a throttled publish of whatever snapshot last
// arrived on s.updates.
func (s *Server) publishLoop(ctx context.Context, ws *websocket.Conn) {
	last := time.Now()
	pubCtx, cancelPub := context.WithCancel(ctx)
	defer cancelPub()
	pinger := channerics.NewTicker(pubCtx.Done(), pingResolution)
	lastPong := time.Now()

	pong := make(chan struct{})
	defer close(pong)
	ws.SetPongHandler(func(string) error {
		pong <- struct{}{}
		return nil
	})

	go func() {
		for {
			select {
			case <-pubCtx.Done():
				return
			default:
				if _, _, err := ws.ReadMessage(); err != nil {
					cancelPub()
					if isClosure(err) {
						return
					}
					s.log.Warn().Err(err).Msg("viz: read pump error")
				}
			}
		}
	}()

	for {
		select {
		case <-pubCtx.Done():
			return
		case <-pinger:
			if time.Since(lastPong) > pingResolution*2 {
				s.log.Warn().Msg("viz: client unresponsive, closing")
				return
			}
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				if isError(err) {
					s.log.Warn().Err(err).Msg("viz: ping failed")
				}
				return
			}
		case <-pong:
			lastPong = time.Now()
		case snaps := <-s.updates:
			if time.Since(last) < pubResolution {
				continue
			}
			last = time.Now()
			if err := ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				s.log.Warn().Err(err).Msg("viz: failed to set write deadline")
				return
			}
			if err := ws.WriteJSON(snaps); err != nil {
				if isError(err) {
					s.log.Warn().Err(err).Msg("viz: publish failed")
				}
				return
			}
		}
	}
}

func isError(err error) bool {
	return err != nil && websocket.IsUnexpectedCloseError(
		err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway)
}

func isClosure(err error) bool {
	return err != nil && websocket.IsCloseError(
		err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway)
}

func closeWebsocket(ws *websocket.Conn) {
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = ws.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	time.Sleep(closeGracePeriod)
	ws.Close()
}
