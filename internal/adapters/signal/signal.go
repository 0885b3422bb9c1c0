package signal

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"

	"github.com/dkeye/coderoom/internal/app/orch"
	"github.com/dkeye/coderoom/internal/config"
	"github.com/dkeye/coderoom/internal/core"
	"github.com/dkeye/coderoom/internal/domain"
)

// Options tune the websocket transport.
type Options struct {
	ReadLimit  int64
	PingPeriod time.Duration
	PongWait   time.Duration
	WriteWait  time.Duration
	SendBuffer int
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ReadLimit:  cfg.ReadLimit,
		PingPeriod: cfg.PingPeriod,
		PongWait:   cfg.PongWait,
		WriteWait:  cfg.WriteWait,
		SendBuffer: cfg.SendBuffer,
	}
}

type SignalWSController struct {
	Orch *orch.Orchestrator
	opts Options

	mu       sync.Mutex
	draining bool
	live     conc.WaitGroup
}

func NewSignalWSController(o *orch.Orchestrator, opts Options) *SignalWSController {
	return &SignalWSController{Orch: o, opts: opts}
}

// WsSignalConn is the send side of one websocket. It implements
// core.SignalConnection.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

// Close stops accepting frames. The write pump flushes a close frame and
// releases the socket.
func (c *WsSignalConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Origin policy belongs to the reverse proxy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and serves the connection for room in
// the background. ctx bounds the connection's lifetime; Wait blocks until
// every served connection has finished its teardown.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context, room domain.RoomName) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	sid := domain.ConnectionID(uuid.NewString())
	log.Info().
		Str("module", "signal").
		Str("sid", string(sid)).
		Str("room", string(room)).
		Str("client_token", c.GetString("client_token")).
		Str("remote", c.ClientIP()).
		Msg("new WS connection")

	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	if ctl.draining {
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"),
			time.Now().Add(ctl.opts.WriteWait))
		_ = ws.Close()
		return
	}
	ctl.live.Go(func() { ctl.serve(ctx, sid, room, ws) })
}

func (ctl *SignalWSController) serve(ctx context.Context, sid domain.ConnectionID, room domain.RoomName, ws *websocket.Conn) {
	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, ctl.opts.SendBuffer),
	}
	sess := ctl.Orch.NewSession(room, sid, conn)
	sess.Connect()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	ctl.live.Go(func() { ctl.writePump(ctx, sid, conn) })
	ctl.readPump(ctx, sess, conn)
}

// Wait refuses new connections and blocks until the served ones have run
// their Disconnect, or ctx is done.
func (ctl *SignalWSController) Wait(ctx context.Context) error {
	ctl.mu.Lock()
	ctl.draining = true
	ctl.mu.Unlock()

	done := make(chan struct{})
	go func() {
		ctl.live.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
