package server

import (
	"context"
	"encoding/json"
	"errors"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/lox/tilematch/internal/level"
	"github.com/lox/tilematch/internal/sched"
	"github.com/lox/tilematch/internal/score"
	"github.com/lox/tilematch/internal/session"
	"golang.org/x/sync/errgroup"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	sendBuffer = 256
)

var ErrConnectionClosed = websocket.ErrCloseSent

// Connection is one player's WebSocket. Its session runs on a private
// sched.Loop; the read pump only decodes messages and posts work to the
// loop, and observer events are queued to the write pump.
type Connection struct {
	conn    *websocket.Conn
	send    chan *Message
	loop    *sched.Loop
	session *session.Session
	monitor GameMonitor
	logger  *log.Logger

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewConnection creates a connection wrapper with a fresh session.
func NewConnection(conn *websocket.Conn, catalog *level.Catalog, store score.Store, monitor GameMonitor, clock quartz.Clock, rng *rand.Rand, logger *log.Logger) *Connection {
	if monitor == nil {
		monitor = NullGameMonitor{}
	}
	ctx, cancel := context.WithCancel(context.Background())

	c := &Connection{
		conn:    conn,
		send:    make(chan *Message, sendBuffer),
		loop:    sched.NewLoop(clock, logger),
		monitor: monitor,
		ctx:     ctx,
		cancel:  cancel,
	}
	c.session = session.New(catalog, store, c.loop, rng, logger, c)
	c.logger = logger.WithPrefix("conn").With("session", c.session.ID()[:8])
	return c
}

// Run serves the connection until the peer goes away or ctx is cancelled.
func (c *Connection) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, c.cancel)
	defer stop()

	g, gctx := errgroup.WithContext(c.ctx)
	g.Go(func() error {
		defer c.cancel()
		return c.loop.Run(gctx)
	})
	g.Go(func() error {
		defer c.cancel()
		c.writePump(gctx)
		return nil
	})
	g.Go(func() error {
		defer c.cancel()
		c.readPump()
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		_ = c.Close() // Unblocks the read pump
		return nil
	})

	c.logger.Info("Player connected")
	err := g.Wait()
	c.session.Close()
	c.logger.Info("Player disconnected")

	if errors.Is(err, context.Canceled) || errors.Is(err, websocket.ErrCloseSent) {
		return nil
	}
	return err
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.conn.Close()
	})
	return err
}

// Post runs fn on the connection's loop.
func (c *Connection) Post(fn func()) bool {
	return c.loop.Post(fn)
}

// SendMessage queues a message for the client
func (c *Connection) SendMessage(msg *Message) error {
	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

func (c *Connection) sendData(t MessageType, data any) {
	msg, err := NewMessage(t, data)
	if err != nil {
		c.logger.Error("Failed to create message", "type", t, "error", err)
		return
	}
	_ = c.SendMessage(msg) // Ignore send errors
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	c.sendData(MessageTypeError, ErrorData{Code: code, Message: message})
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) && c.ctx.Err() == nil {
				c.logger.Debug("WebSocket read failed", "error", err)
			}
			return
		}
		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Debug("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-ctx.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// handleMessage decodes a client message and posts it to the loop.
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type)

	var work func()
	switch msg.Type {
	case MessageTypeStart:
		var data StartData
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				c.sendError("invalid_message", "Failed to parse start data")
				return
			}
		}
		work = func() { c.handleStart(data) }

	case MessageTypeReveal:
		var data RevealData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse reveal data")
			return
		}
		work = func() { c.session.Reveal(data.Card) }

	case MessageTypeRestart:
		work = func() { c.loadResult(c.session.Restart(c.ctx)) }

	case MessageTypeNext:
		work = func() { c.loadResult(c.session.Next(c.ctx)) }

	case MessageTypeHint:
		work = c.handleHint

	case MessageTypeAddTime:
		var data AddTimeData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse add_time data")
			return
		}
		work = func() { c.handleAddTime(data) }

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
		return
	}

	if !c.loop.Post(work) {
		c.logger.Debug("Dropped message after loop stopped", "type", msg.Type)
	}
}

func (c *Connection) handleStart(data StartData) {
	if data.Level == 0 {
		first, ok := c.session.Catalog().First()
		if !ok {
			c.sendError("no_levels", "The level catalog is empty")
			return
		}
		data.Level = first.ID
	}
	c.loadResult(c.session.Load(c.ctx, data.Level))
}

func (c *Connection) loadResult(err error) {
	switch {
	case err == nil:
		c.monitor.OnGameStart(c.session.ID(), c.session.Snapshot().Level)
	case errors.Is(err, level.ErrLevelNotFound):
		c.sendError("level_not_found", err.Error())
	case errors.Is(err, session.ErrNoLevel):
		c.sendError("no_level", "Start a level first")
	case errors.Is(err, session.ErrNoMoreLevels):
		c.sendError("no_more_levels", "That was the last level")
	default:
		c.logger.Error("Failed to load level", "error", err)
		c.sendError("load_failed", err.Error())
	}
}

func (c *Connection) handleHint() {
	a, b, ok := c.session.Hint()
	c.sendData(MessageTypeHint, HintData{Found: ok, A: a, B: b})
}

// handleAddTime relies on the session's tick event to report the new time.
func (c *Connection) handleAddTime(data AddTimeData) {
	if !c.session.AddTime(data.Seconds) {
		c.sendError("no_countdown", "There is no running countdown to extend")
	}
}

// BoardChanged implements session.Observer.
func (c *Connection) BoardChanged(s session.Snapshot) {
	c.sendData(MessageTypeBoard, BoardDataFromSnapshot(s))
}

// Moved implements session.Observer.
func (c *Connection) Moved(moves int) {
	c.sendData(MessageTypeMove, MoveData{Moves: moves})
}

// Matched implements session.Observer.
func (c *Connection) Matched(remaining int) {
	c.sendData(MessageTypeMatch, MatchData{Remaining: remaining})
}

// Ticked implements session.Observer.
func (c *Connection) Ticked(left int) {
	c.sendData(MessageTypeTick, TickData{TimeLeft: left})
}

// Finished implements session.Observer.
func (c *Connection) Finished(out session.Outcome) {
	c.monitor.OnGameComplete(c.session.ID(), out)
	c.sendData(MessageTypeFinished, out)
}
