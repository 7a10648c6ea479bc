// internal/interfaces/websocket/client.go
package websocket

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/technexus/storefront-backend/internal/config"
	"github.com/technexus/storefront-backend/internal/pkg/metrics"
	"golang.org/x/time/rate"
)

// Client is one authenticated connection. Writes happen only in writePump.
type Client struct {
	id      uuid.UUID
	isAdmin bool

	conn    *websocket.Conn
	send    chan []byte
	done    chan struct{}
	once    sync.Once
	limiter *rate.Limiter
	cfg     config.ChatConfig
	log     *logrus.Entry

	onPong func(*Client)
}

func newClient(id uuid.UUID, isAdmin bool, conn *websocket.Conn, cfg config.ChatConfig, log *logrus.Entry) *Client {
	return &Client{
		id:      id,
		isAdmin: isAdmin,
		conn:    conn,
		send:    make(chan []byte, cfg.SendBuffer),
		done:    make(chan struct{}),
		limiter: rate.NewLimiter(rate.Limit(cfg.InboundPerSecond), cfg.InboundBurst),
		cfg:     cfg,
		log:     log,
	}
}

// ID is the connected user
func (c *Client) ID() uuid.UUID { return c.id }

// IsAdmin is the role resolved at connect time
func (c *Client) IsAdmin() bool { return c.isAdmin }

// enqueue never blocks. A full buffer drops the payload.
func (c *Client) enqueue(payload []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- payload:
		return true
	default:
		metrics.ChatFrames.WithLabelValues("outbound", "dropped").Inc()
		c.log.Warn("send buffer full, dropping frame")
		return false
	}
}

func (c *Client) stop() {
	c.once.Do(func() { close(c.done) })
}

// shutdown asks the peer to go away; the pumps finish the teardown
func (c *Client) shutdown() {
	if c.conn != nil {
		deadline := time.Now().Add(c.cfg.WriteWait)
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down"), deadline)
	}
	c.stop()
}

// readPump reads frames until the peer goes away, handing each to handle
func (c *Client) readPump(handle func(*Client, []byte)) {
	defer c.stop()

	c.conn.SetReadLimit(c.cfg.MaxMessageBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		if c.onPong != nil {
			c.onPong(c)
		}
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				c.log.WithError(err).Warn("websocket read error")
			}
			return
		}
		if !c.limiter.Allow() {
			metrics.ChatFrames.WithLabelValues("inbound", "throttled").Inc()
			c.log.Warn("inbound frame rate exceeded, dropping frame")
			continue
		}
		handle(c, data)
	}
}

// writePump drains the send buffer and keeps the connection alive with pings
func (c *Client) writePump() {
	ticker := time.NewTicker(c.cfg.PongWait * 9 / 10)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.log.WithError(err).Debug("websocket write failed")
				c.stop()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.stop()
				return
			}
		case <-c.done:
			return
		}
	}
}
