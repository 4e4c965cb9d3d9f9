package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ncobase/taskdesk/biz/task/structs"
	"github.com/ncobase/taskdesk/logging/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type client struct {
	id    string
	topic string
	conn  *websocket.Conn
	send  chan []byte
}

// Broadcaster pushes notifications to the websocket clients subscribed to
// their topic.
type Broadcaster struct {
	mu     sync.RWMutex
	topics map[string]map[*client]struct{}
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{topics: make(map[string]map[*client]struct{})}
}

// Name implements Sink.
func (b *Broadcaster) Name() string { return SinkWebsocket }

// Deliver implements Sink. A client whose send buffer is full is dropped.
func (b *Broadcaster) Deliver(ctx context.Context, n structs.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}

	b.mu.RLock()
	var slow []*client
	for c := range b.topics[n.Topic] {
		select {
		case c.send <- payload:
		default:
			slow = append(slow, c)
		}
	}
	b.mu.RUnlock()

	for _, c := range slow {
		logger.Warn(ctx, "Dropping slow websocket client", "client_id", c.id, "topic", c.topic)
		b.unregister(c)
	}
	return nil
}

// Count returns the number of clients subscribed to topic.
func (b *Broadcaster) Count(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}

// Serve upgrades the request and subscribes the connection to the topic
// returned by topic. An empty topic rejects the request.
func (b *Broadcaster) Serve(topic func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		t := topic(c)
		if t == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Error(c.Request.Context(), "Failed to upgrade connection", "error", err)
			return
		}

		cl := &client{
			id:    uuid.New().String(),
			topic: t,
			conn:  conn,
			send:  make(chan []byte, sendBuffer),
		}
		b.register(cl)
		logger.Debug(c.Request.Context(), "Websocket client connected", "client_id", cl.id, "topic", t)

		go b.writePump(cl)
		go b.readPump(cl)
	}
}

func (b *Broadcaster) register(c *client) {
	b.mu.Lock()
	defer b.mu.Unlock()
	clients, ok := b.topics[c.topic]
	if !ok {
		clients = make(map[*client]struct{})
		b.topics[c.topic] = clients
	}
	clients[c] = struct{}{}
}

func (b *Broadcaster) unregister(c *client) {
	b.mu.Lock()
	defer b.mu.Unlock()
	clients, ok := b.topics[c.topic]
	if !ok {
		return
	}
	if _, ok := clients[c]; !ok {
		return
	}
	delete(clients, c)
	close(c.send)
	if len(clients) == 0 {
		delete(b.topics, c.topic)
	}
}

// Close disconnects every client.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for topic, clients := range b.topics {
		for c := range clients {
			close(c.send)
		}
		delete(b.topics, topic)
	}
}

// readPump only services control frames; clients do not send messages.
func (b *Broadcaster) readPump(c *client) {
	defer func() {
		b.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn(context.Background(), "Websocket read error", "client_id", c.id, "error", err)
			}
			return
		}
	}
}

func (b *Broadcaster) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Warn(context.Background(), "Websocket write error", "client_id", c.id, "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
