package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/seenimoa/indiquant/pkg/models"
	"github.com/seenimoa/indiquant/pkg/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS middleware governs browser origins
	},
}

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	sendBuffer = 256
)

// Message types.
const (
	MsgRecommendation = "recommendation"
	MsgSubscribe      = "subscribe"
	MsgSubscribed     = "subscribed"
	MsgPing           = "ping"
	MsgPong           = "pong"
)

// WSMessage is a message sent over WebSocket connections.
type WSMessage struct {
	Type   string      `json:"type"`
	Ticker string      `json:"ticker,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

// subscribeData is the payload of a subscribe message. An empty list
// subscribes to every ticker.
type subscribeData struct {
	Tickers []string `json:"tickers"`
}

// WSClient represents a single WebSocket connection.
type WSClient struct {
	hub  *WSHub
	send chan WSMessage

	mu      sync.RWMutex
	tickers map[string]bool // nil means all
}

func newWSClient(hub *WSHub) *WSClient {
	return &WSClient{hub: hub, send: make(chan WSMessage, sendBuffer)}
}

// wants reports whether the client subscribed to msg's ticker.
func (c *WSClient) wants(msg WSMessage) bool {
	if msg.Ticker == "" {
		return true
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tickers == nil || c.tickers[msg.Ticker]
}

func (c *WSClient) subscribe(tickers []string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(tickers) == 0 {
		c.tickers = nil
		return []string{}
	}
	c.tickers = make(map[string]bool, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		t = utils.NormalizeTicker(t)
		if t == "" || c.tickers[t] {
			continue
		}
		c.tickers[t] = true
		out = append(out, t)
	}
	return out
}

// WSHub manages WebSocket connections and message broadcasting.
type WSHub struct {
	mu        sync.RWMutex
	clients   map[*WSClient]bool
	closed    bool
	broadcast chan WSMessage
	log       zerolog.Logger
}

// NewWSHub creates a new WebSocket hub. Run must be started before
// clients connect.
func NewWSHub(log zerolog.Logger) *WSHub {
	return &WSHub{
		clients:   make(map[*WSClient]bool),
		broadcast: make(chan WSMessage, sendBuffer),
		log:       log.With().Str("component", "ws").Logger(),
	}
}

// Run is the hub event loop. It returns when ctx is done, closing every
// client.
func (h *WSHub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			h.closed = true
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			return
		case msg := <-h.broadcast:
			var slow []*WSClient
			h.mu.RLock()
			for c := range h.clients {
				if !c.wants(msg) {
					continue
				}
				select {
				case c.send <- msg:
				default:
					slow = append(slow, c)
				}
			}
			h.mu.RUnlock()
			for _, c := range slow {
				h.log.Warn().Msg("dropping slow websocket client")
				h.drop(c)
			}
		}
	}
}

// add registers c. It reports false once the hub has stopped.
func (h *WSHub) add(c *WSClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = true
	return true
}

func (h *WSHub) drop(c *WSClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Broadcast queues msg for every subscribed client. It never blocks; the
// message is dropped when the queue is full.
func (h *WSHub) Broadcast(msg WSMessage) {
	select {
	case h.broadcast <- msg:
	default:
		h.log.Warn().Str("type", msg.Type).Msg("broadcast queue full, message dropped")
	}
}

// Publish broadcasts a freshly scored recommendation.
func (h *WSHub) Publish(rec *models.Recommendation) {
	if rec == nil {
		return
	}
	h.Broadcast(WSMessage{Type: MsgRecommendation, Ticker: rec.Ticker, Data: rec})
}

// ClientCount returns the number of connected WebSocket clients.
func (h *WSHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// handleWebSocket upgrades the connection and streams recommendations.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := newWSClient(s.wsHub)
	if !s.wsHub.add(client) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	go wsWritePump(conn, client)
	go wsReadPump(conn, client)
}

// wsReadPump handles client control messages until the connection closes.
func wsReadPump(conn *websocket.Conn, client *WSClient) {
	defer func() {
		client.hub.drop(client)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				client.hub.log.Debug().Err(err).Msg("websocket read error")
			}
			return
		}

		var msg struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}

		var reply WSMessage
		switch msg.Type {
		case MsgSubscribe:
			var sub subscribeData
			if len(msg.Data) > 0 {
				_ = json.Unmarshal(msg.Data, &sub)
			}
			reply = WSMessage{Type: MsgSubscribed, Data: subscribeData{Tickers: client.subscribe(sub.Tickers)}}
		case MsgPing:
			reply = WSMessage{Type: MsgPong}
		default:
			continue
		}
		if !client.reply(reply) {
			return
		}
	}
}

// reply queues a direct answer to the client. It reports false when the
// client has been dropped by the hub. The hub only closes send while
// holding its write lock.
func (c *WSClient) reply(msg WSMessage) bool {
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if !c.hub.clients[c] {
		return false
	}
	select {
	case c.send <- msg:
	default:
	}
	return true
}

// wsWritePump writes queued messages and keepalive pings to the peer.
func wsWritePump(conn *websocket.Conn, client *WSClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
