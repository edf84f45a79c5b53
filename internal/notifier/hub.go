package notifier

import (
	"encoding/json"
	"time"

	"auction-hub/utils"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 256
)

// Client is one websocket connection attached to an event room.
type Client struct {
	ID        string
	SessionID string
	Room      uint64
	Conn      *websocket.Conn
	Send      chan []byte
}

type outbound struct {
	room    uint64
	payload []byte
}

// Hub fans broadcast messages out to clients grouped by event room. A
// single Run goroutine owns the room maps, so registration, removal and
// fan-out never race and messages for one room keep their publish order.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan outbound

	rooms map[uint64]map[*Client]bool

	// onDisconnect releases the session's identity lock when its last
	// connection goes away.
	onDisconnect func(sessionID string)
}

// NewHub creates a hub. onDisconnect may be nil.
func NewHub(onDisconnect func(sessionID string)) *Hub {
	return &Hub{
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		broadcast:    make(chan outbound, sendBuffer),
		rooms:        make(map[uint64]map[*Client]bool),
		onDisconnect: onDisconnect,
	}
}

// Run is the hub's main loop; start it in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case msg := <-h.broadcast:
			h.fanOut(msg)
		}
	}
}

// Publish implements Publisher. The payload is marshaled immediately so
// the broadcast captures the state as committed, then handed to the Run
// loop. If the hub is saturated the message is dropped rather than
// blocking the caller's critical section.
func (h *Hub) Publish(eventID uint64, kind string, payload any) {
	data, err := json.Marshal(Message{Kind: kind, EventID: eventID, Payload: payload})
	if err != nil {
		utils.Error("notifier: failed to marshal broadcast", map[string]any{
			"kind":     kind,
			"event_id": eventID,
			"error":    err.Error(),
		})
		return
	}
	select {
	case h.broadcast <- outbound{room: eventID, payload: data}:
	default:
		utils.Warn("notifier: broadcast buffer full, dropping message", map[string]any{
			"kind":     kind,
			"event_id": eventID,
		})
	}
}

// RegisterClient attaches a client and starts its write pump.
func (h *Hub) RegisterClient(client *Client) {
	h.register <- client
}

func (h *Hub) addClient(client *Client) {
	room := h.rooms[client.Room]
	if room == nil {
		room = make(map[*Client]bool)
		h.rooms[client.Room] = room
	}
	room[client] = true

	utils.Info("notifier: client connected", map[string]any{
		"client_id": client.ID,
		"room":      client.Room,
	})

	go client.writePump()
}

func (h *Hub) removeClient(client *Client) {
	room := h.rooms[client.Room]
	if room == nil || !room[client] {
		return
	}
	delete(room, client)
	if len(room) == 0 {
		delete(h.rooms, client.Room)
	}
	close(client.Send)
	client.Conn.Close()

	if h.onDisconnect != nil && client.SessionID != "" {
		h.onDisconnect(client.SessionID)
	}

	utils.Info("notifier: client disconnected", map[string]any{
		"client_id": client.ID,
		"room":      client.Room,
	})
}

func (h *Hub) fanOut(msg outbound) {
	if msg.room == GlobalRoom {
		for _, room := range h.rooms {
			h.deliver(room, msg.payload)
		}
		return
	}
	h.deliver(h.rooms[msg.room], msg.payload)
}

func (h *Hub) deliver(room map[*Client]bool, payload []byte) {
	for client := range room {
		select {
		case client.Send <- payload:
		default:
			// Slow client: drop it instead of stalling the room.
			h.removeClient(client)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains client frames until the connection drops, then
// unregisters the client. Inbound frames carry no commands; the command
// surface is HTTP.
func (c *Client) readPump(unregister chan<- *Client) {
	defer func() {
		unregister <- c
	}()

	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				utils.Warn("notifier: websocket read error", map[string]any{
					"client_id": c.ID,
					"error":     err.Error(),
				})
			}
			return
		}
	}
}

// StartReadPump starts the client's read loop.
func (c *Client) StartReadPump(h *Hub) {
	go c.readPump(h.unregister)
}
