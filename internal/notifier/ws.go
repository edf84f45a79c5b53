package notifier

import (
	"net/http"
	"strconv"

	"auction-hub/internal/auth"
	"auction-hub/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ServeWS upgrades an authenticated request to a websocket and subscribes
// it to the event room given by the event_id query parameter. Without the
// parameter the client only receives global broadcasts.
func ServeWS(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := auth.FromGin(c)
		if !ok {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		room := GlobalRoom
		if raw := c.Query("event_id"); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				c.AbortWithStatus(http.StatusBadRequest)
				return
			}
			room = id
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			utils.Warn("notifier: websocket upgrade failed", map[string]any{"error": err.Error()})
			return
		}

		client := &Client{
			ID:        utils.GenerateID(),
			SessionID: sess.SessionID,
			Room:      room,
			Conn:      conn,
			Send:      make(chan []byte, sendBuffer),
		}
		hub.RegisterClient(client)
		client.StartReadPump(hub)
	}
}
