package handlers

import (
	"context"
	"net/http"
	"time"

	"project-collab-api/internal/database"
	"project-collab-api/internal/livequery"
	"project-collab-api/internal/logging"
	"project-collab-api/internal/models"
	"project-collab-api/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// wsClient implements realtime.Client by wrapping a websocket connection.
type wsClient struct {
	conn *websocket.Conn
}

func (c *wsClient) Send(message []byte) bool {
	if c == nil || c.conn == nil {
		return false
	}
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		return false
	}
	return true
}

func (c *wsClient) Close() {
	if c != nil && c.conn != nil {
		_ = c.conn.Close()
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS is already handled at Gin level; allow upgrade from any origin here
		return true
	},
}

// WebSocketHandler upgrades the connection and opens a live query
// session for it: initial snapshots of notifications, tasks, and the
// comments of every visible task, then full-set redeliveries as the
// change feed reports writes. Closing the connection (or logging out)
// releases every subscription the session holds.
// Requires JWT middleware to have set "email" and "role" in context.
func WebSocketHandler(c *gin.Context) {
	email := c.GetString("email")
	role := c.GetString("role")
	if email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authorized"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Logger.Errorf("websocket upgrade error: %v", err)
		return
	}

	client := &wsClient{conn: conn}
	hub := realtime.GetHub()
	hub.Register(email, client)

	ctx, cancel := context.WithCancel(context.Background())
	// Deliveries go through the hub so every open tab of this user gets
	// the same snapshots. Full-set replacement makes repeats harmless.
	session := livequery.NewSession(database.GetDB(), email, models.Role(role), func(message []byte) bool {
		return hub.Broadcast(email, message)
	})
	session.Start(ctx)
	go session.Run(ctx)

	// Heartbeat: send periodic pings; close on error
	pingTicker := time.NewTicker(30 * time.Second)
	defer func() {
		cancel()
		pingTicker.Stop()
		session.Close()
		hub.Unregister(email, client)
		client.Close()
	}()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-pingTicker.C:
				if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second)); err != nil {
					// ping failed; reader loop will exit on next error
					return
				}
			}
		}
	}()

	// Reader loop: drain messages and keep connection alive via pong handler
	conn.SetReadLimit(1024)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			// Normal close or error; exit loop
			return
		}
	}
}
