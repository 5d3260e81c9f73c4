package handlers

import (
	"log"
	"net/http"

	"freshcart/internal/middlewares"
	"freshcart/internal/models"
	"freshcart/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The browser client is served from another origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WSHandler struct {
	hub       *ws.Hub
	jwtSecret string
}

func NewWSHandler(hub *ws.Hub, jwtSecret string) *WSHandler {
	return &WSHandler{hub: hub, jwtSecret: jwtSecret}
}

// Serve authenticates the handshake, upgrades the connection and registers
// it with the hub. The bearer credential rides in the "token" query
// parameter because browsers cannot set headers on websocket connects.
func (h *WSHandler) Serve(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	claims, err := middlewares.ParseToken(token, h.jwtSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws: upgrade failed for user %d: %v", claims.UserID, err)
		return
	}

	session := ws.Session{
		UserID:  claims.UserID,
		Role:    models.UserRole(claims.Role),
		StoreID: claims.StoreID,
	}
	client := ws.NewClient(h.hub, conn, session)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
