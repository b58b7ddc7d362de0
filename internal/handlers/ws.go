package handlers

import (
	"log"
	"net/http"

	"github.com/coder/websocket"

	"github.com/Subcero232117/voice/internal/security"
	"github.com/Subcero232117/voice/internal/services"
)

// WSHandler upgrades HTTP requests and hands the connections to the hub.
type WSHandler struct {
	hub     *services.Hub
	origins *security.OriginValidator
}

// NewWSHandler creates the WebSocket endpoint handler.
func NewWSHandler(hub *services.Hub, origins *security.OriginValidator) *WSHandler {
	return &WSHandler{
		hub:     hub,
		origins: origins,
	}
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, h.origins.GetAcceptOptions())
	if err != nil {
		log.Printf("websocket accept failed: %v", err)
		return
	}

	client := services.NewClient(conn, h.hub)
	h.hub.Attach(client)
}
