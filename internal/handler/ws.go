package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/05Ashutosh/food-recipe/internal/logging"
	"github.com/05Ashutosh/food-recipe/internal/middleware"
	"github.com/05Ashutosh/food-recipe/internal/realtime"
)

// WSHandler upgrades GET /ws to a live notification connection.
type WSHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
}

// NewWSHandler accepts upgrades from the given browser origins. Requests
// without an Origin header (non-browser clients) are allowed.
func NewWSHandler(hub *realtime.Hub, origins []string) *WSHandler {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[strings.TrimRight(o, "/")] = true
	}
	return &WSHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || allowed["*"] {
					return true
				}
				if u, err := url.Parse(origin); err == nil && allowed[u.Scheme+"://"+u.Host] {
					return true
				}
				return false
			},
		},
	}
}

// Serve upgrades the connection. The client may only join the room of the
// session user; anonymous connections cannot join.
func (h *WSHandler) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already written the error response
		logging.Ctx(c.Request().Context()).Debug().Err(err).Msg("websocket upgrade rejected")
		return nil
	}
	if err := realtime.NewClient(h.hub, conn, middleware.UserID(c)).Start(); err != nil {
		logging.Ctx(c.Request().Context()).Warn().Err(err).Msg("websocket client not started")
	}
	return nil
}
