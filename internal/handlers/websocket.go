package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/chachabrian/mooveit-parcels/internal/services"
)

// WebSocketHandler streams the caller's parcel events.
func WebSocketHandler(hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		services.HandleWebSocket(hub, c.Writer, c.Request, caller(c).Email)
	}
}
