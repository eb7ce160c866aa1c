package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/mooveit-parcels/internal/apperr"
	"github.com/chachabrian/mooveit-parcels/internal/middleware"
	"github.com/chachabrian/mooveit-parcels/internal/models"
)

// envelope is the body of every API response.
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, envelope{Success: true, Data: data})
}

func respondMessage(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

// respondError writes err as an envelope. Internal details go to the request
// log, never to the client.
func respondError(c *gin.Context, err error) {
	if apperr.KindOf(err) == apperr.KindInternal {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(apperr.HTTPStatus(err), envelope{
		Success: false,
		Message: apperr.PublicMessage(err),
	})
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, apperr.BadRequest("invalid request body: %v", err))
		return false
	}
	return true
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondError(c, apperr.BadRequest("invalid %s", name))
		return 0, false
	}
	return uint(id), true
}

// caller returns the authenticated identity. Routes using it are always
// mounted behind middleware.Authenticate.
func caller(c *gin.Context) models.Identity {
	id, _ := middleware.CurrentIdentity(c)
	return id
}

// scopedEmail returns the email a listing is restricted to: the caller's own
// unless the caller is an admin, who may pick any or none.
func scopedEmail(id models.Identity, requested string) string {
	if id.IsAdmin() {
		return requested
	}
	return id.Email
}

type pinger interface {
	Ping(ctx context.Context) error
}

func Healthz(db pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, envelope{Success: false, Message: "database unavailable"})
			return
		}
		respond(c, http.StatusOK, gin.H{"status": "ok"})
	}
}
