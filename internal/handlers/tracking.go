package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/mooveit-parcels/internal/delivery"
	"github.com/chachabrian/mooveit-parcels/internal/models"
)

type TrackingInput struct {
	TrackingID string `json:"trackingId" binding:"required"`
	Status     string `json:"status" binding:"required"`
	Message    string `json:"message"`
}

func AppendTracking(tracking *delivery.Tracking) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input TrackingInput
		if !bindJSON(c, &input) {
			return
		}

		entry, err := tracking.Append(c.Request.Context(), &models.TrackingLog{
			TrackingID: input.TrackingID,
			Status:     input.Status,
			Message:    input.Message,
		}, caller(c))
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusCreated, entry)
	}
}

// TrackingHistory is public: the tracking id is the customer's only credential.
func TrackingHistory(tracking *delivery.Tracking) gin.HandlerFunc {
	return func(c *gin.Context) {
		history, err := tracking.History(c.Request.Context(), c.Param("trackingId"))
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, history)
	}
}
