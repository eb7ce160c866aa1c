package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/mooveit-parcels/internal/delivery"
)

type CashoutInput struct {
	ParcelID uint `json:"parcelId" binding:"required"`
}

func Cashout(cashouts *delivery.Cashouts) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CashoutInput
		if !bindJSON(c, &input) {
			return
		}

		cashout, err := cashouts.Cashout(c.Request.Context(), input.ParcelID, caller(c))
		if err != nil {
			respondError(c, err)
			return
		}
		respondMessage(c, http.StatusCreated, "Cashout recorded", cashout)
	}
}

// ListCashouts shows riders their own cashouts; admins may pass rider_email.
func ListCashouts(cashouts *delivery.Cashouts) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := cashouts.List(c.Request.Context(), scopedEmail(caller(c), c.Query("rider_email")))
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, list)
	}
}

func RiderEarnings(cashouts *delivery.Cashouts) gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := cashouts.Summary(c.Request.Context(), caller(c).Email)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, summary)
	}
}
