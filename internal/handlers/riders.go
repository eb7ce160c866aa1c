package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/mooveit-parcels/internal/delivery"
	"github.com/chachabrian/mooveit-parcels/internal/models"
)

type RiderInput struct {
	Name       string `json:"name" binding:"required"`
	Phone      string `json:"phone" binding:"required"`
	Age        int    `json:"age"`
	NID        string `json:"nid"`
	Region     string `json:"region"`
	District   string `json:"district" binding:"required"`
	BikeModel  string `json:"bikeModel"`
	BikeNumber string `json:"bikeNumber"`
}

type RiderReviewInput struct {
	Status models.RiderStatus `json:"status" binding:"required"`
	Email  string             `json:"email"`
}

func ApplyRider(riders *delivery.Riders) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input RiderInput
		if !bindJSON(c, &input) {
			return
		}

		rider, err := riders.Apply(c.Request.Context(), &models.Rider{
			Name:       input.Name,
			Phone:      input.Phone,
			Age:        input.Age,
			NID:        input.NID,
			Region:     input.Region,
			District:   input.District,
			BikeModel:  input.BikeModel,
			BikeNumber: input.BikeNumber,
		}, caller(c))
		if err != nil {
			respondError(c, err)
			return
		}
		respondMessage(c, http.StatusCreated, "Rider application submitted", rider)
	}
}

// ListRiders lists riders in status, or in the status query parameter when
// status is empty. district narrows the list in both cases.
func ListRiders(riders *delivery.Riders, status models.RiderStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := status
		if s == "" {
			s = models.RiderStatus(c.Query("status"))
		}
		list, err := riders.List(c.Request.Context(), s, c.Query("district"))
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, list)
	}
}

func SetRiderStatus(riders *delivery.Riders) gin.HandlerFunc {
	return func(c *gin.Context) {
		riderID, ok := paramID(c, "id")
		if !ok {
			return
		}
		var input RiderReviewInput
		if !bindJSON(c, &input) {
			return
		}

		rider, err := riders.SetStatus(c.Request.Context(), riderID, input.Status, input.Email, caller(c))
		if err != nil {
			respondError(c, err)
			return
		}
		respondMessage(c, http.StatusOK, "Rider "+string(rider.Status), rider)
	}
}
