package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/chachabrian/mooveit-parcels/internal/apperr"
	"github.com/chachabrian/mooveit-parcels/internal/delivery"
	"github.com/chachabrian/mooveit-parcels/internal/models"
)

type ParcelInput struct {
	ParcelName       string          `json:"parcelName" binding:"required"`
	ParcelType       string          `json:"parcelType"`
	Weight           decimal.Decimal `json:"weight"`
	Cost             decimal.Decimal `json:"cost"`
	SenderName       string          `json:"senderName"`
	SenderPhone      string          `json:"senderPhone"`
	SenderRegion     string          `json:"senderRegion"`
	SenderDistrict   string          `json:"senderDistrict" binding:"required"`
	SenderAddress    string          `json:"senderAddress"`
	ReceiverName     string          `json:"receiverName"`
	ReceiverPhone    string          `json:"receiverPhone"`
	ReceiverRegion   string          `json:"receiverRegion"`
	ReceiverDistrict string          `json:"receiverDistrict" binding:"required"`
	ReceiverAddress  string          `json:"receiverAddress"`
}

type AssignInput struct {
	RiderID uint `json:"riderId" binding:"required"`
}

type RiderStatusInput struct {
	DeliveryStatus models.DeliveryStatus `json:"delivery_status" binding:"required"`
}

func CreateParcel(lifecycle *delivery.Lifecycle) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ParcelInput
		if !bindJSON(c, &input) {
			return
		}

		parcel, err := lifecycle.Create(c.Request.Context(), &models.Parcel{
			ParcelName:       input.ParcelName,
			ParcelType:       input.ParcelType,
			Weight:           input.Weight,
			Cost:             input.Cost,
			SenderName:       input.SenderName,
			SenderPhone:      input.SenderPhone,
			SenderRegion:     input.SenderRegion,
			SenderDistrict:   input.SenderDistrict,
			SenderAddress:    input.SenderAddress,
			ReceiverName:     input.ReceiverName,
			ReceiverPhone:    input.ReceiverPhone,
			ReceiverRegion:   input.ReceiverRegion,
			ReceiverDistrict: input.ReceiverDistrict,
			ReceiverAddress:  input.ReceiverAddress,
		}, caller(c))
		if err != nil {
			respondError(c, err)
			return
		}
		respondMessage(c, http.StatusCreated, "Parcel created", parcel)
	}
}

// ListParcels lists the caller's parcels; admins may list anyone's, or all.
func ListParcels(lifecycle *delivery.Lifecycle) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := caller(c)
		parcels, err := lifecycle.List(c.Request.Context(), models.ParcelFilter{
			CreatedBy:      scopedEmail(id, c.Query("email")),
			PaymentStatus:  models.PaymentStatus(c.Query("payment_status")),
			DeliveryStatus: models.DeliveryStatus(c.Query("delivery_status")),
		})
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, parcels)
	}
}

// GetParcel is visible to the creator, the assigned rider and admins.
func GetParcel(lifecycle *delivery.Lifecycle) gin.HandlerFunc {
	return func(c *gin.Context) {
		parcelID, ok := paramID(c, "id")
		if !ok {
			return
		}
		parcel, err := lifecycle.Get(c.Request.Context(), parcelID)
		if err != nil {
			respondError(c, err)
			return
		}
		id := caller(c)
		if parcel.CreatedBy != id.Email && !parcel.AssignedTo(id.Email) && !id.IsAdmin() {
			respondError(c, apperr.NotFound("parcel %d not found", parcelID))
			return
		}
		respond(c, http.StatusOK, parcel)
	}
}

func DeleteParcel(lifecycle *delivery.Lifecycle) gin.HandlerFunc {
	return func(c *gin.Context) {
		parcelID, ok := paramID(c, "id")
		if !ok {
			return
		}
		if err := lifecycle.Delete(c.Request.Context(), parcelID, caller(c)); err != nil {
			respondError(c, err)
			return
		}
		respondMessage(c, http.StatusOK, "Parcel deleted", nil)
	}
}

func UploadParcelImage(lifecycle *delivery.Lifecycle) gin.HandlerFunc {
	return func(c *gin.Context) {
		parcelID, ok := paramID(c, "id")
		if !ok {
			return
		}
		file, err := c.FormFile("parcelImage")
		if err != nil {
			respondError(c, apperr.BadRequest("parcelImage file is required"))
			return
		}

		parcel, err := lifecycle.AttachImage(c.Request.Context(), parcelID, file, caller(c))
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, parcel)
	}
}

func AssignParcel(lifecycle *delivery.Lifecycle) gin.HandlerFunc {
	return func(c *gin.Context) {
		parcelID, ok := paramID(c, "id")
		if !ok {
			return
		}
		var input AssignInput
		if !bindJSON(c, &input) {
			return
		}

		parcel, err := lifecycle.Assign(c.Request.Context(), parcelID, input.RiderID, caller(c))
		if err != nil {
			respondError(c, err)
			return
		}
		respondMessage(c, http.StatusOK, "Rider assigned", parcel)
	}
}

func PickParcel(lifecycle *delivery.Lifecycle) gin.HandlerFunc {
	return func(c *gin.Context) {
		parcelID, ok := paramID(c, "id")
		if !ok {
			return
		}
		parcel, err := lifecycle.Pick(c.Request.Context(), parcelID, caller(c))
		if err != nil {
			respondError(c, err)
			return
		}
		respondMessage(c, http.StatusOK, "Parcel picked up", parcel)
	}
}

// ListRiderParcels lists the parcels assigned to the calling rider.
func ListRiderParcels(lifecycle *delivery.Lifecycle) gin.HandlerFunc {
	return func(c *gin.Context) {
		parcels, err := lifecycle.List(c.Request.Context(), models.ParcelFilter{
			RiderEmail:     caller(c).Email,
			DeliveryStatus: models.DeliveryStatus(c.Query("delivery_status")),
		})
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, parcels)
	}
}

func UpdateRiderParcelStatus(lifecycle *delivery.Lifecycle) gin.HandlerFunc {
	return func(c *gin.Context) {
		parcelID, ok := paramID(c, "id")
		if !ok {
			return
		}
		var input RiderStatusInput
		if !bindJSON(c, &input) {
			return
		}

		parcel, err := lifecycle.UpdateRiderStatus(c.Request.Context(), parcelID, caller(c), input.DeliveryStatus)
		if err != nil {
			respondError(c, err)
			return
		}
		respondMessage(c, http.StatusOK, "Delivery status updated", parcel)
	}
}
