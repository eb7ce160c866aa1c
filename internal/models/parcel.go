package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Parcel is a shipment tracked from creation through delivery.
type Parcel struct {
	gorm.Model
	TrackingID  string          `json:"trackingId" gorm:"column:tracking_id;uniqueIndex;not null"`
	ParcelName  string          `json:"parcelName" gorm:"column:parcel_name;not null"`
	ParcelType  string          `json:"parcelType" gorm:"column:parcel_type"`
	Weight      decimal.Decimal `json:"weight" gorm:"type:numeric(10,2);default:0"`
	Cost        decimal.Decimal `json:"cost" gorm:"type:numeric(12,2);not null"`
	CreatedBy   string          `json:"createdBy" gorm:"column:created_by;index;not null"`
	ParcelImage string          `json:"parcelImage,omitempty" gorm:"column:parcel_image"`

	SenderName       string `json:"senderName" gorm:"column:sender_name"`
	SenderPhone      string `json:"senderPhone" gorm:"column:sender_phone"`
	SenderRegion     string `json:"senderRegion" gorm:"column:sender_region"`
	SenderDistrict   string `json:"senderDistrict" gorm:"column:sender_district;not null"`
	SenderAddress    string `json:"senderAddress" gorm:"column:sender_address"`
	ReceiverName     string `json:"receiverName" gorm:"column:receiver_name"`
	ReceiverPhone    string `json:"receiverPhone" gorm:"column:receiver_phone"`
	ReceiverRegion   string `json:"receiverRegion" gorm:"column:receiver_region"`
	ReceiverDistrict string `json:"receiverDistrict" gorm:"column:receiver_district;not null"`
	ReceiverAddress  string `json:"receiverAddress" gorm:"column:receiver_address"`

	PaymentStatus  PaymentStatus  `json:"paymentStatus" gorm:"column:payment_status;index;not null;default:'unpaid'"`
	DeliveryStatus DeliveryStatus `json:"deliveryStatus" gorm:"column:delivery_status;index;not null;default:'pending'"`
	PaidAt         *time.Time     `json:"paidAt,omitempty" gorm:"column:paid_at"`

	// Rider fields are copied from the rider record at assignment time.
	RiderID     *uint      `json:"riderId,omitempty" gorm:"column:rider_id;index"`
	RiderName   string     `json:"riderName,omitempty" gorm:"column:rider_name"`
	RiderEmail  string     `json:"riderEmail,omitempty" gorm:"column:rider_email;index"`
	RiderPhone  string     `json:"riderPhone,omitempty" gorm:"column:rider_phone"`
	AssignedAt  *time.Time `json:"assignedAt,omitempty" gorm:"column:assigned_at"`
	PickedAt    *time.Time `json:"pickedAt,omitempty" gorm:"column:picked_at"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty" gorm:"column:delivered_at"`

	RiderEarning decimal.NullDecimal `json:"riderEarning" gorm:"column:rider_earning;type:numeric(12,2)"`
}

// TableName specifies the table name
func (Parcel) TableName() string {
	return "parcels"
}

// AssignedTo reports whether the parcel is currently bound to the rider with this email.
func (p *Parcel) AssignedTo(riderEmail string) bool {
	return p.RiderID != nil && p.RiderEmail != "" && p.RiderEmail == riderEmail
}

// ParcelFilter narrows a parcel listing. Empty fields match everything.
type ParcelFilter struct {
	CreatedBy      string
	RiderEmail     string
	PaymentStatus  PaymentStatus
	DeliveryStatus DeliveryStatus
}
