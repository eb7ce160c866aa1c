package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is an append-only record of a completed card payment.
type Payment struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	ParcelID      uint            `json:"parcelId" gorm:"column:parcel_id;uniqueIndex;not null"`
	Email         string          `json:"email" gorm:"index;not null"`
	TransactionID string          `json:"transactionId" gorm:"column:transaction_id;uniqueIndex;not null"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:numeric(12,2);not null"`
	Currency      string          `json:"currency" gorm:"not null;default:'usd'"`
	Method        string          `json:"method" gorm:"not null;default:'card'"`
	PaidAt        time.Time       `json:"paidAt" gorm:"column:paid_at;not null"`
}

// TableName specifies the table name
func (Payment) TableName() string {
	return "payments"
}

// Cashout records a rider's claim of the earning for one delivered parcel.
type Cashout struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	ParcelID    uint            `json:"parcelId" gorm:"column:parcel_id;uniqueIndex;not null"`
	RiderEmail  string          `json:"riderEmail" gorm:"column:rider_email;index;not null"`
	RiderName   string          `json:"riderName" gorm:"column:rider_name"`
	ParcelName  string          `json:"parcelName" gorm:"column:parcel_name"`
	TrackingID  string          `json:"trackingId" gorm:"column:tracking_id"`
	Earning     decimal.Decimal `json:"earning" gorm:"type:numeric(12,2);not null"`
	CashedOutAt time.Time       `json:"cashedOutAt" gorm:"column:cashed_out_at;not null"`
}

// TableName specifies the table name
func (Cashout) TableName() string {
	return "cashouts"
}

// TrackingLog is one entry of the append-only event log of a tracking id.
type TrackingLog struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	TrackingID string    `json:"trackingId" gorm:"column:tracking_id;index;not null"`
	ParcelID   *uint     `json:"parcelId,omitempty" gorm:"column:parcel_id;index"`
	Status     string    `json:"status" gorm:"not null"`
	Message    string    `json:"message"`
	UpdatedBy  string    `json:"updatedBy" gorm:"column:updated_by"`
	CreatedAt  time.Time `json:"createdAt" gorm:"index"`
}

// TableName specifies the table name
func (TrackingLog) TableName() string {
	return "tracking_logs"
}

// EarningSummary totals a rider's delivered and cashed out earnings.
type EarningSummary struct {
	RiderEmail     string          `json:"riderEmail"`
	Delivered      int64           `json:"delivered"`
	TotalEarned    decimal.Decimal `json:"totalEarned"`
	TotalCashedOut decimal.Decimal `json:"totalCashedOut"`
	Pending        decimal.Decimal `json:"pending"`
}
