package models

import (
	"time"

	"gorm.io/gorm"
)

// Rider is a delivery rider application. Only approved riders can be assigned parcels.
type Rider struct {
	gorm.Model
	Name       string      `json:"name" gorm:"not null"`
	Email      string      `json:"email" gorm:"uniqueIndex;not null"`
	Phone      string      `json:"phone" gorm:"not null"`
	Age        int         `json:"age,omitempty"`
	NID        string      `json:"nid,omitempty" gorm:"column:nid"`
	Region     string      `json:"region" gorm:"index"`
	District   string      `json:"district" gorm:"index;not null"`
	BikeModel  string      `json:"bikeModel,omitempty" gorm:"column:bike_model"`
	BikeNumber string      `json:"bikeNumber,omitempty" gorm:"column:bike_number"`
	Status     RiderStatus `json:"status" gorm:"index;not null;default:'pending'"`
	ReviewedAt *time.Time  `json:"reviewedAt,omitempty" gorm:"column:reviewed_at"`
}

// TableName specifies the table name
func (Rider) TableName() string {
	return "riders"
}
