package models

import (
	"time"

	"gorm.io/gorm"
)

// OTPPurpose defines what a one-time code unlocks.
type OTPPurpose string

const (
	OTPPasswordSet OTPPurpose = "password_set"
)

// MaxOTPAttempts is how many wrong guesses burn a code.
const MaxOTPAttempts = 5

// OTP is the latest one-time code sent to an email for a purpose. Only the
// bcrypt hash of the code is stored.
type OTP struct {
	gorm.Model
	Email     string     `json:"email" gorm:"column:email;uniqueIndex:idx_otp_email_purpose;not null"`
	Purpose   OTPPurpose `json:"purpose" gorm:"column:purpose;uniqueIndex:idx_otp_email_purpose;not null"`
	CodeHash  string     `json:"-" gorm:"column:code_hash;not null"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"column:expires_at"`
	Attempts  int        `json:"attempts" gorm:"column:attempts;not null"`
	Used      bool       `json:"used" gorm:"column:used;not null"`
}

func (OTP) TableName() string {
	return "otps"
}

// IsValid checks if the OTP can still be redeemed at now.
func (o *OTP) IsValid(now time.Time) bool {
	return !o.Used && o.Attempts < MaxOTPAttempts && now.Before(o.ExpiresAt)
}
