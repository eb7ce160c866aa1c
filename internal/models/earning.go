package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Rider payout rates as a share of the parcel cost.
var (
	SameDistrictRate  = decimal.RequireFromString("0.8")
	CrossDistrictRate = decimal.RequireFromString("0.3")
)

// RiderEarning computes what a rider earns for delivering a parcel.
func RiderEarning(cost decimal.Decimal, senderDistrict, receiverDistrict string) decimal.Decimal {
	rate := CrossDistrictRate
	if sameDistrict(senderDistrict, receiverDistrict) {
		rate = SameDistrictRate
	}
	return cost.Mul(rate)
}

func sameDistrict(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
