package models

// DeliveryStatus is the lifecycle stage of a parcel.
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliveryAssigned  DeliveryStatus = "assigned"
	DeliveryOnTheWay  DeliveryStatus = "on_the_way"
	DeliveryDelivered DeliveryStatus = "delivered"
)

// deliverySources maps every reachable status to the only status it may be entered from.
var deliverySources = map[DeliveryStatus]DeliveryStatus{
	DeliveryAssigned:  DeliveryPending,
	DeliveryOnTheWay:  DeliveryAssigned,
	DeliveryDelivered: DeliveryOnTheWay,
}

func (s DeliveryStatus) IsValid() bool {
	switch s {
	case DeliveryPending, DeliveryAssigned, DeliveryOnTheWay, DeliveryDelivered:
		return true
	default:
		return false
	}
}

// SourceOf returns the status a parcel must be in to move to target.
// ok is false when no transition leads to target.
func SourceOf(target DeliveryStatus) (source DeliveryStatus, ok bool) {
	source, ok = deliverySources[target]
	return source, ok
}

// CanTransition reports whether from -> to is an edge of the delivery state machine.
func (s DeliveryStatus) CanTransition(to DeliveryStatus) bool {
	src, ok := deliverySources[to]
	return ok && src == s
}

func (s DeliveryStatus) String() string { return string(s) }

// PaymentStatus tracks whether a parcel has been paid for.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

func (s PaymentStatus) IsValid() bool {
	return s == PaymentUnpaid || s == PaymentPaid
}

// RiderStatus is the review state of a rider application.
type RiderStatus string

const (
	RiderPending  RiderStatus = "pending"
	RiderApproved RiderStatus = "approved"
	RiderRejected RiderStatus = "rejected"
)

var riderTransitions = map[RiderStatus][]RiderStatus{
	RiderPending:  {RiderApproved, RiderRejected},
	RiderApproved: {RiderRejected},
	RiderRejected: {RiderApproved},
}

func (s RiderStatus) IsValid() bool {
	switch s {
	case RiderPending, RiderApproved, RiderRejected:
		return true
	default:
		return false
	}
}

// CanTransition reports whether an admin may move a rider from s to next.
func (s RiderStatus) CanTransition(next RiderStatus) bool {
	for _, allowed := range riderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Role is the authorization role of an identity.
type Role string

const (
	RoleUser  Role = "user"
	RoleRider Role = "rider"
	RoleAdmin Role = "admin"
)

func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleRider || r == RoleAdmin
}
