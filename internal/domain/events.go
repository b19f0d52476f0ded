package domain

import "time"

// NotificationType names a carrier-facing notification
type NotificationType string

const (
	NotifyRequestToCarrier         NotificationType = "requestToCarrier"
	NotifyRejectShippingRequest    NotificationType = "rejectShippingRequest"
	NotifyCancelShipping           NotificationType = "cancelShipping"
	NotifyAddOrdersToShipping      NotificationType = "addOrdersToShipping"
	NotifyRemoveOrdersFromShipping NotificationType = "removeOrdersFromShipping"
)

// Notification is delivered after the enclosing change is committed.
// Delivery failure never undoes the change.
type Notification struct {
	Type           NotificationType
	ShippingID     string
	ShippingNumber string
	CarrierID      string
	OrderIDs       []string
	Reason         string
}

// HistoryEntry is one append-only audit line
type HistoryEntry struct {
	ID         string    `bson:"_id" json:"id"`
	EntityID   string    `bson:"entityId" json:"entityId"`
	MessageKey string    `bson:"messageKey" json:"messageKey"`
	Args       []string  `bson:"args,omitempty" json:"args,omitempty"`
	UserID     string    `bson:"userId,omitempty" json:"userId,omitempty"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}
