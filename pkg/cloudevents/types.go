package cloudevents

import (
	"time"
)

// Event types emitted by the TMS core. Notification events are consumed by
// the notification service; they never block the action that raised them.
const (
	RequestToCarrier            = "tms.notification.request-to-carrier"
	RejectShippingRequest       = "tms.notification.reject-shipping-request"
	CancelShipping              = "tms.notification.cancel-shipping"
	AddOrdersToShipping         = "tms.notification.add-orders-to-shipping"
	RemoveOrdersFromShipping    = "tms.notification.remove-orders-from-shipping"
	ShippingCreated             = "tms.shipping.created"
	ShippingStatusChanged       = "tms.shipping.status-changed"
	OrderStatusChanged          = "tms.order.status-changed"
	PoolingReservationBooked    = "tms.pooling.reservation-booked"
	PoolingReservationCancelled = "tms.pooling.reservation-cancelled"
)

// SourceTMS is the CloudEvents source of every event raised by this service
const SourceTMS = "/tms/core"

// TMSCloudEvent is a CloudEvents v1.0 envelope
type TMSCloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	Type            string      `json:"type"`
	Source          string      `json:"source"`
	Subject         string      `json:"subject,omitempty"`
	ID              string      `json:"id"`
	Time            time.Time   `json:"time"`
	DataContentType string      `json:"datacontenttype"`
	Data            interface{} `json:"data"`

	CorrelationID string `json:"tmscorrelationid,omitempty"`
	UserID        string `json:"tmsuserid,omitempty"`
	ShippingID    string `json:"tmsshippingid,omitempty"`
	TraceParent   string `json:"traceparent,omitempty"`
}

// NotificationData is the payload shared by notification events
type NotificationData struct {
	ShippingID     string   `json:"shippingId"`
	ShippingNumber string   `json:"shippingNumber,omitempty"`
	CarrierID      string   `json:"carrierId,omitempty"`
	OrderIDs       []string `json:"orderIds,omitempty"`
	Reason         string   `json:"reason,omitempty"`
}

// StatusChangedData is the payload of status-change events
type StatusChangedData struct {
	EntityID   string `json:"entityId"`
	EntityType string `json:"entityType"`
	From       string `json:"from"`
	To         string `json:"to"`
}
