package domain

// OrderState is the lifecycle status of an order
type OrderState string

const (
	OrderDraft      OrderState = "draft"
	OrderCreated    OrderState = "created"
	OrderConfirmed  OrderState = "confirmed"
	OrderInShipping OrderState = "inShipping"
	OrderShipped    OrderState = "shipped"
	OrderDelivered  OrderState = "delivered"
	OrderArchive    OrderState = "archive"
	OrderCanceled   OrderState = "canceled"
	OrderFullReturn OrderState = "fullReturn"
	OrderLost       OrderState = "lost"
)

// ShippingState is the lifecycle status of a shipping
type ShippingState string

const (
	ShippingCreated         ShippingState = "created"
	ShippingRequestSent     ShippingState = "requestSent"
	ShippingConfirmed       ShippingState = "confirmed"
	ShippingRejectedByTc    ShippingState = "rejectedByTc"
	ShippingSlotBooked      ShippingState = "slotBooked"
	ShippingSlotCancelled   ShippingState = "slotCancelled"
	ShippingChangesAgreeing ShippingState = "changesAgreeing"
	ShippingCompleted       ShippingState = "completed"
	ShippingBillSend        ShippingState = "billSend"
	ShippingArchive         ShippingState = "archive"
	ShippingCanceled        ShippingState = "canceled"
)

// In reports whether s is one of states
func (s ShippingState) In(states ...ShippingState) bool {
	for _, st := range states {
		if s == st {
			return true
		}
	}
	return false
}

// In reports whether s is one of states
func (s OrderState) In(states ...OrderState) bool {
	for _, st := range states {
		if s == st {
			return true
		}
	}
	return false
}

// TarifficationType selects the rate formula
type TarifficationType string

const (
	TarifficationFtl        TarifficationType = "ftl"
	TarifficationLtl        TarifficationType = "ltl"
	TarifficationPooling    TarifficationType = "pooling"
	TarifficationMilkrun    TarifficationType = "milkrun"
	TarifficationDoubledeck TarifficationType = "doubledeck"
)

// IsPoolingLike is true for the slot-reservation tarifications
func (t TarifficationType) IsPoolingLike() bool {
	return t == TarifficationPooling || t == TarifficationMilkrun
}

// IsFlatRate is true when the tariff's FTL rate applies regardless of pallets
func (t TarifficationType) IsFlatRate() bool {
	return t == TarifficationFtl || t == TarifficationDoubledeck
}

// DeliveryType describes who moves the goods
type DeliveryType string

const (
	DeliveryTypeDelivery     DeliveryType = "delivery"
	DeliveryTypeSelfDelivery DeliveryType = "selfDelivery"
	DeliveryTypeCourier      DeliveryType = "courier"
)

// Role gates which actions a user sees
type Role string

const (
	RoleAdministrator        Role = "administrator"
	RoleShippingManager      Role = "shippingManager"
	RoleTransportCoordinator Role = "transportCoordinator"
	RoleCarrier              Role = "carrier"
	RoleClient               Role = "client"
)

// AllRoles lists every role in display order
var AllRoles = []Role{RoleAdministrator, RoleShippingManager, RoleTransportCoordinator, RoleCarrier, RoleClient}
