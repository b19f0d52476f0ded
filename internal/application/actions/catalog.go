package actions

import (
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/application"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/domain"
)

// Action names as exposed to clients
const (
	CreateOrder              = "createOrder"
	ConfirmOrder             = "confirmOrder"
	CancelOrder              = "cancelOrder"
	CreateShipping           = "createShipping"
	UnionOrders              = "unionOrders"
	UnionOrdersInExisted     = "unionOrdersInExisted"
	RemoveFromShipping       = "removeFromShipping"
	OrderShipped             = "orderShipped"
	OrderDelivered           = "orderDelivered"
	FullReturn               = "fullReturn"
	Lost                     = "lost"
	ArchiveOrder             = "archiveOrder"
	RollbackOrder            = "rollbackOrder"
	SendOrderShippingToTk    = "sendOrderShippingToTk"
	SendToPooling            = "sendToPooling"
	CancelPoolingReservation = "cancelPoolingReservation"

	SendShippingToTk      = "sendShippingToTk"
	ConfirmShipping       = "confirmShipping"
	RejectRequestShipping = "rejectRequestShipping"
	CancelShipping        = "cancelShipping"
	CompleteShipping      = "completeShipping"
	BillSend              = "billSend"
	ArchiveShipping       = "archiveShipping"
)

var (
	managers      = []domain.Role{domain.RoleAdministrator, domain.RoleShippingManager, domain.RoleTransportCoordinator}
	orderOwners   = []domain.Role{domain.RoleAdministrator, domain.RoleShippingManager, domain.RoleClient}
	carrierFacing = []domain.Role{domain.RoleAdministrator, domain.RoleTransportCoordinator, domain.RoleCarrier}
	supervisors   = []domain.Role{domain.RoleAdministrator, domain.RoleShippingManager}
)

// Services are the application services the actions delegate to
type Services struct {
	Shippings *application.ShippingActionService
	Sender    *application.SendShippingService
	Stats     *application.CarrierRequestStats
}

// NewCatalog registers every order and shipping action
func NewCatalog(svc Services) *Registry {
	r := NewRegistry()

	r.RegisterSingleOrder(Descriptor{Name: CreateOrder, Order: 10, Roles: orderOwners}, createOrder{})
	r.RegisterSingleOrder(Descriptor{Name: ConfirmOrder, Order: 20, Roles: orderOwners}, confirmOrder{})
	r.RegisterSingleOrder(Descriptor{Name: CreateShipping, Order: 30, Roles: managers}, createShipping{shippings: svc.Shippings})
	r.RegisterGroupOrder(Descriptor{Name: UnionOrders, Order: 40, Roles: managers}, unionOrders{shippings: svc.Shippings})
	r.RegisterGroupOrder(Descriptor{Name: UnionOrdersInExisted, Order: 50, Roles: managers}, unionOrdersInExisted{shippings: svc.Shippings})
	r.RegisterGroupOrder(Descriptor{Name: RemoveFromShipping, Order: 60, Roles: managers}, removeFromShipping{shippings: svc.Shippings})
	r.RegisterGroupOrder(Descriptor{Name: SendOrderShippingToTk, Order: 70, Roles: managers},
		sendOrderShippingToTk{shippings: svc.Shippings, sender: svc.Sender})
	r.RegisterGroupOrder(Descriptor{Name: SendToPooling, Order: 80, Roles: managers},
		sendToPooling{shippings: svc.Shippings, sender: svc.Sender})
	r.RegisterGroupOrder(Descriptor{Name: CancelPoolingReservation, Order: 90, Roles: managers},
		cancelOrderPoolingReservation{shippings: svc.Shippings, sender: svc.Sender})
	r.RegisterSingleOrder(Descriptor{Name: OrderShipped, Order: 100, Roles: managers}, orderShipped{})
	r.RegisterSingleOrder(Descriptor{Name: OrderDelivered, Order: 110, Roles: managers}, orderDelivered{})
	r.RegisterSingleOrder(Descriptor{Name: FullReturn, Order: 120, Roles: managers}, fullReturn{})
	r.RegisterSingleOrder(Descriptor{Name: Lost, Order: 130, Roles: managers}, orderLost{})
	r.RegisterSingleOrder(Descriptor{Name: CancelOrder, Order: 140, Roles: orderOwners}, cancelOrder{})
	r.RegisterSingleOrder(Descriptor{Name: ArchiveOrder, Order: 150, Roles: supervisors}, archiveOrder{})
	r.RegisterSingleOrder(Descriptor{Name: RollbackOrder, Order: 160, Roles: supervisors}, rollbackOrder{})

	r.RegisterShipping(Descriptor{Name: SendShippingToTk, Order: 10, Roles: managers}, sendShippingToTk{sender: svc.Sender})
	r.RegisterShipping(Descriptor{Name: ConfirmShipping, Order: 20, Roles: carrierFacing}, confirmShipping{stats: svc.Stats})
	r.RegisterShipping(Descriptor{Name: RejectRequestShipping, Order: 30, Roles: carrierFacing}, rejectRequestShipping{stats: svc.Stats})
	r.RegisterShipping(Descriptor{Name: CancelPoolingReservation, Order: 40, Roles: managers}, cancelShippingPoolingReservation{sender: svc.Sender})
	r.RegisterShipping(Descriptor{Name: CompleteShipping, Order: 50, Roles: carrierFacing}, completeShipping{})
	r.RegisterShipping(Descriptor{Name: BillSend, Order: 60, Roles: carrierFacing}, billSend{})
	r.RegisterShipping(Descriptor{Name: CancelShipping, Order: 70, Roles: managers}, cancelShipping{shippings: svc.Shippings})
	r.RegisterShipping(Descriptor{Name: ArchiveShipping, Order: 80, Roles: supervisors}, archiveShipping{})

	return r
}

// CreateOrderHook runs the createOrder action on a freshly saved draft
func CreateOrderHook() application.CreateHook {
	a := createOrder{}
	return func(sc *application.Scope, o *domain.Order) (Result, error) {
		if !a.IsAvailable(sc, o) {
			return application.Failure(domain.MsgActionNotAvailable, CreateOrder), nil
		}
		return a.Run(sc, o)
	}
}
