package cloudevents

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/propagation"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/logging"
)

// EventFactory creates CloudEvents for a fixed source
type EventFactory struct {
	source string
	now    func() time.Time
}

// NewEventFactory creates a new EventFactory
func NewEventFactory(source string) *EventFactory {
	return &EventFactory{source: source, now: time.Now}
}

// newEvent builds an event, copying correlation and user ids from ctx
// and the W3C traceparent of the active span when there is one.
func (f *EventFactory) newEvent(ctx context.Context, eventType, subject string, data interface{}) *TMSCloudEvent {
	event := &TMSCloudEvent{
		SpecVersion:     "1.0",
		Type:            eventType,
		Source:          f.source,
		Subject:         subject,
		ID:              uuid.NewString(),
		Time:            f.now().UTC(),
		DataContentType: "application/json",
		Data:            data,
	}

	if v, ok := ctx.Value(logging.CorrelationIDKey).(string); ok {
		event.CorrelationID = v
	}
	if v, ok := ctx.Value(logging.UserIDKey).(string); ok {
		event.UserID = v
	}

	carrier := propagation.MapCarrier{}
	propagation.TraceContext{}.Inject(ctx, carrier)
	event.TraceParent = carrier.Get("traceparent")

	return event
}

// CreateNotification builds a notification event keyed by shipping id
func (f *EventFactory) CreateNotification(ctx context.Context, eventType string, data NotificationData) *TMSCloudEvent {
	event := f.newEvent(ctx, eventType, "shipping/"+data.ShippingID, data)
	event.ShippingID = data.ShippingID
	return event
}
