package pooling

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/domain"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/logging"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/metrics"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/resilience"
)

const (
	systemName = "pooling"

	headerClientID = "X-Client-Id"
)

// Config holds the pooling service connection settings
type Config struct {
	BaseURL string
	Timeout time.Duration
	Breaker *resilience.CircuitBreakerConfig
}

// DefaultConfig returns a Config with a 30 second call timeout
func DefaultConfig(baseURL string) *Config {
	return &Config{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Timeout: 30 * time.Second,
		Breaker: resilience.DefaultCircuitBreakerConfig(systemName),
	}
}

// Client implements domain.PoolingClient over the pooling REST API.
// Every call goes through one circuit breaker; only transport failures and
// 5xx answers count against it.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *resilience.CircuitBreaker
	metrics    *metrics.Metrics
	logger     *logging.Logger
	tracer     trace.Tracer
}

// NewClient creates a pooling client
func NewClient(config *Config, m *metrics.Metrics, logger *logging.Logger) *Client {
	if config.Breaker == nil {
		config.Breaker = resilience.DefaultCircuitBreakerConfig(systemName)
	}
	breakerConfig := *config.Breaker
	breakerConfig.OnStateChange = func(name string, _, to gobreaker.State) {
		if m == nil {
			return
		}
		m.SetCircuitBreakerState(name, int(to))
		if to == gobreaker.StateOpen {
			m.RecordCircuitBreakerTrip(name)
		}
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: &http.Client{Timeout: config.Timeout},
		breaker:    resilience.NewCircuitBreaker(&breakerConfig, logger.Logger),
		metrics:    m,
		logger:     logger.WithComponent("pooling-client"),
		tracer:     otel.Tracer("pooling-client"),
	}
}

// errorBody is what the pooling service answers on failures
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// response is a raw answer kept for decoding after the breaker returns
type response struct {
	status int
	body   []byte
}

// serverError marks 5xx answers so the breaker counts them
type serverError struct{ resp *response }

func (e *serverError) Error() string {
	return fmt.Sprintf("pooling returned status %d", e.resp.status)
}

// GetSlots searches free slots matching filter
func (c *Client) GetSlots(ctx context.Context, filter domain.SlotFilter, company *domain.Company) domain.HTTPResult[[]domain.Slot] {
	q := url.Values{}
	q.Set("dateFrom", filter.DateFrom.UTC().Format(time.RFC3339))
	q.Set("dateTo", filter.DateTo.UTC().Format(time.RFC3339))
	setIf(q, "shippingRegionId", filter.ShippingRegionID)
	setIf(q, "deliveryRegionId", filter.DeliveryRegionID)
	setIf(q, "carTypeId", filter.CarTypeID)
	setIf(q, "productType", filter.ProductType)
	setIf(q, "carrierId", filter.CarrierID)

	return call[[]domain.Slot](ctx, c, domain.PoolingOpGetSlots, http.MethodGet, "/api/slots?"+q.Encode(), nil, company)
}

// GetSlot fetches one slot
func (c *Client) GetSlot(ctx context.Context, id string, company *domain.Company) domain.HTTPResult[*domain.Slot] {
	return call[*domain.Slot](ctx, c, domain.PoolingOpGetSlot, http.MethodGet, "/api/slots/"+url.PathEscape(id), nil, company)
}

// BookSlot creates a reservation
func (c *Client) BookSlot(ctx context.Context, req domain.ReservationRequest, company *domain.Company) domain.HTTPResult[*domain.Reservation] {
	return call[*domain.Reservation](ctx, c, domain.PoolingOpBookSlot, http.MethodPost, "/api/reservations", req, company)
}

// UpdateReservation replaces an existing reservation
func (c *Client) UpdateReservation(ctx context.Context, req domain.ReservationRequest, company *domain.Company) domain.HTTPResult[*domain.Reservation] {
	return call[*domain.Reservation](ctx, c, domain.PoolingOpUpdate, http.MethodPut, "/api/reservations/"+url.PathEscape(req.ID), req, company)
}

// CancelSlot cancels a reservation
func (c *Client) CancelSlot(ctx context.Context, reservationID, bookingNumber, foreignID string, company *domain.Company) domain.HTTPResult[*domain.Reservation] {
	body := map[string]string{"number": bookingNumber, "foreignId": foreignID}
	return call[*domain.Reservation](ctx, c, domain.PoolingOpCancel, http.MethodPost, "/api/reservations/"+url.PathEscape(reservationID)+"/cancel", body, company)
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

// call performs one request and folds every outcome into an HTTPResult.
// Callers log the outcome with their own context.
func call[T any](ctx context.Context, c *Client, operation, method, path string, body any, company *domain.Company) domain.HTTPResult[T] {
	start := time.Now()
	ctx, span := c.tracer.Start(ctx, "pooling."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("peer.service", systemName),
			attribute.String("http.method", method),
			attribute.String("pooling.operation", operation),
		),
	)
	defer span.End()

	result := c.execute(ctx, method, path, body, company)
	out := decode[T](result)

	duration := time.Since(start)
	span.SetAttributes(attribute.Int("http.status_code", out.StatusCode))
	if out.IsError {
		span.SetStatus(codes.Error, out.Error)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	if c.metrics != nil {
		c.metrics.RecordPoolingCall(operation, out.StatusCode, duration)
	}
	if out.IsError {
		c.logger.Debug("Pooling call failed", "operation", operation, "status", out.StatusCode, "error", out.Error)
	}
	return out
}

// outcome is either a raw response or a transport level failure
type outcome struct {
	resp *response
	err  error
}

func (c *Client) execute(ctx context.Context, method, path string, body any, company *domain.Company) outcome {
	raw, err := c.breaker.Execute(ctx, func() (interface{}, error) {
		resp, err := c.do(ctx, method, path, body, company)
		if err != nil {
			return nil, err
		}
		if resp.status >= http.StatusInternalServerError {
			return nil, &serverError{resp: resp}
		}
		return resp, nil
	})

	var srvErr *serverError
	switch {
	case err == nil:
		return outcome{resp: raw.(*response)}
	case errors.As(err, &srvErr):
		return outcome{resp: srvErr.resp}
	default:
		return outcome{err: err}
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any, company *domain.Company) (*response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if company != nil {
		if company.PoolingToken != "" {
			req.Header.Set("Authorization", "Bearer "+company.PoolingToken)
		}
		if company.PoolingClientID != "" {
			req.Header.Set(headerClientID, company.PoolingClientID)
		}
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return &response{status: resp.StatusCode, body: data}, nil
}

func decode[T any](o outcome) domain.HTTPResult[T] {
	if o.err != nil {
		return transportFailure[T](o.err)
	}

	if o.resp.status >= http.StatusBadRequest {
		return domain.HTTPFailure[T](o.resp.status, errorMessage(o.resp.body))
	}

	var value T
	if o.resp.status == http.StatusNoContent {
		return domain.HTTPSuccess(o.resp.status, value)
	}
	body := bytes.TrimSpace(o.resp.body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return domain.HTTPFailure[T](http.StatusBadGateway, domain.MsgPoolingBadResponse)
	}
	if err := json.Unmarshal(body, &value); err != nil {
		return domain.HTTPFailure[T](http.StatusBadGateway, domain.MsgPoolingBadResponse)
	}
	return domain.HTTPSuccess(o.resp.status, value)
}

func transportFailure[T any](err error) domain.HTTPResult[T] {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return domain.HTTPFailure[T](http.StatusGatewayTimeout, domain.MsgPoolingTimeout)
	}
	// open breaker and refused connections alike
	return domain.HTTPFailure[T](http.StatusServiceUnavailable, domain.MsgPoolingUnavailable)
}

func errorMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		if eb.Message != "" {
			return eb.Message
		}
		if eb.Error != "" {
			return eb.Error
		}
	}
	return strings.TrimSpace(string(body))
}
