package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/logging"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/metrics"
)

// InstrumentedClient wraps a Client with metrics and tracing
type InstrumentedClient struct {
	client  *Client
	metrics *metrics.Metrics
	logger  *logging.Logger
	tracer  trace.Tracer
}

// NewInstrumentedClient creates a new instrumented MongoDB client
func NewInstrumentedClient(client *Client, m *metrics.Metrics, logger *logging.Logger) *InstrumentedClient {
	return &InstrumentedClient{
		client:  client,
		metrics: m,
		logger:  logger,
		tracer:  otel.Tracer("mongodb"),
	}
}

// Collection returns an instrumented collection
func (c *InstrumentedClient) Collection(name string) *InstrumentedCollection {
	return &InstrumentedCollection{
		collection: c.client.Collection(name),
		name:       name,
		database:   c.client.config.Database,
		metrics:    c.metrics,
		logger:     c.logger,
		tracer:     c.tracer,
	}
}

// Database returns the underlying database handle
func (c *InstrumentedClient) Database() *mongo.Database {
	return c.client.Database()
}

// Close disconnects the client
func (c *InstrumentedClient) Close(ctx context.Context) error {
	return c.client.Close(ctx)
}

// HealthCheck pings the primary inside a span
func (c *InstrumentedClient) HealthCheck(ctx context.Context) error {
	ctx, span := c.tracer.Start(ctx, "mongodb.ping", trace.WithAttributes(
		attribute.String("db.system", "mongodb"),
		attribute.String("db.name", c.client.config.Database),
	))
	defer span.End()

	err := c.client.HealthCheck(ctx)
	finishSpan(span, err)
	return err
}

// WithTransaction executes fn within a traced transaction
func (c *InstrumentedClient) WithTransaction(ctx context.Context, fn func(sessCtx mongo.SessionContext) error) error {
	ctx, span := c.tracer.Start(ctx, "mongodb.transaction", trace.WithAttributes(
		attribute.String("db.system", "mongodb"),
		attribute.String("db.name", c.client.config.Database),
	))
	defer span.End()

	err := c.client.WithTransaction(ctx, fn)
	finishSpan(span, err)
	return err
}

// InstrumentedCollection wraps a collection with metrics and tracing
type InstrumentedCollection struct {
	collection *mongo.Collection
	name       string
	database   string
	metrics    *metrics.Metrics
	logger     *logging.Logger
	tracer     trace.Tracer
}

func (c *InstrumentedCollection) observe(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	start := time.Now()
	ctx, span := c.tracer.Start(ctx, "mongodb."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "mongodb"),
			attribute.String("db.name", c.database),
			attribute.String("db.operation", operation),
			attribute.String("db.collection", c.name),
		),
	)
	defer span.End()

	err := fn(ctx)
	success := err == nil || errors.Is(err, mongo.ErrNoDocuments)
	duration := time.Since(start)

	if c.metrics != nil {
		c.metrics.RecordMongoDBOperation(c.name, operation, success, duration)
	}
	if c.logger != nil {
		c.logger.DatabaseQuery(ctx, c.name, operation, duration, success)
	}
	if success {
		finishSpan(span, nil)
	} else {
		finishSpan(span, err)
	}
	return err
}

func finishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}

// FindOne finds a single document and decodes it into out.
// Returns mongo.ErrNoDocuments when nothing matches.
func (c *InstrumentedCollection) FindOne(ctx context.Context, filter interface{}, out interface{}, opts ...*options.FindOneOptions) error {
	return c.observe(ctx, "findOne", func(ctx context.Context) error {
		return c.collection.FindOne(ctx, filter, opts...).Decode(out)
	})
}

// FindAll finds every matching document and decodes them into out (a slice pointer)
func (c *InstrumentedCollection) FindAll(ctx context.Context, filter interface{}, out interface{}, opts ...*options.FindOptions) error {
	return c.observe(ctx, "find", func(ctx context.Context) error {
		cursor, err := c.collection.Find(ctx, filter, opts...)
		if err != nil {
			return err
		}
		defer cursor.Close(ctx)
		return cursor.All(ctx, out)
	})
}

// UpdateOne updates a single document
func (c *InstrumentedCollection) UpdateOne(ctx context.Context, filter, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	var result *mongo.UpdateResult
	err := c.observe(ctx, "updateOne", func(ctx context.Context) error {
		var err error
		result, err = c.collection.UpdateOne(ctx, filter, update, opts...)
		return err
	})
	return result, err
}

// InsertMany inserts documents
func (c *InstrumentedCollection) InsertMany(ctx context.Context, documents []interface{}, opts ...*options.InsertManyOptions) error {
	if len(documents) == 0 {
		return nil
	}
	return c.observe(ctx, "insertMany", func(ctx context.Context) error {
		_, err := c.collection.InsertMany(ctx, documents, opts...)
		return err
	})
}

// BulkWrite executes a batch of write models
func (c *InstrumentedCollection) BulkWrite(ctx context.Context, models []mongo.WriteModel, opts ...*options.BulkWriteOptions) error {
	if len(models) == 0 {
		return nil
	}
	return c.observe(ctx, "bulkWrite", func(ctx context.Context) error {
		_, err := c.collection.BulkWrite(ctx, models, opts...)
		return err
	})
}

// CountDocuments counts matching documents
func (c *InstrumentedCollection) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	var count int64
	err := c.observe(ctx, "countDocuments", func(ctx context.Context) error {
		var err error
		count, err = c.collection.CountDocuments(ctx, filter, opts...)
		return err
	})
	return count, err
}

// EnsureIndexes creates indexes; callers decide whether failure is fatal
func (c *InstrumentedCollection) EnsureIndexes(ctx context.Context, models []mongo.IndexModel) error {
	return c.observe(ctx, "createIndexes", func(ctx context.Context) error {
		_, err := c.collection.Indexes().CreateMany(ctx, models)
		return err
	})
}

// Name returns the collection name
func (c *InstrumentedCollection) Name() string {
	return c.name
}
