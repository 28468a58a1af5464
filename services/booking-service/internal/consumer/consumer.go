package consumer

import (
	"context"
	"log/slog"
	"time"

	"github.com/DrashtiGohil19/bookingcrown/libs/db"
	"github.com/DrashtiGohil19/bookingcrown/libs/kafkax"
	otelx "github.com/DrashtiGohil19/bookingcrown/libs/otel"
	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/inbox"
	"github.com/jackc/pgx/v5"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Handler applies one message inside the transaction that also records it in the inbox.
type Handler func(ctx context.Context, q db.Querier, msg kafka.Message) error

type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error
}

type Reader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Outcomes receives one call per message: "applied", "duplicate" or "failed".
type Outcomes interface {
	EventConsumed(outcome string)
}

type Consumer struct {
	reader  Reader
	tx      TxRunner
	logger  *slog.Logger
	handler Handler
	outcome Outcomes
	record  func(ctx context.Context, q db.Querier, eventID, eventType string) (bool, error)
	backoff time.Duration
}

type Config struct {
	Brokers string
	GroupID string
	Topic   string
}

func New(logger *slog.Logger, tx TxRunner, cfg Config, handler Handler, outcome Outcomes) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  kafkax.SplitBrokers(cfg.Brokers),
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return newConsumer(logger, reader, tx, handler, outcome)
}

func newConsumer(logger *slog.Logger, reader Reader, tx TxRunner, handler Handler, outcome Outcomes) *Consumer {
	return &Consumer{
		reader:  reader,
		tx:      tx,
		logger:  logger,
		handler: handler,
		outcome: outcome,
		record:  inbox.Record,
		backoff: time.Second,
	}
}

func (c *Consumer) Run(ctx context.Context) {
	defer c.reader.Close()

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("kafka read error", "err", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.backoff):
			}
			continue
		}
		c.process(ctx, msg)
	}
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	meta := kafkax.ExtractEventMeta(msg)
	ctxMsg := kafkax.ExtractTraceContext(ctx, msg)
	ctxSpan, span := otelx.Tracer("kafka").Start(ctxMsg, "kafka.consume",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", msg.Topic),
			otelx.KeyEventID.String(meta.EventID),
			otelx.KeyEventType.String(meta.EventType),
		),
	)
	defer span.End()

	fresh := false
	err := c.tx.InTx(ctxSpan, func(ctx context.Context, tx pgx.Tx) error {
		ok, err := c.record(ctx, tx, meta.EventID, meta.EventType)
		if err != nil || !ok {
			return err
		}
		fresh = true
		return c.handler(ctx, tx, msg)
	})

	switch {
	case err != nil:
		c.logger.Error("event handling failed", "err", err, "event_id", meta.EventID, "event_type", meta.EventType)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.outcome.EventConsumed("failed")
	case !fresh:
		c.logger.Info("duplicate event ignored", "event_id", meta.EventID, "event_type", meta.EventType)
		c.outcome.EventConsumed("duplicate")
	default:
		c.outcome.EventConsumed("applied")
	}
}
