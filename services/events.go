package services

import (
	"context"
	"encoding/json"
	"time"

	"order-intake-service/common/logger"
	"order-intake-service/kafka"
	"order-intake-service/models"
	aws_pkg "order-intake-service/pkg/aws"

	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// EventPublisher announces committed order changes. Publishing is best-effort:
// a failure is logged and counted, never returned to the caller.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, evt models.OrderEvent)
}

// EventSinks lists the optional destinations for order events. Nil sinks are skipped.
type EventSinks struct {
	Kafka       kafka.ProducerAPI
	SNS         aws_pkg.SNSPublisher
	SNSTopicArn string
	SQS         aws_pkg.QueueSender
	Metrics     aws_pkg.MetricsRecorder
}

type fanoutPublisher struct {
	sinks  EventSinks
	logger *zap.Logger
}

func NewEventPublisher(sinks EventSinks, logger *zap.Logger) EventPublisher {
	return &fanoutPublisher{sinks: sinks, logger: logger}
}

func (p *fanoutPublisher) PublishOrderEvent(ctx context.Context, evt models.OrderEvent) {
	log := logger.For(ctx, p.logger).With(
		zap.String("event_type", evt.EventType),
		zap.String("order_id", evt.OrderID),
	)

	body, err := json.Marshal(evt)
	if err != nil {
		log.Error("Failed to marshal order event", zap.Error(err))
		return
	}

	// The transaction already committed; a client disconnect must not drop the event.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if p.sinks.Kafka != nil {
		if err := p.sinks.Kafka.Publish(ctx, evt.OrderID, body, map[string]string{"event_type": evt.EventType}); err != nil {
			p.failed(ctx, log, "kafka", err)
		}
	}
	if p.sinks.SNS != nil && p.sinks.SNSTopicArn != "" {
		if err := p.sinks.SNS.Publish(ctx, p.sinks.SNSTopicArn, evt.EventType, body); err != nil {
			p.failed(ctx, log, "sns", err)
		}
	}
	if p.sinks.SQS != nil {
		if err := p.sinks.SQS.Send(ctx, evt.EventType, body); err != nil {
			p.failed(ctx, log, "sqs", err)
		}
	}
}

func (p *fanoutPublisher) failed(ctx context.Context, log *zap.Logger, sink string, err error) {
	log.Warn("Order event not published", zap.String("sink", sink), zap.Error(err))
	if p.sinks.Metrics != nil {
		_ = p.sinks.Metrics.RecordCount(ctx, aws_pkg.MetricEventPublishFailure, map[string]string{"Sink": sink})
	}
}
