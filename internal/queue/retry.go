package queue

import (
	"context"
	"errors"

	"github.com/OFFIS-RIT/plotline/backend/pkg/common"
	"github.com/OFFIS-RIT/plotline/backend/pkg/logger"

	"github.com/rabbitmq/amqp091-go"
)

func retryCount(headers amqp091.Table) int {
	switch v := headers["x-retries"].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	}
	return 0
}

// HandleProcessingError routes a failed delivery. Invalid input goes
// straight to the dead letter queue, everything else is republished to the
// retry queue until it has failed maxRetries times. The original delivery
// is acked once the copy is published and nacked with requeue otherwise.
func HandleProcessingError(ctx context.Context, ch Publisher, msg amqp091.Delivery, queueName string, cause error) {
	retries := retryCount(msg.Headers)

	if retries >= maxRetries || errors.Is(cause, common.ErrInvalidInput) {
		dlqName := queueName + "_dlq"
		logger.Warn("[Queue] Sending message to DLQ", "dlq", dlqName, "retries", retries, "err", cause)
		republish(ctx, ch, msg, dlqName, msg.Headers)
		return
	}

	headers := amqp091.Table{}
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers["x-retries"] = int32(retries + 1)

	logger.Info("[Queue] Scheduling retry", "queue", queueName, "attempt", retries+1)
	republish(ctx, ch, msg, queueName+"_retry", headers)
}

func republish(ctx context.Context, ch Publisher, msg amqp091.Delivery, target string, headers amqp091.Table) {
	err := ch.PublishWithContext(ctx, "", target, false, false, amqp091.Publishing{
		ContentType:  msg.ContentType,
		Body:         msg.Body,
		Headers:      headers,
		DeliveryMode: amqp091.Persistent,
	})
	if err != nil {
		logger.Error("[Queue] Failed to republish message", "queue", target, "err", err)
		if err := msg.Nack(false, true); err != nil {
			logger.Error("[Queue] Failed to nack message", "err", err)
		}
		return
	}
	if err := msg.Ack(false); err != nil {
		logger.Error("[Queue] Failed to ack message", "err", err)
	}
}
