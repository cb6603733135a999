package events

import (
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Dial connects to RabbitMQ, retrying while the broker is still starting.
func Dial(url string, attempts int, logger *zap.Logger) (*amqp.Connection, error) {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 1; i <= attempts; i++ {
		conn, err := amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		logger.Warn("rabbitmq not reachable yet",
			zap.Int("attempt", i),
			zap.Int("max_attempts", attempts),
			zap.Error(err),
		)
		if i < attempts {
			time.Sleep(time.Duration(i) * time.Second)
		}
	}
	return nil, fmt.Errorf("connect to RabbitMQ: %w", lastErr)
}
