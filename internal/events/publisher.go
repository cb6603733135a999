package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/itanishqshelar/Flashfits-AI/internal/mirror"
)

const publishTimeout = 3 * time.Second

// Publisher emits a CartItemAdded event for every mirrored addition.
type Publisher struct {
	ch       channel
	seqRepo  SequenceRepository
	producer string
	now      func() time.Time
}

type PublisherOptions struct {
	Producer string
}

func NewPublisher(conn *amqp.Connection, seqRepo SequenceRepository, opts PublisherOptions) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	return newPublisher(ch, seqRepo, opts)
}

func newPublisher(ch channel, seqRepo SequenceRepository, opts PublisherOptions) (*Publisher, error) {
	if err := declareEventsExchange(ch); err != nil {
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}

	producer := opts.Producer
	if producer == "" {
		producer = DefaultProducer
	}

	return &Publisher{
		ch:       ch,
		seqRepo:  seqRepo,
		producer: producer,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

// MirrorAddition publishes a on the cart.item.added.v1 routing key,
// partitioned and sequenced by session.
func (p *Publisher) MirrorAddition(ctx context.Context, a mirror.Addition) error {
	if a.SessionID == "" {
		return fmt.Errorf("publish CartItemAdded: session id is required")
	}

	timestamp := p.now()
	productID := a.ProductID
	if productID == "" {
		productID = strconv.Itoa(a.ItemID)
	}

	payload := CartItemAddedPayload{
		SessionID:     a.SessionID,
		UserID:        a.UserID,
		ProductID:     productID,
		Name:          a.Product.Name,
		Price:         a.Product.Price,
		Image:         a.Product.Image,
		SelectedColor: a.SelectedColor,
		SelectedSize:  a.SelectedSize,
		Quantity:      a.Quantity,
		Timestamp:     timestamp,
	}

	seq, err := p.seqRepo.NextSequence(ctx, a.SessionID)
	if err != nil {
		return fmt.Errorf("reserve sequence: %w", err)
	}

	meta := EventMeta{CorrelationID: a.CorrelationID, PartitionKey: a.SessionID}
	env := newCartItemAddedEvent(meta, seq, p.producer, payload, timestamp)
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal CartItemAdded envelope: %w", err)
	}

	if err := p.publishJSON(ctx, CartItemAddedRoutingKey, env.EventID, body); err != nil {
		return fmt.Errorf("publish CartItemAdded: %w", err)
	}
	return nil
}

func (p *Publisher) publishJSON(ctx context.Context, routingKey, messageID string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    messageID,
			Body:         body,
		},
	)
}
