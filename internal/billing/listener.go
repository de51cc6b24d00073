package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Rakete-RSO/zapiski-ai-auth/internal/events"
	"github.com/Rakete-RSO/zapiski-ai-auth/internal/models"
	"github.com/Rakete-RSO/zapiski-ai-auth/internal/utils"
)

const (
	consumerTag    = "auth-billing-listener"
	reconnectDelay = 5 * time.Second
)

// RecordStore persists billing results pulled off the queue.
type RecordStore interface {
	Create(record *models.BillingRecord) error
}

// billingMessage is the wire format the billing service publishes to the
// billing_results queue.
type billingMessage struct {
	CustomerEmail   string  `json:"customer_email"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	PaymentIntentID string  `json:"payment_intent_id"`
	ClientSecret    string  `json:"client_secret"`
	Status          string  `json:"status"`
}

// Listener consumes billing results from RabbitMQ and stores them in the
// database. It keeps reconnecting until its context is cancelled.
type Listener struct {
	amqpURL string
	store   RecordStore
}

func NewListener(amqpURL string, store RecordStore) *Listener {
	return &Listener{amqpURL: amqpURL, store: store}
}

// Run blocks until ctx is cancelled. Connection failures and consume errors
// trigger a reconnect after a short delay; the listener never gives up.
func (l *Listener) Run(ctx context.Context) error {
	for {
		err := l.consume(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Error("billing listener disconnected, reconnecting",
			"queue", events.BillingResultsQueue, "delay", reconnectDelay, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

func (l *Listener) consume(ctx context.Context) error {
	conn, err := amqp.Dial(l.amqpURL)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	queue, err := ch.QueueDeclare(
		events.BillingResultsQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", events.BillingResultsQueue, err)
	}

	deliveries, err := ch.Consume(
		queue.Name,
		consumerTag,
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	slog.Info("billing listener started, waiting for billing results", "queue", queue.Name)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			l.handleDelivery(delivery)
		}
	}
}

// handleDelivery processes one message. Malformed payloads are acked and
// dropped; store failures are nacked without requeue so a poison message
// cannot wedge the queue.
func (l *Listener) handleDelivery(delivery amqp.Delivery) {
	record, err := decodeRecord(delivery.Body)
	if err != nil {
		slog.Error("failed to decode billing message", "error", err)
		_ = delivery.Ack(false)
		return
	}

	if err := l.store.Create(record); err != nil {
		slog.Error("failed to store billing record", "customer_email", record.CustomerEmail, "error", err)
		_ = delivery.Nack(false, false)
		return
	}

	slog.Info("stored billing record",
		"customer_email", record.CustomerEmail,
		"payment_intent_id", record.PaymentIntentID,
		"status", record.Status,
	)
	_ = delivery.Ack(false)
}

func decodeRecord(body []byte) (*models.BillingRecord, error) {
	var msg billingMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("failed to decode billing message: %w", err)
	}
	if msg.CustomerEmail == "" || msg.PaymentIntentID == "" {
		return nil, errors.New("billing message missing customer_email or payment_intent_id")
	}
	return &models.BillingRecord{
		ID:              utils.GenerateID("bil"),
		CustomerEmail:   msg.CustomerEmail,
		Amount:          msg.Amount,
		Currency:        msg.Currency,
		PaymentIntentID: msg.PaymentIntentID,
		ClientSecret:    msg.ClientSecret,
		Status:          msg.Status,
		CreatedAt:       time.Now().UTC(),
	}, nil
}
