package events

import (
	"encoding/json"
	"fmt"

	"github.com/rabbitmq/amqp091-go"

	"github.com/Philos250/TransactiTrack/internal/model"
)

// RoutingKey returns the routing key for an event, e.g. "ledger.transaction.created".
func RoutingKey(prefix string, kind model.EventKind) string {
	if prefix == "" {
		return string(kind)
	}
	return prefix + "." + string(kind)
}

// newPublishing encodes an event as a persistent JSON message.
func newPublishing(event model.Event) (amqp091.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp091.Publishing{}, fmt.Errorf("marshal event: %w", err)
	}

	return amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    event.ID,
		Type:         string(event.Kind),
		Timestamp:    event.OccurredAt,
		Body:         body,
	}, nil
}
