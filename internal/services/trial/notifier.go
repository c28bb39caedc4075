package trial

import (
	"context"

	"github.com/streadway/amqp"

	"github.com/supportiq/entitlement-service/internal/lib/rabbitmq"
	"github.com/supportiq/entitlement-service/internal/models"
)

// RabbitNotifier публикует события истечения пробного периода в RabbitMQ.
type RabbitNotifier struct {
	ch *amqp.Channel
}

// NewRabbitNotifier создает нотификатор поверх готового канала RabbitMQ.
func NewRabbitNotifier(ch *amqp.Channel) *RabbitNotifier {
	return &RabbitNotifier{ch: ch}
}

// TrialExpired публикует событие в обменник notifications с ключом trial.expired.
func (n *RabbitNotifier) TrialExpired(_ context.Context, event models.TrialExpiredEvent) error {
	return rabbitmq.PublishMessage(n.ch, "notifications", "trial.expired", event)
}
