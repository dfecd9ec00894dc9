package services

import "kelime/pkg/rabbitmq"

// ActivityPublisher is the slice of the RabbitMQ client the services need.
// Services tolerate a nil publisher: events are logged and skipped when no
// broker is configured.
type ActivityPublisher interface {
	PublishActivityEvent(event rabbitmq.ActivityEvent) error
}
