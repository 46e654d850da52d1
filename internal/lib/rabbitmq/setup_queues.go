package rabbitmq

// Topology of the delivery journal.
const (
	ExchangeReceipts   = "receipts"
	RoutingKeyDelivery = "delivery"
	QueueDelivery      = "receipt.delivery"
)

// prefetch is also the number of messages a consumer handles concurrently.
const prefetch = 10

// QueueConfig связывает очередь с ключом маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetDeliveryQueues возвращает очереди, которые слушает журнал доставок.
func GetDeliveryQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: QueueDelivery, RoutingKey: RoutingKeyDelivery},
	}
}
