package rabbitmq

// NotificationsExchange — exchange уведомлений об истечении подписки.
const NotificationsExchange = "notifications"

// Ключи маршрутизации уведомлений.
const (
	// RoutingKeyExpiring — подписка истекает завтра, напоминание о продлении.
	RoutingKeyExpiring = "expiring"
	// RoutingKeyExpired — подписка истекла сегодня, премиум-доступ закрыт.
	RoutingKeyExpired = "expired"
)

// QueueConfig описывает очередь и её ключ маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает очереди воркера почтовых уведомлений.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notification.expiring", RoutingKey: RoutingKeyExpiring},
		{QueueName: "notification.expired", RoutingKey: RoutingKeyExpired},
	}
}
