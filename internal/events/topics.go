package events

// Topic constants for domain events emitted by the engine.
const (
	TopicOrderCreated       = "order.created"
	TopicOrderStatusChanged = "order.status_changed"
	TopicOrderCanceled      = "order.canceled"
	TopicOrderRepriced      = "order.repriced"
	TopicPaymentRecorded    = "payment.recorded"
	TopicOrderPaid          = "order.paid"
)

// DefaultTopics returns the canonical list of topics downstream consumers
// may subscribe to.
func DefaultTopics() []string {
	return []string{
		TopicOrderCreated,
		TopicOrderStatusChanged,
		TopicOrderCanceled,
		TopicOrderRepriced,
		TopicPaymentRecorded,
		TopicOrderPaid,
	}
}
