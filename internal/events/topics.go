package events

// Topic constants for domain events emitted by the storefront.
const (
	TopicCartCreated     = "cart.created"
	TopicCartItemAdded   = "cart.item_added"
	TopicCartItemUpdated = "cart.item_updated"
	TopicCartItemRemoved = "cart.item_removed"
	TopicCartCleared     = "cart.cleared"
	TopicCartExpired     = "cart.expired"
)

// DefaultTopics returns the canonical list of topics that support notifications.
func DefaultTopics() []string {
	return []string{
		TopicCartCreated,
		TopicCartItemAdded,
		TopicCartItemUpdated,
		TopicCartItemRemoved,
		TopicCartCleared,
		TopicCartExpired,
	}
}
