package messaging

// Topic names follow the <target>.<action>.<source> convention shared
// across the omnixys services.
const (
	// Inbound, customer lifecycle.
	TopicCreateCart = "shopping-cart.create.person"
	TopicDeleteCart = "shopping-cart.delete.person"

	// Inbound, fleet orchestration. The all.* variants address every
	// service at once.
	TopicStart       = "shopping-cart.start.orchestrator"
	TopicRestart     = "shopping-cart.restart.orchestrator"
	TopicShutdown    = "shopping-cart.shutdown.orchestrator"
	TopicStartAll    = "all.start.orchestrator"
	TopicRestartAll  = "all.restart.orchestrator"
	TopicShutdownAll = "all.shutdown.orchestrator"

	// Outbound, notification commands.
	TopicNotificationCreate = "notification.create.shopping-cart"
	TopicNotificationUpdate = "notification.update.shopping-cart"
	TopicNotificationDelete = "notification.delete.shopping-cart"

	// Outbound, inventory saga commands.
	TopicReserveItem = "inventory.reserve-item.shopping-cart"
	TopicReleaseItem = "inventory.release-item.shopping-cart"

	// Outbound, activity stream.
	TopicLogStream = "log-stream.log.shopping-cart"
)

// topicsByDomain groups the inbound topics this service subscribes to.
var topicsByDomain = map[string][]string{
	"person": {
		TopicCreateCart,
		TopicDeleteCart,
	},
	"orchestrator": {
		TopicStart,
		TopicRestart,
		TopicShutdown,
		TopicStartAll,
		TopicRestartAll,
		TopicShutdownAll,
	},
}

// TopicsBy returns the inbound topics of the given domains, in a stable
// order. Unknown domains contribute nothing.
func TopicsBy(domains ...string) []string {
	var topics []string
	for _, domain := range domains {
		topics = append(topics, topicsByDomain[domain]...)
	}
	return topics
}
