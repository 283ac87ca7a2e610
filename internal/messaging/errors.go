package messaging

import "errors"

var (
	ErrPublisherRequired = errors.New("messaging: publisher is required")
	ErrTopicRequired     = errors.New("messaging: topic is required")
	ErrPayloadRequired   = errors.New("messaging: payload is required")

	// ErrDecode marks an inbound payload that failed the syntactic JSON
	// check. It is logged and the message is acked so a poison message
	// never blocks its partition.
	ErrDecode = errors.New("messaging: payload is not valid JSON")

	// ErrPublish wraps broker-side publish failures. Callers on the write
	// path log it and keep their already committed local transaction.
	ErrPublish = errors.New("messaging: publish failed")
)
