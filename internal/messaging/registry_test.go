package messaging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingHandler struct {
	topics []string
	calls  []string
	err    error
	panics bool
}

func (h *recordingHandler) Topics() []string { return h.topics }

func (h *recordingHandler) Handle(_ context.Context, topic string, _ []byte, _ EventContext) error {
	if h.panics {
		panic("handler exploded")
	}
	h.calls = append(h.calls, topic)
	return h.err
}

func TestRegistryOrder(t *testing.T) {
	r := NewRegistry()
	first := &recordingHandler{}
	second := &recordingHandler{}

	r.Register(TopicCreateCart, first)
	r.Register(TopicCreateCart, second)

	handlers := r.HandlersFor(TopicCreateCart)
	assert.Equal(t, []EventHandler{first, second}, handlers)
}

func TestRegistryUnknownTopic(t *testing.T) {
	r := NewRegistry()
	assert.Empty(t, r.HandlersFor("nothing.registered.here"))
}

func TestRegisterHandlerBindsDeclaredTopics(t *testing.T) {
	r := NewRegistry()
	h := &recordingHandler{topics: []string{TopicCreateCart, TopicDeleteCart}}

	r.RegisterHandler(h)

	assert.Len(t, r.HandlersFor(TopicCreateCart), 1)
	assert.Len(t, r.HandlersFor(TopicDeleteCart), 1)
	assert.Equal(t, []string{TopicCreateCart, TopicDeleteCart}, r.Topics())
}

func TestTopicsBy(t *testing.T) {
	topics := TopicsBy("person", "orchestrator")
	assert.Contains(t, topics, TopicCreateCart)
	assert.Contains(t, topics, TopicDeleteCart)
	assert.Contains(t, topics, TopicShutdown)
	assert.Contains(t, topics, TopicShutdownAll)
	assert.Len(t, topics, 8)

	assert.Empty(t, TopicsBy("unknown-domain"))
}
