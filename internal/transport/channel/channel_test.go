package channel

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnixys/omnixys-shopping-cart-service/internal/transport"
)

func TestRegisteredOnDefaultRegistry(t *testing.T) {
	assert.True(t, transport.DefaultRegistry.Has(TransportName))
}

func TestBuildRoundTrip(t *testing.T) {
	tr, err := Build(context.Background(), nil, watermill.NopLogger{})
	require.NoError(t, err)
	require.NotNil(t, tr.Publisher)
	require.NotNil(t, tr.Subscriber)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messages, err := tr.Subscriber.Subscribe(ctx, "round-trip")
	require.NoError(t, err)

	msg := message.NewMessage(watermill.NewUUID(), []byte(`{"ping":true}`))
	require.NoError(t, tr.Publisher.Publish("round-trip", msg))

	select {
	case received := <-messages:
		assert.Equal(t, msg.UUID, received.UUID)
		received.Ack()
	case <-time.After(5 * time.Second):
		t.Fatal("message was not delivered")
	}
}
