package jsoncodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshal(t *testing.T) {
	type payload struct {
		CustomerID string `json:"customerId"`
		Quantity   int    `json:"quantity"`
	}

	data, err := Marshal(payload{CustomerID: "c-1", Quantity: 3})
	require.NoError(t, err)

	var got payload
	require.NoError(t, Unmarshal(data, &got))
	assert.Equal(t, "c-1", got.CustomerID)
	assert.Equal(t, 3, got.Quantity)
}

func TestValid(t *testing.T) {
	assert.True(t, Valid([]byte(`{"customerId":"c-1"}`)))
	assert.True(t, Valid([]byte(`"a bare string"`)))
	assert.False(t, Valid([]byte(`{"customerId":`)))
	assert.False(t, Valid([]byte(`not json`)))
}
