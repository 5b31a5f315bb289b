package viz

import (
	"testing"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dtnsim/internal/engine"
)

func TestPublishDropsStaleSnapshotWhenFull(t *testing.T) {
	t.Parallel()

	s := NewServer(":0", nil, zerolog.Nop())

	first := []engine.Snapshot{{ID: "a1"}}
	second := []engine.Snapshot{{ID: "a2"}}

	s.Publish(first)
	s.Publish(second)

	require.Len(t, s.updates, 1, "the single-slot buffer must hold exactly the latest snapshot")
	got := <-s.updates
	assert.Equal(t, second, got)
}

func TestIsClosureRecognizesNormalClosure(t *testing.T) {
	t.Parallel()

	err := &websocket.CloseError{Code: websocket.CloseNormalClosure}
	assert.True(t, isClosure(err))

	other := &websocket.CloseError{Code: websocket.CloseProtocolError}
	assert.False(t, isClosure(other))
}

func TestIsErrorFalseOnNilError(t *testing.T) {
	t.Parallel()

	assert.False(t, isError(nil))
	assert.False(t, isClosure(nil))
}
