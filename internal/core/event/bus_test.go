package event_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blockbots/server/internal/core/event"
)

func TestBusDeliversNextTickInEmitOrder(t *testing.T) {
	b := event.NewBus()
	var got []string
	event.Subscribe(b, func(e event.BlockClaimed) { got = append(got, fmt.Sprintf("claim:%d", e.Block)) })
	event.Subscribe(b, func(e event.BlockDelivered) { got = append(got, fmt.Sprintf("deliver:%d", e.Block)) })

	event.Emit(b, event.BlockClaimed{Block: 1})
	event.Emit(b, event.BlockDelivered{Block: 2})
	event.Emit(b, event.BlockClaimed{Block: 3})
	assert.Equal(t, 3, b.Pending())

	b.DispatchAll()
	assert.Empty(t, got, "nothing readable before the swap")

	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, []string{"claim:1", "deliver:2", "claim:3"}, got)
	assert.Equal(t, 0, b.Pending())

	got = nil
	b.SwapBuffers()
	b.DispatchAll()
	assert.Empty(t, got, "events are delivered once")
}

func TestBusIgnoresUnsubscribedTypes(t *testing.T) {
	b := event.NewBus()
	event.Emit(b, event.SpawnFailed{Kind: "block", Err: "boom"})
	b.SwapBuffers()
	assert.NotPanics(t, b.DispatchAll)
}
