package ecs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockbots/server/internal/core/ecs"
)

func TestEntityPoolGenerations(t *testing.T) {
	p := ecs.NewEntityPool()

	a := p.Create()
	require.False(t, a.IsZero(), "index 0 is reserved")
	assert.True(t, p.Alive(a))
	assert.Equal(t, 1, p.Live())

	p.Destroy(a)
	assert.False(t, p.Alive(a))
	assert.Equal(t, 0, p.Live())

	b := p.Create()
	assert.Equal(t, a.Index(), b.Index(), "free list reuses the slot")
	assert.Equal(t, a.Generation()+1, b.Generation())
	assert.False(t, p.Alive(a), "stale id stays dead")

	p.Destroy(a) // stale destroy must not free b
	assert.True(t, p.Alive(b))
	assert.False(t, p.Alive(ecs.NoEntity))
}

func TestStoreIterationOrder(t *testing.T) {
	s := ecs.NewPtrComponentStore[int]()
	vals := []int{30, 10, 20}
	ids := []ecs.EntityID{ecs.NewEntityID(3, 0), ecs.NewEntityID(1, 0), ecs.NewEntityID(2, 0)}
	for i, id := range ids {
		v := vals[i]
		s.Set(id, &v)
	}
	s.Set(ids[0], &vals[0]) // overwrite keeps position

	var seen []int
	s.Each(func(_ ecs.EntityID, v *int) { seen = append(seen, *v) })
	assert.Equal(t, []int{30, 10, 20}, seen)

	s.Remove(ids[1])
	assert.Equal(t, []ecs.EntityID{ids[0], ids[2]}, s.IDs())
	assert.Equal(t, 2, s.Len())
	assert.False(t, s.Has(ids[1]))
}

func TestWorldDeferredDestroy(t *testing.T) {
	w := ecs.NewWorld()
	s := ecs.NewPtrComponentStore[string]()
	w.Registry().Register(s)

	id := w.CreateEntity()
	name := "robot"
	s.Set(id, &name)

	w.MarkForDestruction(id)
	w.MarkForDestruction(id)
	assert.Equal(t, 1, w.Pending())
	assert.True(t, w.Alive(id), "alive until flush")

	w.FlushDestroyQueue()
	assert.False(t, w.Alive(id))
	assert.False(t, s.Has(id))
	assert.Equal(t, 0, w.Pending())
}
