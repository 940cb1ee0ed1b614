package ecs

// Removable is implemented by all component stores so the Registry can
// bulk-remove an entity's data from every store on destroy.
type Removable interface {
	Remove(id EntityID)
}

// PtrComponentStore is a generic typed store for ECS components.
// Iteration follows insertion order so a tick over robots or containers is
// reproducible for a given seed; map order would make targeting races random.
type PtrComponentStore[T any] struct {
	data  map[EntityID]*T
	order []EntityID
}

func NewPtrComponentStore[T any]() *PtrComponentStore[T] {
	return &PtrComponentStore[T]{
		data:  make(map[EntityID]*T, 64),
		order: make([]EntityID, 0, 64),
	}
}

func (s *PtrComponentStore[T]) Set(id EntityID, c *T) {
	if _, ok := s.data[id]; !ok {
		s.order = append(s.order, id)
	}
	s.data[id] = c
}

func (s *PtrComponentStore[T]) Get(id EntityID) (*T, bool) {
	c, ok := s.data[id]
	return c, ok
}

func (s *PtrComponentStore[T]) Remove(id EntityID) {
	if _, ok := s.data[id]; !ok {
		return
	}
	delete(s.data, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *PtrComponentStore[T]) Has(id EntityID) bool {
	_, ok := s.data[id]
	return ok
}

func (s *PtrComponentStore[T]) Len() int {
	return len(s.data)
}

// IDs returns a copy of the stored IDs in insertion order.
func (s *PtrComponentStore[T]) IDs() []EntityID {
	out := make([]EntityID, len(s.order))
	copy(out, s.order)
	return out
}

// Each visits components in insertion order. fn must not add or remove
// entries from this store.
func (s *PtrComponentStore[T]) Each(fn func(EntityID, *T)) {
	for _, id := range s.order {
		fn(id, s.data[id])
	}
}
