package dirty

// Manual tracks change via a single boolean flag, set whenever a mutation
// accessor is used, regardless of whether the new value actually differs
// from the old one (spec §4.B "Manual").
type Manual[T any] struct {
	current T
	dirty   bool
}

// NewManual returns a Manual wrapper around v, initially clean.
func NewManual[T any](v T) *Manual[T] {
	return &Manual[T]{current: v}
}

func (m *Manual[T]) Get() T { return m.current }

func (m *Manual[T]) GetMut() *T {
	m.dirty = true
	return &m.current
}

func (m *Manual[T]) Set(v T) {
	m.current = v
	m.dirty = true
}

func (m *Manual[T]) Changed() bool { return m.dirty }

func (m *Manual[T]) Commit() { m.dirty = false }
