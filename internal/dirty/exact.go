package dirty

// Exact reports changed whenever the current value is not equal to the
// snapshot taken at the last Commit (spec §4.B "Exact").
type Exact[T comparable] struct {
	current  T
	previous T
}

// NewExact returns an Exact wrapper with both current and previous set to v,
// i.e. freshly committed.
func NewExact[T comparable](v T) *Exact[T] {
	return &Exact[T]{current: v, previous: v}
}

func (e *Exact[T]) Get() T { return e.current }

func (e *Exact[T]) GetMut() *T { return &e.current }

func (e *Exact[T]) Set(v T) { e.current = v }

func (e *Exact[T]) Changed() bool { return e.current != e.previous }

func (e *Exact[T]) Commit() { e.previous = e.current }
