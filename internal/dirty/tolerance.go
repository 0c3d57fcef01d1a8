package dirty

// Tolerance reports changed when the domain-specific distance between the
// current value and the last committed snapshot is at least Eps (spec §4.B
// "Tolerance", ">=" semantics per spec §8 Dirty-tracking-c).
type Tolerance[T any] struct {
	current  T
	previous T
	eps      float64
	distance DistanceFunc[T]
}

// NewTolerance returns a Tolerance wrapper around v with the given epsilon
// and distance function, initially committed.
func NewTolerance[T any](v T, eps float64, distance DistanceFunc[T]) *Tolerance[T] {
	return &Tolerance[T]{current: v, previous: v, eps: eps, distance: distance}
}

func (t *Tolerance[T]) Get() T { return t.current }

func (t *Tolerance[T]) GetMut() *T { return &t.current }

func (t *Tolerance[T]) Set(v T) { t.current = v }

func (t *Tolerance[T]) Changed() bool {
	return t.distance(t.current, t.previous) >= t.eps
}

func (t *Tolerance[T]) Commit() { t.previous = t.current }
