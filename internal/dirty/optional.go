package dirty

// Optional wraps a Value[T] with presence tracking. A Some<->None transition
// always counts as changed, regardless of whether the inner value's own
// comparison would consider it changed (spec §4.B "Optionals for Option<T>").
type Optional[T any] struct {
	inner   Value[T]
	present bool
	wasSet  bool
}

// NewOptionalNone returns an Optional with no value present, backed by inner
// for when a value is later set.
func NewOptionalNone[T any](inner Value[T]) *Optional[T] {
	return &Optional[T]{inner: inner, present: false, wasSet: false}
}

// Get returns the current value and whether it is present.
func (o *Optional[T]) Get() (T, bool) {
	return o.inner.Get(), o.present
}

// Set replaces the value and marks it present.
func (o *Optional[T]) Set(v T) {
	o.inner.Set(v)
	if !o.present {
		o.wasSet = true
	}
	o.present = true
}

// Clear removes the value, marking it absent.
func (o *Optional[T]) Clear() {
	if o.present {
		o.wasSet = true
	}
	o.present = false
}

// Changed reports a presence transition OR the inner value's own change.
func (o *Optional[T]) Changed() bool {
	return o.wasSet || o.inner.Changed()
}

// Commit clears the transition flag and commits the inner value.
func (o *Optional[T]) Commit() {
	o.wasSet = false
	o.inner.Commit()
}
