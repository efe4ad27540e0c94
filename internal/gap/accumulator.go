package gap

// Accumulator keeps one signed running sum of gap offsets across every
// category, in the order events are added.
type Accumulator struct {
	total int64
	count int
}

// Add folds ev into the running sum and returns ev with TotalOffset set to
// the sum including ev.
func (a *Accumulator) Add(ev Event) Event {
	a.total += ev.CurrentOffset
	a.count++
	ev.TotalOffset = a.total
	return ev
}

// Total returns the running sum.
func (a *Accumulator) Total() int64 {
	return a.total
}

// Count returns the number of events added.
func (a *Accumulator) Count() int {
	return a.count
}
