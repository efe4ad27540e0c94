package gap

// bucket counts how often one delta value was observed during warmup.
type bucket struct {
	delta int64
	count int
}

// Baseline learns the nominal timestamp increment of one category.
//
// The first limit non-negative deltas are counted; the most frequent one is
// the expected delta, ties going to the value observed first. Once limit
// samples have been taken the baseline is frozen. Before any sample exists
// Expected returns the fallback.
type Baseline struct {
	fallback int64
	limit    int
	samples  int
	buckets  []bucket
	best     int // index into buckets, -1 when empty
}

// NewBaseline returns a baseline that freezes after limit samples.
func NewBaseline(fallback int64, limit int) Baseline {
	return Baseline{fallback: fallback, limit: limit, best: -1}
}

// Expected returns the current nominal delta.
func (b *Baseline) Expected() int64 {
	if b.best < 0 {
		return b.fallback
	}
	return b.buckets[b.best].delta
}

// Frozen reports whether the warmup window is full.
func (b *Baseline) Frozen() bool {
	return b.samples >= b.limit
}

// Samples returns the number of deltas taken so far.
func (b *Baseline) Samples() int {
	return b.samples
}

// Add records a non-negative delta while warming up. It reports whether the
// sample was taken.
func (b *Baseline) Add(delta int64) bool {
	if delta < 0 || b.Frozen() {
		return false
	}
	b.samples++

	i := b.find(delta)
	if i < 0 {
		b.buckets = append(b.buckets, bucket{delta: delta})
		i = len(b.buckets) - 1
	}
	b.buckets[i].count++

	// Buckets are kept in first-seen order, so a strictly greater count is
	// needed to displace the current leader.
	if b.best < 0 || b.buckets[i].count > b.buckets[b.best].count {
		b.best = i
	}
	return true
}

func (b *Baseline) find(delta int64) int {
	for i := range b.buckets {
		if b.buckets[i].delta == delta {
			return i
		}
	}
	return -1
}
