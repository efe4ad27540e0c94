// Package gap detects timestamp discontinuities in an FLV tag stream.
package gap

import (
	"github.com/five82/flvgap/internal/config"
	"github.com/five82/flvgap/internal/flv"
	"github.com/five82/flvgap/internal/logging"
)

// Category is a tracked tag category.
type Category int

const (
	CategoryAudio Category = iota
	CategoryVideo

	numCategories
)

// String returns the lower-case category name.
func (c Category) String() string {
	switch c {
	case CategoryAudio:
		return "audio"
	case CategoryVideo:
		return "video"
	default:
		return "unknown"
	}
}

// CategoryOf maps a tag type to its tracked category. Script tags are not
// tracked.
func CategoryOf(t flv.TagType) (Category, bool) {
	switch t {
	case flv.TagAudio:
		return CategoryAudio, true
	case flv.TagVideo:
		return CategoryVideo, true
	default:
		return 0, false
	}
}

// Event describes one discontinuity between two consecutive tags of the
// same category.
type Event struct {
	Category Category
	IDFrom   int
	IDTo     int
	TmFrom   int64
	TmTo     int64
	// Expected is the delta the detector was expecting.
	Expected int64
	// CurrentOffset is the observed delta minus Expected.
	CurrentOffset int64
	// TotalOffset is filled in by an Accumulator.
	TotalOffset int64
}

// Delta returns the observed timestamp delta.
func (e Event) Delta() int64 {
	return e.TmTo - e.TmFrom
}

type stream struct {
	seen     bool
	lastID   int
	lastTS   int64
	baseline Baseline

	// undecided counts queued deltas waiting for the baseline to freeze.
	undecided int
}

// entry is one queued delta. Deltas seen while a category warms up wait
// here until its baseline freezes; judged gaps of the other category queue
// up behind them so events leave in tag order.
type entry struct {
	ev      Event
	decided bool
	flagged bool
}

// Detector tracks per-category timestamp progression. It is not safe for
// concurrent use; each check owns its own Detector.
//
// Deltas seen while a category's baseline is warming up are judged once the
// baseline freezes, or at Flush, so an irregular first interval is measured
// against the learned cadence instead of defining it.
type Detector struct {
	tolerance int64
	streams   [numCategories]stream
	queue     []entry
	log       *logging.Logger
}

// NewDetector creates a detector from a validated config. log may be nil.
func NewDetector(cfg *config.Config, log *logging.Logger) *Detector {
	if log == nil {
		log = logging.Discard()
	}
	d := &Detector{tolerance: cfg.Tolerance, log: log}
	d.streams[CategoryAudio].baseline = NewBaseline(cfg.AudioDelta, cfg.WarmupSamples)
	d.streams[CategoryVideo].baseline = NewBaseline(cfg.VideoDelta, cfg.WarmupSamples)
	return d
}

// Observe feeds the next tag in stream order and returns the gap events
// that became final with it, in tag order. Call Flush after the last tag.
func (d *Detector) Observe(tag flv.Tag) []Event {
	cat, ok := CategoryOf(tag.Type)
	if !ok || tag.Sequence {
		return nil
	}
	s := &d.streams[cat]

	if !s.seen {
		s.seen = true
		s.lastID, s.lastTS = tag.ID, tag.Timestamp
		return nil
	}

	ev := Event{
		Category: cat,
		IDFrom:   s.lastID,
		IDTo:     tag.ID,
		TmFrom:   s.lastTS,
		TmTo:     tag.Timestamp,
	}
	s.lastID, s.lastTS = tag.ID, tag.Timestamp

	if s.baseline.Frozen() {
		if !d.judge(&ev, s.baseline.Expected()) {
			return nil
		}
		if len(d.queue) == 0 {
			return []Event{ev}
		}
		d.queue = append(d.queue, entry{ev: ev, decided: true, flagged: true})
		return d.release()
	}

	d.queue = append(d.queue, entry{ev: ev})
	s.undecided++
	if s.baseline.Add(ev.Delta()) && s.baseline.Frozen() {
		d.log.Debug("baseline frozen",
			"category", cat.String(),
			"expected_delta", s.baseline.Expected(),
			"samples", s.baseline.Samples())
		d.resolve(cat)
	}
	return d.release()
}

// Flush judges every delta still waiting on a baseline against what was
// learned so far and returns the remaining events in tag order.
func (d *Detector) Flush() []Event {
	for c := Category(0); c < numCategories; c++ {
		d.resolve(c)
	}
	return d.release()
}

// resolve decides the queued deltas of one category.
func (d *Detector) resolve(cat Category) {
	s := &d.streams[cat]
	if s.undecided == 0 {
		return
	}
	expected := s.baseline.Expected()
	for i := range d.queue {
		e := &d.queue[i]
		if e.decided || e.ev.Category != cat {
			continue
		}
		e.flagged = d.judge(&e.ev, expected)
		e.decided = true
	}
	s.undecided = 0
}

// release pops the decided prefix of the queue and returns its gaps.
func (d *Detector) release() []Event {
	n := 0
	for n < len(d.queue) && d.queue[n].decided {
		n++
	}
	if n == 0 {
		return nil
	}
	var out []Event
	for _, e := range d.queue[:n] {
		if e.flagged {
			out = append(out, e.ev)
		}
	}
	rest := copy(d.queue, d.queue[n:])
	d.queue = d.queue[:rest]
	return out
}

// judge fills in Expected and CurrentOffset and reports whether ev is a gap.
func (d *Detector) judge(ev *Event, expected int64) bool {
	delta := ev.Delta()
	ev.Expected = expected
	ev.CurrentOffset = delta - expected
	return delta < 0 || abs(ev.CurrentOffset) > d.tolerance
}

// Expected returns the current nominal delta of a category.
func (d *Detector) Expected(c Category) int64 {
	return d.streams[c].baseline.Expected()
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
