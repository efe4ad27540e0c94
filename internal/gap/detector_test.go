package gap

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/flvgap/internal/config"
	"github.com/five82/flvgap/internal/flv"
)

// tagStream assigns sequential ids to tags as a Reader would.
type tagStream struct {
	tags []flv.Tag
}

func (s *tagStream) add(typ flv.TagType, ts int64) {
	s.tags = append(s.tags, flv.Tag{Type: typ, ID: len(s.tags), Timestamp: ts})
}

func (s *tagStream) addSequence(typ flv.TagType, ts int64) {
	s.tags = append(s.tags, flv.Tag{Type: typ, ID: len(s.tags), Timestamp: ts, Sequence: true})
}

func (s *tagStream) video(ts ...int64) {
	for _, v := range ts {
		s.add(flv.TagVideo, v)
	}
}

func (s *tagStream) audio(ts ...int64) {
	for _, v := range ts {
		s.add(flv.TagAudio, v)
	}
}

func detect(cfg *config.Config, tags []flv.Tag) []Event {
	d := NewDetector(cfg, nil)
	var acc Accumulator
	var events []Event
	for _, tag := range tags {
		for _, ev := range d.Observe(tag) {
			events = append(events, acc.Add(ev))
		}
	}
	for _, ev := range d.Flush() {
		events = append(events, acc.Add(ev))
	}
	return events
}

func TestDetectorNoGaps(t *testing.T) {
	var s tagStream
	for i := int64(0); i < 50; i++ {
		s.video(i * 40)
		s.audio(i * 23)
	}

	assert.Empty(t, detect(config.NewConfig(), s.tags))
}

func TestDetectorSingleGap(t *testing.T) {
	var s tagStream
	s.video(0, 40, 80, 120, 200, 240)

	events := detect(config.NewConfig(), s.tags)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, CategoryVideo, ev.Category)
	assert.Equal(t, 3, ev.IDFrom)
	assert.Equal(t, 4, ev.IDTo)
	assert.Equal(t, int64(120), ev.TmFrom)
	assert.Equal(t, int64(200), ev.TmTo)
	assert.Equal(t, int64(40), ev.Expected)
	assert.Equal(t, int64(40), ev.CurrentOffset)
	assert.Equal(t, int64(40), ev.TotalOffset)
	assert.Equal(t, int64(80), ev.Delta())
}

func TestDetectorToleranceBoundary(t *testing.T) {
	tests := []struct {
		name      string
		tolerance int64
		jitter    int64
		wantGap   bool
	}{
		{name: "within default tolerance", tolerance: 1, jitter: 1, wantGap: false},
		{name: "one past default tolerance", tolerance: 1, jitter: 2, wantGap: true},
		{name: "early frame within tolerance", tolerance: 1, jitter: -1, wantGap: false},
		{name: "early frame past tolerance", tolerance: 1, jitter: -2, wantGap: true},
		{name: "zero tolerance flags any jitter", tolerance: 0, jitter: 1, wantGap: true},
		{name: "wide tolerance", tolerance: 5, jitter: 5, wantGap: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewConfig()
			cfg.Tolerance = tt.tolerance

			var s tagStream
			s.video(0, 40, 80, 120+tt.jitter)
			events := detect(cfg, s.tags)

			if tt.wantGap {
				require.Len(t, events, 1)
				assert.Equal(t, tt.jitter, events[0].CurrentOffset)
			} else {
				assert.Empty(t, events)
			}
		})
	}
}

func TestDetectorBackwardTimestamp(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Tolerance = 1000

	var s tagStream
	s.video(0, 40, 80, 79)
	events := detect(cfg, s.tags)

	require.Len(t, events, 1)
	assert.Equal(t, int64(80), events[0].TmFrom)
	assert.Equal(t, int64(79), events[0].TmTo)
	assert.Equal(t, int64(-41), events[0].CurrentOffset)
}

func TestDetectorBackwardFirstDelta(t *testing.T) {
	// Negative deltas never feed the baseline, so with nothing else learned
	// the fallback is the expected delta.
	var s tagStream
	s.video(100, 60)
	events := detect(config.NewConfig(), s.tags)

	require.Len(t, events, 1)
	assert.Equal(t, int64(config.DefaultVideoDelta), events[0].Expected)
	assert.Equal(t, int64(-40-config.DefaultVideoDelta), events[0].CurrentOffset)
}

func TestDetectorNoCompounding(t *testing.T) {
	// After a jump the next regular delta is measured from the new position.
	var s tagStream
	s.video(0, 40, 80, 1000, 1040, 1080)

	events := detect(config.NewConfig(), s.tags)
	require.Len(t, events, 1)
	assert.Equal(t, 3, events[0].IDTo)
}

func TestDetectorCategoriesIndependent(t *testing.T) {
	var s tagStream
	s.video(0)
	s.audio(0)
	s.video(40)
	s.audio(23)
	s.video(80)
	s.audio(46)
	s.video(120)
	s.audio(500) // audio jump
	s.video(160)

	events := detect(config.NewConfig(), s.tags)
	require.Len(t, events, 1)
	assert.Equal(t, CategoryAudio, events[0].Category)
	assert.Equal(t, 5, events[0].IDFrom)
	assert.Equal(t, 7, events[0].IDTo)
	assert.Equal(t, int64(500-46-23), events[0].CurrentOffset)
}

func TestDetectorSkipsScriptAndSequenceTags(t *testing.T) {
	var s tagStream
	s.add(flv.TagScript, 0)
	s.addSequence(flv.TagVideo, 0)
	s.addSequence(flv.TagAudio, 0)
	s.video(1000, 1040, 1080)
	s.add(flv.TagScript, 5)
	s.addSequence(flv.TagVideo, 9999)
	s.video(1120)

	assert.Empty(t, detect(config.NewConfig(), s.tags))
}

func TestDetectorSingleTagCategory(t *testing.T) {
	var s tagStream
	s.video(0, 40, 80)
	s.audio(123456)

	assert.Empty(t, detect(config.NewConfig(), s.tags))
}

func TestDetectorIrregularFirstInterval(t *testing.T) {
	var s tagStream
	s.video(0, 100)
	for ts := int64(140); ts <= 600; ts += 40 {
		s.video(ts)
	}

	events := detect(config.NewConfig(), s.tags)
	require.Len(t, events, 1)
	assert.Equal(t, 0, events[0].IDFrom)
	assert.Equal(t, 1, events[0].IDTo)
	assert.Equal(t, int64(40), events[0].Expected)
	assert.Equal(t, int64(60), events[0].CurrentOffset)
	assert.Equal(t, int64(60), events[0].TotalOffset)
}

func TestDetectorConsecutiveEarlyJumps(t *testing.T) {
	var s tagStream
	s.video(0, 40, 140, 240)
	for ts := int64(280); ts <= 600; ts += 40 {
		s.video(ts)
	}

	events := detect(config.NewConfig(), s.tags)
	require.Len(t, events, 2)
	assert.Equal(t, []int{2, 3}, []int{events[0].IDTo, events[1].IDTo})
	assert.Equal(t, []int64{60, 60}, []int64{events[0].CurrentOffset, events[1].CurrentOffset})
	assert.Equal(t, int64(120), events[1].TotalOffset)
}

func TestDetectorWarmupMajorityDefinesCadence(t *testing.T) {
	// 40 comes first but 33 dominates the warmup window.
	var s tagStream
	s.video(0, 40, 73, 106, 139, 172)

	events := detect(config.NewConfig(), s.tags)
	require.Len(t, events, 1)
	assert.Equal(t, 1, events[0].IDTo)
	assert.Equal(t, int64(33), events[0].Expected)
	assert.Equal(t, int64(7), events[0].CurrentOffset)
}

func TestDetectorHoldsEventsUntilDecided(t *testing.T) {
	cfg := config.NewConfig()
	cfg.WarmupSamples = 3

	var s tagStream
	s.video(0, 40, 80, 120) // video baseline frozen at 40
	s.audio(0, 100)         // audio jump while audio is warming up
	s.video(200)            // video gap, decided at once
	s.audio(123, 146)       // audio freezes at 23

	d := NewDetector(cfg, nil)
	var events []Event
	for _, tag := range s.tags {
		got := d.Observe(tag)
		if tag.ID == 6 {
			assert.Empty(t, got, "video gap must wait behind the undecided audio delta")
		}
		events = append(events, got...)
	}
	assert.Empty(t, d.Flush())

	require.Len(t, events, 2)
	assert.Equal(t, CategoryAudio, events[0].Category)
	assert.Equal(t, int64(77), events[0].CurrentOffset)
	assert.Equal(t, CategoryVideo, events[1].Category)
	assert.Equal(t, int64(40), events[1].CurrentOffset)
}

func TestDetectorFlushJudgesShortStreams(t *testing.T) {
	var s tagStream
	s.video(0, 40, 80, 200)

	d := NewDetector(config.NewConfig(), nil)
	for _, tag := range s.tags {
		assert.Empty(t, d.Observe(tag))
	}
	events := d.Flush()
	require.Len(t, events, 1)
	assert.Equal(t, int64(80), events[0].CurrentOffset)
	assert.Empty(t, d.Flush())
}

func TestDetectorFallbackUsedWithoutSamples(t *testing.T) {
	d := NewDetector(config.NewConfig(), nil)
	assert.Equal(t, config.DefaultVideoDelta, d.Expected(CategoryVideo))
	assert.Equal(t, config.DefaultAudioDelta, d.Expected(CategoryAudio))
}

func TestAccumulatorSignedSum(t *testing.T) {
	var acc Accumulator
	var totals []int64
	for _, off := range []int64{5, -2, 3} {
		totals = append(totals, acc.Add(Event{CurrentOffset: off}).TotalOffset)
	}
	assert.Equal(t, []int64{5, 3, 6}, totals)
	assert.Equal(t, int64(6), acc.Total())
	assert.Equal(t, 3, acc.Count())
}

func TestAccumulatorAcrossCategories(t *testing.T) {
	var s tagStream
	s.video(0, 40, 80, 125) // +5
	s.audio(0, 23, 46, 67)  // -2
	s.video(168)            // +3

	events := detect(config.NewConfig(), s.tags)
	require.Len(t, events, 3)
	assert.Equal(t, []int64{5, -2, 3}, []int64{events[0].CurrentOffset, events[1].CurrentOffset, events[2].CurrentOffset})
	assert.Equal(t, []int64{5, 3, 6}, []int64{events[0].TotalOffset, events[1].TotalOffset, events[2].TotalOffset})
}

func TestCategoryString(t *testing.T) {
	assert.Equal(t, "audio", CategoryAudio.String())
	assert.Equal(t, "video", CategoryVideo.String())
	assert.Equal(t, "unknown", Category(7).String())

	_, ok := CategoryOf(flv.TagScript)
	assert.False(t, ok)
}

func TestDetectorProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("uniform cadence never produces a gap", prop.ForAll(
		func(start, videoDelta, audioDelta int64, n int) bool {
			var s tagStream
			for i := int64(0); i < int64(n); i++ {
				s.video(start + i*videoDelta)
				s.audio(start + i*audioDelta)
			}
			return len(detect(config.NewConfig(), s.tags)) == 0
		},
		gen.Int64Range(-1000, 100000),
		gen.Int64Range(0, 1000),
		gen.Int64Range(0, 1000),
		gen.IntRange(0, 100),
	))

	properties.Property("one jump of K after uniform delta D yields one gap of K", prop.ForAll(
		func(d, k int64, n int) bool {
			var s tagStream
			ts := int64(0)
			for i := 0; i < n; i++ {
				s.video(ts)
				ts += d
			}
			s.video(ts + k)
			events := detect(config.NewConfig(), s.tags)
			return len(events) == 1 &&
				events[0].CurrentOffset == k &&
				events[0].TotalOffset == k &&
				events[0].IDTo == n
		},
		gen.Int64Range(1, 500),
		gen.Int64Range(config.DefaultTolerance+1, 100000),
		gen.IntRange(2, 60),
	))

	properties.Property("backward timestamps are always gaps", prop.ForAll(
		func(d, back, tolerance int64) bool {
			cfg := config.NewConfig()
			cfg.Tolerance = tolerance
			var s tagStream
			s.video(0, d, 2*d, 2*d-back)
			events := detect(cfg, s.tags)
			return len(events) == 1 && events[0].TmTo < events[0].TmFrom
		},
		gen.Int64Range(1, 500),
		gen.Int64Range(1, 1000),
		gen.Int64Range(0, config.MaxTolerance),
	))

	properties.Property("total offset is the signed prefix sum", prop.ForAll(
		func(offsets []int64) bool {
			var acc Accumulator
			var sum int64
			for _, off := range offsets {
				sum += off
				if acc.Add(Event{CurrentOffset: off}).TotalOffset != sum {
					return false
				}
			}
			return acc.Total() == sum && acc.Count() == len(offsets)
		},
		gen.SliceOf(gen.Int64Range(-100000, 100000)),
	))

	properties.TestingRun(t)
}
