package report

// Summary condenses a result for terminal output.
type Summary struct {
	Gaps int
	// MaxOffset is the current_offset with the largest magnitude, sign kept.
	MaxOffset int64
	// TotalOffset is the final running sum.
	TotalOffset int64
}

// Summarize computes a Summary. Results without data yield a zero Summary.
func Summarize(r CheckResult) Summary {
	var s Summary
	for _, d := range r.Data {
		s.Gaps++
		if abs(d.CurrentOffset) > abs(s.MaxOffset) {
			s.MaxOffset = d.CurrentOffset
		}
		s.TotalOffset = d.TotalOffset
	}
	return s
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
