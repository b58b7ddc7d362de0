package netclient

// PingSmoother smooths latency samples with an exponential moving
// average so the displayed ping does not jitter with every probe.
type PingSmoother struct {
	alpha float64
	avg   float64
	init  bool
}

// NewPingSmoother creates a smoother. A smaller alpha smooths harder;
// out-of-range values fall back to 0.25.
func NewPingSmoother(alpha float64) *PingSmoother {
	if alpha <= 0 || alpha > 1 {
		alpha = 0.25
	}
	return &PingSmoother{alpha: alpha}
}

// Observe folds a sample in and returns the rounded running average.
// Negative samples are ignored and return the current average.
func (s *PingSmoother) Observe(pingMs float64) int {
	if pingMs < 0 {
		return int(s.avg + 0.5)
	}
	if !s.init {
		s.avg = pingMs
		s.init = true
	} else {
		s.avg = s.avg*(1-s.alpha) + pingMs*s.alpha
	}
	return int(s.avg + 0.5)
}

// Reset clears the average, typically across a reconnect.
func (s *PingSmoother) Reset() {
	s.avg = 0
	s.init = false
}
