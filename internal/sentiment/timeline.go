package sentiment

// Sample is one timeline point.
type Sample struct {
	Time   string   // opaque ordering label from the backend
	Word   string   // optional keyword for the moment
	Raw    *float64 // value as received; nil when missing or non-numeric
	Label  string   // upstream label, informational only
	Score  *float64 // canonical 0..100 score; nil when Raw is nil
	Bucket Bucket   // derived from Score; Unknown when Score is nil
}

// Summary is the aggregate result of one video analysis.
type Summary struct {
	Positive   float64
	Negative   float64
	Neutral    float64
	HasNeutral bool // false for the two-way backend variant
	Text       string
	Timeline   []Sample
	Highlights []Sample
}

// Dominant returns the bucket with the largest share. Ties go to positive,
// then negative.
func (s Summary) Dominant() Bucket {
	switch {
	case s.Positive >= s.Negative && s.Positive >= s.Neutral:
		return Positive
	case s.Negative >= s.Positive && s.Negative >= s.Neutral:
		return Negative
	default:
		return Neutral
	}
}

// Classifier applies one polarity convention and one pair of highlight
// thresholds uniformly.
type Classifier struct {
	Polarity Polarity
	Low      float64
	High     float64
}

// NewClassifier returns a Classifier. Zero thresholds fall back to the defaults.
func NewClassifier(p Polarity, low, high float64) *Classifier {
	if p == "" {
		p = PolarityScore
	}
	if low == 0 && high == 0 {
		low, high = DefaultLow, DefaultHigh
	}
	return &Classifier{Polarity: p, Low: low, High: high}
}

// Sample builds a classified sample from a raw backend value.
func (c *Classifier) Sample(time, word, label string, raw *float64) Sample {
	s := Sample{Time: time, Word: word, Label: label}
	if raw == nil {
		return s
	}
	r := *raw
	score := c.Polarity.Canonical(r, label)
	s.Raw = &r
	s.Score = &score
	s.Bucket = Classify(score)
	return s
}

// IsHighlight reports whether a sample crosses either extreme threshold.
// Samples without a score never qualify.
func (c *Classifier) IsHighlight(s Sample) bool {
	if s.Score == nil {
		return false
	}
	return *s.Score >= c.High || *s.Score <= c.Low
}

// DeriveHighlights returns the samples crossing a threshold, in input order.
func (c *Classifier) DeriveHighlights(timeline []Sample) []Sample {
	out := make([]Sample, 0)
	for _, s := range timeline {
		if c.IsHighlight(s) {
			out = append(out, s)
		}
	}
	return out
}
