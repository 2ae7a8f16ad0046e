// Package sentiment classifies timeline scores into buckets and picks out
// highlight moments.
//
// Scores are held on one canonical scale: 0 (most negative) to 100 (most
// positive). Backends that report other conventions are mapped onto it by a
// Polarity adapter before anything else looks at the value.
package sentiment

import (
	"fmt"
	"strings"
)

// Bucket is a discrete sentiment class.
type Bucket string

const (
	Unknown  Bucket = ""
	Negative Bucket = "negative"
	Neutral  Bucket = "neutral"
	Positive Bucket = "positive"
)

// Bucket boundaries on the canonical scale. Every integer in [0,100] falls in
// exactly one bucket: [0,32] negative, [33,65] neutral, [66,100] positive.
const (
	neutralFloor  = 33
	positiveFloor = 66
)

// Default highlight thresholds.
const (
	DefaultLow  = 25
	DefaultHigh = 95
)

// Classify maps a canonical score to its bucket.
func Classify(score float64) Bucket {
	switch {
	case score < neutralFloor:
		return Negative
	case score < positiveFloor:
		return Neutral
	default:
		return Positive
	}
}

// Polarity names the convention a backend uses for timeline values.
type Polarity string

const (
	// PolarityScore: values are already 0..100.
	PolarityScore Polarity = "score"
	// PolaritySigned: values run -100..100 with 0 as neutral.
	PolaritySigned Polarity = "signed"
	// PolarityMagnitude: values are unsigned magnitudes 0..100 and the
	// direction comes from the label; negative labels negate the value,
	// which is then read as PolaritySigned.
	PolarityMagnitude Polarity = "magnitude"
)

// ParsePolarity validates a polarity name. Empty means PolarityScore.
func ParsePolarity(s string) (Polarity, error) {
	switch p := Polarity(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolarityScore, nil
	case PolarityScore, PolaritySigned, PolarityMagnitude:
		return p, nil
	default:
		return "", fmt.Errorf("unknown polarity %q", s)
	}
}

// Canonical converts a raw backend value to the 0..100 scale.
// label is the upstream sentiment label; only PolarityMagnitude reads it.
func (p Polarity) Canonical(raw float64, label string) float64 {
	switch p {
	case PolaritySigned:
		return clamp((raw + 100) / 2)
	case PolarityMagnitude:
		if LabelBucket(label) == Negative && raw > 0 {
			raw = -raw
		}
		return clamp((raw + 100) / 2)
	default:
		return clamp(raw)
	}
}

// LabelBucket reads an upstream label in English or Spanish. It is used only
// by the magnitude adapter; buckets shown to users always come from Classify.
func LabelBucket(label string) Bucket {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "positive", "positivo", "pos":
		return Positive
	case "negative", "negativo", "neg":
		return Negative
	case "neutral", "neutro", "neu":
		return Neutral
	default:
		return Unknown
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Description is the caption shown next to a highlight of the given bucket.
func Description(b Bucket) string {
	switch b {
	case Positive:
		return "Strong positive sentiment detected"
	case Negative:
		return "Significant negative sentiment"
	default:
		return "Neutral or mixed opinion"
	}
}
