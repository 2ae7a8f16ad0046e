package normalize

import (
	"errors"
	"strings"

	"github.com/gm-tools/gmtools/internal/sentiment"
)

// NoSummary replaces a missing video summary.
const NoSummary = "No summary available"

// ErrMalformedVideo means the video response was not a JSON object at all.
var ErrMalformedVideo = errors.New("video response is not a JSON object")

// VideoSummary normalizes a video analysis response. Both backend variants
// are accepted: the three-way split (positive/negative/neutral) and the
// two-way split (positive/negative only). Missing percentages default to 0
// and a missing timeline to an empty one. Timeline values are mapped onto the
// canonical scale by c, classified, and filtered into highlights.
func VideoSummary(raw []byte, c *sentiment.Classifier) (sentiment.Summary, error) {
	sum := sentiment.Summary{
		Text:       NoSummary,
		Timeline:   []sentiment.Sample{},
		Highlights: []sentiment.Sample{},
	}

	m := object(raw)
	if m == nil {
		return sum, ErrMalformedVideo
	}

	sum.Positive, _ = fieldNum(m, "positive", "positivo")
	sum.Negative, _ = fieldNum(m, "negative", "negativo")
	sum.Neutral, sum.HasNeutral = fieldNum(m, "neutral", "neutro")

	if s := fieldStr(m, "summary", "resumen"); strings.TrimSpace(s) != "" {
		sum.Text = s
	}

	if v, ok := lookup(m, "timeline"); ok {
		if items, ok := array(v); ok {
			for _, it := range items {
				obj := object(it)
				if obj == nil {
					continue
				}
				var score *float64
				if f, ok := fieldNum(obj, "value", "score", "valor"); ok {
					score = &f
				}
				sum.Timeline = append(sum.Timeline, c.Sample(
					fieldStr(obj, "time", "tiempo"),
					fieldStr(obj, "word", "palabra"),
					fieldStr(obj, "sentiment", "sentimiento", "label"),
					score,
				))
			}
		}
	}

	sum.Highlights = c.DeriveHighlights(sum.Timeline)
	return sum, nil
}
