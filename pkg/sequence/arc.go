// Package sequence shapes an extracted moment list into the final sequence:
// a dramatic intensity arc, an exact moment count and no back-to-back
// repeated actions.
package sequence

import (
	"math"

	"github.com/kittclouds/shotkit/pkg/moment"
)

// Arc constants for flat sequences
const (
	FlatTolerance = 0.1
	ClimaxAt      = 0.7

	openingIntensity = 0.3
	climaxIntensity  = 0.85
	fallSpan         = 0.35
)

// Shape imposes a rise-climax-fall arc when every intensity is within
// FlatTolerance of the first. Sequences that already vary are returned as a
// copy, unchanged.
func Shape(moments []moment.Moment) []moment.Moment {
	out := moment.Clone(moments)
	n := len(out)
	if n <= 1 || !flat(out) {
		return out
	}

	climax := int(float64(n) * ClimaxAt)
	if climax < 1 {
		climax = 1
	}

	for i := range out {
		switch {
		case i == 0:
			out[i].Intensity = openingIntensity
			out[i].Emotion = "anticipation"
		case i < climax:
			progress := float64(i) / float64(climax)
			out[i].Intensity = openingIntensity + progress*(climaxIntensity-openingIntensity)
		case i == climax:
			out[i].Intensity = climaxIntensity
		default:
			progress := float64(i-climax) / float64(n-climax)
			out[i].Intensity = climaxIntensity - progress*fallSpan
		}
		out[i].Intensity = moment.Clamp(out[i].Intensity)
	}
	return out
}

func flat(moments []moment.Moment) bool {
	first := moments[0].Intensity
	for _, m := range moments[1:] {
		if math.Abs(m.Intensity-first) > FlatTolerance {
			return false
		}
	}
	return true
}
