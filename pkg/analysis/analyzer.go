// Package analysis provides high-level metrics for a decomposed sequence.
package analysis

import (
	"github.com/kittclouds/shotkit/pkg/moment"
)

// Summary holds the computed stats
type Summary struct {
	Count        int            `json:"count"`
	Arc          []float64      `json:"arc"`       // Intensity per moment
	PeakIndex    int            `json:"peakIndex"` // First moment at max intensity, -1 when empty
	Min          float64        `json:"min"`
	Max          float64        `json:"max"`
	Interpolated int            `json:"interpolated"`
	Deduplicated int            `json:"deduplicated"`
	Sources      map[string]int `json:"sources"`
	FlowScore    float64        `json:"flowScore"` // 0-100
	FlowTrend    []int          `json:"flowTrend"` // Sparkline data
}

// Summarize computes the full suite of metrics
func Summarize(moments []moment.Moment) Summary {
	s := Summary{
		Count:     len(moments),
		Arc:       moment.Intensities(moments),
		PeakIndex: -1,
		Sources:   make(map[string]int),
	}

	for i, m := range moments {
		if s.PeakIndex == -1 || m.Intensity > s.Max {
			s.Max = m.Intensity
			s.PeakIndex = i
		}
		if i == 0 || m.Intensity < s.Min {
			s.Min = m.Intensity
		}
		if m.Interpolated {
			s.Interpolated++
		}
		if m.Deduplicated {
			s.Deduplicated++
		}
		s.Sources[m.Source.String()]++
	}

	flow, trend := computeFlow(moments)

	// Ensure bounds 0-100
	if flow > 100 {
		flow = 100
	}
	if flow < 0 {
		flow = 0
	}
	s.FlowScore = flow
	s.FlowTrend = trend
	return s
}

// Range is the spread between the strongest and weakest moment
func (s Summary) Range() float64 {
	return s.Max - s.Min
}

// computeFlow scores subject continuity between consecutive moments
func computeFlow(moments []moment.Moment) (float64, []int) {
	if len(moments) < 2 {
		return 100.0, []int{100}
	}

	scores := make([]int, 0, len(moments))
	totalScore := 0.0

	// Initial score
	scores = append(scores, 100)
	totalScore += 100

	for i := 1; i < len(moments); i++ {
		prev, curr := moments[i-1], moments[i]

		// Base Friction (Entropy tax)
		score := 70

		switch {
		case curr.Subject != "" && curr.Subject == prev.Subject:
			score += 30 // Strong link
		case curr.Emotion == prev.Emotion:
			score += 15 // Weak link
		default:
			score -= 20 // Disconnected jump
		}

		// Clamp
		if score > 100 {
			score = 100
		}
		if score < 0 {
			score = 0
		}

		// Smoothing (Weighted Moving Average)
		// current = 0.7 * calc + 0.3 * prev_final
		prevFinal := scores[len(scores)-1]
		smoothed := int(0.7*float64(score) + 0.3*float64(prevFinal))

		scores = append(scores, smoothed)
		totalScore += float64(smoothed)
	}

	return totalScore / float64(len(scores)), scores
}
