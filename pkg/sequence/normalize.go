package sequence

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/kittclouds/shotkit/pkg/extract"
	"github.com/kittclouds/shotkit/pkg/moment"
	"github.com/kittclouds/shotkit/pkg/scanner/resolver"
)

// ErrInvalidTarget is returned for a target count below 1
var ErrInvalidTarget = errors.New("sequence: target count must be at least 1")

// Expansion thresholds on the fractional source position
const (
	copyLowerBelow = 0.3
	copyUpperAbove = 0.7
)

// Normalize returns exactly target moments. Longer lists keep their first
// and last moments plus the most intense interior ones, in narrative order.
// Shorter lists are stretched by copying or interpolating neighbors. An
// empty list is replaced by the narrative arc template.
func Normalize(moments []moment.Moment, target int, sc moment.Context) ([]moment.Moment, error) {
	if target < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTarget, target)
	}

	switch n := len(moments); {
	case n == 0:
		return ArcTemplate(target, sc), nil
	case n == target:
		return moment.Clone(moments), nil
	case n > target:
		return reduce(moments, target), nil
	default:
		return expand(moments, target), nil
	}
}

func reduce(moments []moment.Moment, target int) []moment.Moment {
	n := len(moments)
	if target == 1 {
		return []moment.Moment{moments[0]}
	}

	interior := make([]int, 0, n-2)
	for i := 1; i < n-1; i++ {
		interior = append(interior, i)
	}
	// Highest intensity first; earlier index wins ties
	sort.SliceStable(interior, func(a, b int) bool {
		return moments[interior[a]].Intensity > moments[interior[b]].Intensity
	})

	keep := append([]int{0, n - 1}, interior[:target-2]...)
	sort.Ints(keep)

	out := make([]moment.Moment, 0, target)
	for _, i := range keep {
		out = append(out, moments[i])
	}
	return out
}

func expand(moments []moment.Moment, target int) []moment.Moment {
	n := len(moments)
	out := make([]moment.Moment, 0, target)
	span := math.Max(1, float64(target-1))

	for i := 0; i < target; i++ {
		pos := float64(i) / span * float64(n-1)
		lower := int(math.Floor(pos))
		if lower > n-1 {
			lower = n - 1
		}
		upper := lower + 1
		if upper > n-1 {
			upper = n - 1
		}
		frac := pos - float64(lower)

		switch {
		case lower == upper || frac < copyLowerBelow:
			out = append(out, moments[lower])
		case frac > copyUpperAbove:
			out = append(out, moments[upper])
		default:
			out = append(out, interpolate(moments[lower], moments[upper], frac))
		}
	}
	return out
}

func interpolate(lower, upper moment.Moment, frac float64) moment.Moment {
	m := lower
	m.Intensity = moment.Clamp(lower.Intensity + frac*(upper.Intensity-lower.Intensity))
	m.Interpolated = true
	m.Deduplicated = false
	if m.Subject == "" {
		m.Subject = upper.Subject
	}
	if m.Subject == "" {
		m.Subject = resolver.LabelDefault
	}
	if m.VisualDescription == "" {
		m.VisualDescription = m.Action
	}
	return m
}

type arcPoint struct {
	action  string
	emotion string
	phase   moment.Phase
}

// arcPoints is the standard story arc used when nothing could be extracted
var arcPoints = [...]arcPoint{
	{"observes", "curiosity", moment.PhaseSetup},
	{"approaches", "anticipation", moment.PhaseSetup},
	{"discovers", "surprise", moment.PhaseRising},
	{"confronts", "determination", moment.PhaseRising},
	{"struggles", "tension", moment.PhaseRising},
	{"faces", "tension", moment.PhaseClimax},
	{"overcomes", "triumph", moment.PhaseClimax},
	{"reflects", "contemplation", moment.PhaseFalling},
	{"resolves", "resolution", moment.PhaseResolution},
}

// ArcTemplate builds target narrative_arc moments from the standard arc
func ArcTemplate(target int, sc moment.Context) []moment.Moment {
	if target < 1 {
		return nil
	}

	var indices []int
	switch {
	case target <= 3:
		indices = []int{0, 5, 8}
	case target <= 5:
		indices = []int{0, 2, 5, 7, 8}
	default:
		last := len(arcPoints) - 1
		if target-1 < last {
			last = target - 1
		}
		for i := 0; i <= last; i++ {
			indices = append(indices, i)
		}
	}

	subject := sc.Lead()
	if subject == "" {
		subject = resolver.LabelProtagonist
	}

	moments := make([]moment.Moment, 0, len(indices))
	span := math.Max(1, float64(len(indices)-1))
	for i, idx := range indices {
		p := arcPoints[idx]
		moments = append(moments, moment.Moment{
			Action:            p.action,
			Subject:           subject,
			Emotion:           p.emotion,
			Intensity:         phaseIntensity(p.phase, float64(i)/span),
			VisualDescription: extract.Capitalize(subject) + " " + p.action + " the situation",
			Source:            moment.SourceNarrativeArc,
			ArcPhase:          p.phase,
		})
	}

	switch {
	case len(moments) > target:
		return reduce(moments, target)
	case len(moments) < target:
		return expand(moments, target)
	}
	return moments
}

func phaseIntensity(phase moment.Phase, progress float64) float64 {
	switch phase {
	case moment.PhaseSetup:
		return 0.3
	case moment.PhaseRising:
		return 0.5 + progress*0.2
	case moment.PhaseClimax:
		return 0.85
	case moment.PhaseFalling:
		return 0.6
	case moment.PhaseResolution:
		return 0.4
	}
	return 0.5
}
