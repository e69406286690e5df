// Package moment defines the narrative moment: one distinct beat of a scene
// (who does what, feeling how strongly) that drives a single shot downstream.
package moment

import (
	"fmt"
	"strings"
)

// SourceTag records where a moment came from. Diagnostic only.
type SourceTag uint8

const (
	SourceNarrationAnalysis SourceTag = iota
	SourceAI
	SourceNarrativeArc
	SourceRawNarration
)

// String returns the wire name
func (s SourceTag) String() string {
	switch s {
	case SourceAI:
		return "ai"
	case SourceNarrationAnalysis:
		return "narration_analysis"
	case SourceNarrativeArc:
		return "narrative_arc"
	case SourceRawNarration:
		return "raw_narration"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (s SourceTag) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *SourceTag) UnmarshalText(b []byte) error {
	switch string(b) {
	case "ai":
		*s = SourceAI
	case "narration_analysis", "":
		*s = SourceNarrationAnalysis
	case "narrative_arc":
		*s = SourceNarrativeArc
	case "raw_narration":
		*s = SourceRawNarration
	default:
		return fmt.Errorf("moment: unknown source tag %q", string(b))
	}
	return nil
}

// Phase is the position of a template moment in the classic dramatic arc
type Phase uint8

const (
	PhaseNone Phase = iota
	PhaseSetup
	PhaseRising
	PhaseClimax
	PhaseFalling
	PhaseResolution
)

// String returns a readable name
func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "setup"
	case PhaseRising:
		return "rising"
	case PhaseClimax:
		return "climax"
	case PhaseFalling:
		return "falling"
	case PhaseResolution:
		return "resolution"
	default:
		return ""
	}
}

// MarshalText implements encoding.TextMarshaler
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (p *Phase) UnmarshalText(b []byte) error {
	for _, c := range []Phase{PhaseNone, PhaseSetup, PhaseRising, PhaseClimax, PhaseFalling, PhaseResolution} {
		if c.String() == string(b) {
			*p = c
			return nil
		}
	}
	return fmt.Errorf("moment: unknown arc phase %q", string(b))
}

// Moment is a single (subject, action, emotion, intensity) beat.
type Moment struct {
	Action            string    `json:"action"`
	Subject           string    `json:"subject"`
	Emotion           string    `json:"emotion"`
	Intensity         float64   `json:"intensity"` // 0-1, higher = tighter framing
	VisualDescription string    `json:"visualDescription"`
	Source            SourceTag `json:"source"`
	Interpolated      bool      `json:"interpolated,omitempty"` // Synthesized by expansion
	Deduplicated      bool      `json:"deduplicated,omitempty"` // Action rewritten with a progression marker
	ArcPhase          Phase     `json:"arcPhase,omitempty"`
}

// Clamp bounds an intensity to [0, 1]
func Clamp(v float64) float64 {
	if v != v { // NaN
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Intensities returns the emotional arc of a sequence, one value per moment.
func Intensities(moments []Moment) []float64 {
	arc := make([]float64, len(moments))
	for i, m := range moments {
		arc[i] = m.Intensity
	}
	return arc
}

// Clone returns a copy of the slice so callers can revise it freely.
func Clone(moments []Moment) []Moment {
	if moments == nil {
		return nil
	}
	out := make([]Moment, len(moments))
	copy(out, moments)
	return out
}

// Context is the optional scene information shared by every stage.
type Context struct {
	Characters    []string `json:"characters,omitempty"`
	MainCharacter string   `json:"mainCharacter,omitempty"`
	Mood          string   `json:"mood,omitempty"`
}

// Cast returns the characters with the main character first, without blanks
// or duplicates.
func (c Context) Cast() []string {
	seen := make(map[string]bool, len(c.Characters)+1)
	out := make([]string, 0, len(c.Characters)+1)
	for _, name := range append([]string{c.MainCharacter}, c.Characters...) {
		name = strings.TrimSpace(name)
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true
		out = append(out, name)
	}
	return out
}

// Lead returns the main character, else the first listed character
func (c Context) Lead() string {
	if cast := c.Cast(); len(cast) > 0 {
		return cast[0]
	}
	return ""
}
