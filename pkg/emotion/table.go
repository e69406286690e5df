// Package emotion maps emotion keywords to a normalized intensity and action
// verbs to the emotion they imply. Higher intensity = tighter framing.
package emotion

import (
	"strings"
	"unicode"

	"github.com/kittclouds/shotkit/pkg/moment"
	"github.com/kittclouds/shotkit/pkg/scanner/narrative"
)

// Defaults for keys absent from the table
const (
	DefaultIntensity = 0.5
	DefaultEmotion   = "focus"
)

// defaultIntensities is the emotion -> intensity mapping
var defaultIntensities = map[string]float64{
	// Low (0.15-0.3): wide / establishing
	"calm":          0.2,
	"arrival":       0.25,
	"observation":   0.2,
	"anticipation":  0.3,
	"contemplation": 0.25,
	"peace":         0.15,
	"reflection":    0.2,

	// Lower-mid (0.35-0.5)
	"curiosity":    0.4,
	"conversation": 0.45,
	"engagement":   0.5,
	"interest":     0.35,
	"awareness":    0.35,
	"dialogue":     0.45,

	// Mid (0.5-0.65)
	"recognition": 0.55,
	"concern":     0.6,
	"focus":       0.5,
	"attention":   0.5,
	"interaction": 0.5,
	"tension":     0.65,

	// High (0.7-0.8)
	"urgency":       0.75,
	"frustration":   0.7,
	"determination": 0.75,
	"realization":   0.8,
	"surprise":      0.75,
	"anger":         0.75,
	"sadness":       0.7,
	"chase":         0.8,
	"action":        0.75,

	// Peak (0.85-1.0)
	"fear":          0.85,
	"confrontation": 0.9,
	"revelation":    0.95,
	"climax":        1.0,
	"shock":         0.9,
	"despair":       0.85,
	"triumph":       0.9,

	"resolution": 0.5, // resolution drops intensity
}

// defaultVerbs is the action verb -> emotion mapping, keyed by canonical form
var defaultVerbs = map[string]string{
	// Movement: entry / observation
	"arrives":    "arrival",
	"enters":     "arrival",
	"walks":      "calm",
	"approaches": "anticipation",
	"moves":      "focus",
	"steps":      "focus",
	"turns":      "attention",
	"reaches":    "focus",
	"falls":      "shock",
	"retreats":   "fear",

	// Perception
	"spots":    "recognition",
	"notices":  "awareness",
	"sees":     "recognition",
	"watches":  "observation",
	"observes": "observation",
	"looks":    "attention",
	"scans":    "anticipation",
	"searches": "urgency",
	"finds":    "recognition",

	// High-energy movement
	"runs":    "urgency",
	"chases":  "chase",
	"races":   "urgency",
	"rushes":  "urgency",
	"dashes":  "action",
	"sprints": "chase",
	"flees":   "fear",
	"escapes": "fear",
	"pushes":  "action",

	// Communication
	"speaks":    "dialogue",
	"says":      "dialogue",
	"tells":     "conversation",
	"asks":      "curiosity",
	"demands":   "confrontation",
	"shouts":    "urgency",
	"whispers":  "tension",
	"confesses": "revelation",
	"reveals":   "revelation",
	"meets":     "interaction",
	"greets":    "engagement",
	"argues":    "anger",
	"agrees":    "engagement",
	"refuses":   "determination",

	// Emotional response
	"realizes":    "realization",
	"discovers":   "revelation",
	"understands": "realization",
	"fears":       "fear",
	"worries":     "concern",
	"hesitates":   "tension",
	"pauses":      "tension",
	"reflects":    "contemplation",

	// Confrontation
	"confronts":  "confrontation",
	"faces":      "determination",
	"challenges": "confrontation",
	"fights":     "action",
	"attacks":    "action",
	"defends":    "action",
	"struggles":  "tension",
	"grabs":      "action",
	"pulls":      "action",
	"throws":     "action",

	// Resolution
	"loses":      "frustration",
	"fails":      "despair",
	"succeeds":   "triumph",
	"wins":       "triumph",
	"accepts":    "resolution",
	"leaves":     "resolution",
	"departs":    "resolution",
	"surrenders": "despair",
	"sacrifices": "determination",
	"transforms": "revelation",
	"overcomes":  "triumph",
	"resolves":   "resolution",

	// State
	"stands": "determination",
	"sits":   "calm",
	"waits":  "anticipation",
	"hides":  "fear",
	"holds":  "tension",
	"drops":  "shock",
	"opens":  "curiosity",
	"closes": "resolution",
}

// cue is an adverb/adjective hint used when the phrase has no mapped verb
type cue struct {
	words   []string
	emotion string
}

var defaultCues = []cue{
	{[]string{"suddenly", "quickly", "urgently", "frantically"}, "urgency"},
	{[]string{"slowly", "carefully", "quietly", "gently"}, "calm"},
	{[]string{"alone", "empty", "silent", "dark"}, "tension"},
}

// Table is an immutable lookup table. Build one with Default, New or Load and
// share it freely; nothing writes to it after construction.
type Table struct {
	intensities map[string]float64
	verbs       map[string]string // stem -> emotion
	cues        []cue
}

var defaultTable = mustBuild(Options{})

// Default returns the built-in table
func Default() *Table {
	return defaultTable
}

// IntensityOf returns the normalized intensity for an emotion keyword,
// DefaultIntensity when the keyword is unknown.
func (t *Table) IntensityOf(emotion string) float64 {
	if v, ok := t.intensities[normalize(emotion)]; ok {
		return v
	}
	return DefaultIntensity
}

// EmotionOfActionVerb returns the emotion implied by a verb in any
// inflection, DefaultEmotion when the verb is unknown.
func (t *Table) EmotionOfActionVerb(verb string) string {
	if e, ok := t.verbs[narrative.Stem(trimWord(verb))]; ok {
		return e
	}
	return DefaultEmotion
}

// Known reports whether the emotion keyword has an intensity entry
func (t *Table) Known(emotion string) bool {
	_, ok := t.intensities[normalize(emotion)]
	return ok
}

// InferEmotion reads an action phrase: the first mapped verb wins, then
// adverb cues, then DefaultEmotion.
func (t *Table) InferEmotion(text string) string {
	words := strings.Fields(strings.ToLower(text))
	for _, w := range words {
		if e, ok := t.verbs[narrative.Stem(trimWord(w))]; ok {
			return e
		}
	}
	for _, c := range t.cues {
		for _, w := range words {
			w = trimWord(w)
			for _, cw := range c.words {
				if w == cw {
					return c.emotion
				}
			}
		}
	}
	return DefaultEmotion
}

// Score gives the (emotion, intensity) pair for an action phrase
func (t *Table) Score(text string) (string, float64) {
	e := t.InferEmotion(text)
	return e, t.IntensityOf(e)
}

// Emotions lists every emotion keyword with an intensity
func (t *Table) Emotions() []string {
	out := make([]string, 0, len(t.intensities))
	for e := range t.intensities {
		out = append(out, e)
	}
	return out
}

// VerbEmotions returns a copy of the stem -> emotion mapping
func (t *Table) VerbEmotions() map[string]string {
	out := make(map[string]string, len(t.verbs))
	for k, v := range t.verbs {
		out[k] = v
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func trimWord(w string) string {
	return strings.TrimFunc(w, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

func clampMap(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[normalize(k)] = moment.Clamp(v)
	}
	return out
}
