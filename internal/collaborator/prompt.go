package collaborator

import (
	"fmt"
	"strings"
)

// NotSpecified stands in for an empty character list
const NotSpecified = "Not specified"

// DefaultMood is used when the context has no mood
const DefaultMood = "neutral"

const promptTemplate = `Decompose this narration into %d distinct CINEMATIC MOMENTS for a video scene.

NARRATION: "%s"

CHARACTERS: %s
MOOD: %s

RULES:
1. Each moment must be VISUALLY DISTINCT - different action, different framing opportunity
2. Extract the SUBJECT (who) and ACTION (what they do) for each moment
3. Identify the EMOTION driving each moment
4. Moments should flow as a narrative progression (not random order)
5. Include at least one CLIMAX moment (highest emotion)

OUTPUT FORMAT (JSON array):
[
  {
    "action": "arrives in Shibuya crossing",
    "subject": "Jack",
    "emotion": "anticipation",
    "visualDescription": "Jack steps into the chaotic Shibuya crossing, neon lights reflecting off wet pavement"
  },
  ...
]

Return ONLY the JSON array, no explanation.`

// BuildPrompt creates the generation prompt for a request.
func BuildPrompt(req Request) string {
	mood := strings.TrimSpace(req.Context.Mood)
	if mood == "" {
		mood = DefaultMood
	}
	return fmt.Sprintf(promptTemplate,
		req.Target,
		strings.TrimSpace(req.Narration),
		FormatCharacters(req.Context.Cast()),
		mood,
	)
}

// FormatCharacters joins names for the prompt
func FormatCharacters(names []string) string {
	if len(names) == 0 {
		return NotSpecified
	}
	return strings.Join(names, ", ")
}
