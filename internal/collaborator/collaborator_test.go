package collaborator

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/kittclouds/shotkit/pkg/moment"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const reply = `Sure! Here are the moments:
[
  {"action": "arrives in Shibuya", "subject": "Jack", "emotion": "Arrival", "visualDescription": "Jack steps into the crossing"},
  {"action": "spots a stranger", "subject": "Jack", "emotion": "recognition"},
  {"action": "chases them", "subject": "Jack", "emotion": "chase", "intensity": 0.1}
]
Hope this helps.`

func TestDecompose(t *testing.T) {
	var calls atomic.Int32
	var prompt string
	gen := Func(func(ctx context.Context, p string) (string, error) {
		calls.Add(1)
		prompt = p
		return reply, nil
	})

	n := NewNarrator(gen)
	got, err := n.Decompose(context.Background(), Request{
		Narration: "Jack arrives in Shibuya and spots a stranger.",
		Target:    3,
		Context:   moment.Context{Characters: []string{"Jack"}, Mood: "tense"},
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	require.Len(t, got, 3)
	assert.Equal(t, "arrival", got[0].Emotion)
	assert.Equal(t, 0.25, got[0].Intensity)
	assert.Equal(t, "Jack steps into the crossing", got[0].VisualDescription)
	assert.Equal(t, "Jack spots a stranger", got[1].VisualDescription)
	assert.Equal(t, 0.8, got[2].Intensity, "intensity is recomputed locally")
	for _, m := range got {
		assert.Equal(t, moment.SourceAI, m.Source)
	}

	assert.Contains(t, prompt, `NARRATION: "Jack arrives in Shibuya and spots a stranger."`)
	assert.Contains(t, prompt, "CHARACTERS: Jack")
	assert.Contains(t, prompt, "MOOD: tense")
	assert.Contains(t, prompt, "into 3 distinct")
}

func TestDecomposeGeneratorError(t *testing.T) {
	boom := errors.New("boom")
	n := NewNarrator(Func(func(context.Context, string) (string, error) {
		return "", boom
	}))

	_, err := n.Decompose(context.Background(), Request{Narration: "x", Target: 3})
	require.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, boom)
}

func TestDecomposeTimeout(t *testing.T) {
	n := NewNarrator(Func(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}))

	start := time.Now()
	_, err := n.Decompose(context.Background(), Request{Narration: "x", Target: 3, Timeout: 20 * time.Millisecond})
	require.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestDecomposeUnusableResponse(t *testing.T) {
	tests := []struct {
		name, text string
	}{
		{"prose", "I cannot help with that."},
		{"empty array", "[]"},
		{"numbers", "[1, 2, 3]"},
		{"one moment", `[{"action":"runs","subject":"Jack","emotion":"urgency"}]`},
		{"incomplete", `[{"action":"runs","subject":"Jack"},{"action":"hides","emotion":"fear"}]`},
		{"truncated", `[{"action":"runs","subject":"Jack","emotion":"urgency"},{"action":`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			n := NewNarrator(Func(func(context.Context, string) (string, error) {
				return tc.text, nil
			}))
			_, err := n.Decompose(context.Background(), Request{Narration: "x", Target: 3})
			assert.ErrorIs(t, err, ErrUnavailable)
		})
	}
}

func TestDecomposeWithoutGenerator(t *testing.T) {
	_, err := NewNarrator(nil).Decompose(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrUnavailable)

	var n *Narrator
	_, err = n.Decompose(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestBuildPromptDefaults(t *testing.T) {
	p := BuildPrompt(Request{Narration: "  The rain falls.  ", Target: 4})
	assert.Contains(t, p, "CHARACTERS: Not specified")
	assert.Contains(t, p, "MOOD: neutral")
	assert.Contains(t, p, `NARRATION: "The rain falls."`)
	assert.True(t, strings.HasSuffix(p, "Return ONLY the JSON array, no explanation."))

	assert.Equal(t, "Jack, Mina", FormatCharacters(moment.Context{MainCharacter: "Jack", Characters: []string{"Mina", "jack"}}.Cast()))
}

func TestProvidersRequireKey(t *testing.T) {
	_, err := NewGemini(context.Background(), "", "")
	assert.Error(t, err)

	_, err = NewOpenAI("", "")
	assert.Error(t, err)

	o, err := NewOpenAI("sk-test", "")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", o.model)
}
