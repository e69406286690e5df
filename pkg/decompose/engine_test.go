package decompose

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kittclouds/shotkit/internal/collaborator"
	"github.com/kittclouds/shotkit/pkg/moment"
	"github.com/kittclouds/shotkit/pkg/sequence"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	shibuya  = "Jack arrives in Shibuya. He spots someone in the crowd. He chases them through the street. He loses them in the dark alley."
	sixBeats = "Mina enters the hall. She spots a letter. She opens the letter. She realizes the truth. She runs outside. She leaves the city."
	repeats  = "He runs. He runs again. He runs once more."
)

func actionsOf(moments []moment.Moment) []string {
	out := make([]string, len(moments))
	for i, m := range moments {
		out[i] = m.Action
	}
	return out
}

func TestScenarioShibuya(t *testing.T) {
	got, err := New().Decompose(context.Background(), shibuya, 4, moment.Context{})
	require.NoError(t, err)
	require.Len(t, got, 4)

	for i, verb := range []string{"arrives", "spots", "chases", "loses"} {
		assert.Contains(t, got[i].Action, verb)
		assert.Equal(t, moment.SourceNarrationAnalysis, got[i].Source)
	}

	arc := moment.Intensities(got)
	assert.Equal(t, []float64{0.25, 0.55, 0.8, 0.7}, arc)
	assert.Less(t, arc[0], arc[2])
	assert.Less(t, arc[3], arc[2], "drops after the chase")
	assert.Equal(t, "Jack", got[0].Subject)
}

func TestScenarioEmpty(t *testing.T) {
	got, err := New().Decompose(context.Background(), "", 3, moment.Context{})
	require.NoError(t, err)
	require.Len(t, got, 3)

	distinct := map[float64]bool{}
	for _, m := range got {
		assert.Equal(t, moment.SourceNarrativeArc, m.Source)
		distinct[m.Intensity] = true
	}
	assert.Greater(t, len(distinct), 1, "arc must not be flat")
}

func TestScenarioReduceToBookends(t *testing.T) {
	e := New()
	all, err := e.Decompose(context.Background(), sixBeats, 6, moment.Context{})
	require.NoError(t, err)
	require.Len(t, all, 6)

	got, err := e.Decompose(context.Background(), sixBeats, 2, moment.Context{})
	require.NoError(t, err)
	assert.Equal(t, []string{all[0].Action, all[5].Action}, actionsOf(got))
	assert.Equal(t, []string{"enters the hall", "leaves the city"}, actionsOf(got))
}

func TestScenarioRepeatedVerb(t *testing.T) {
	got, err := New().Decompose(context.Background(), repeats, 3, moment.Context{})
	require.NoError(t, err)
	require.Len(t, got, 3)

	hasMarker := func(action string) bool {
		for _, m := range sequence.Markers {
			if strings.HasPrefix(action, m+" ") {
				return true
			}
		}
		return false
	}
	assert.False(t, hasMarker(got[0].Action), got[0].Action)
	assert.True(t, hasMarker(got[1].Action), got[1].Action)
	assert.True(t, hasMarker(got[2].Action), got[2].Action)

	// Flat extraction gets the synthetic arc
	assert.Equal(t, 0.3, got[0].Intensity)
	assert.Equal(t, 0.85, got[2].Intensity)
}

func TestDecomposeExactCount(t *testing.T) {
	e := New()
	narrations := []string{
		"",
		"   ",
		"Run!",
		shibuya,
		sixBeats,
		repeats,
		"she opens the door and steps inside then freezes while the lights flicker",
		"The rain. A red umbrella drifting over the empty square, nobody near it",
	}
	for _, n := range narrations {
		for target := 1; target <= 10; target++ {
			t.Run(fmt.Sprintf("%q/%d", n, target), func(t *testing.T) {
				got, err := e.Decompose(context.Background(), n, target, moment.Context{})
				require.NoError(t, err)
				require.Len(t, got, target)
				for _, m := range got {
					assert.True(t, m.Intensity >= 0 && m.Intensity <= 1, "intensity %v", m.Intensity)
					assert.NotEmpty(t, m.Subject)
					assert.NotEmpty(t, m.Action)
				}

				// Deduplicating the output again changes nothing
				again := sequence.NewDeduplicator().Deduplicate(got)
				assert.Equal(t, got, again)
			})
		}
	}
}

func TestDecomposeInvalidArgument(t *testing.T) {
	e := New()

	_, err := e.Decompose(context.Background(), shibuya, 0, moment.Context{})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = e.Decompose(context.Background(), shibuya, -2, moment.Context{})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = e.Decompose(context.Background(), "Jack \xff runs", 3, moment.Context{})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

const aiReply = `[
  {"action": "steps into the crossing", "subject": "Jack", "emotion": "arrival"},
  {"action": "locks eyes with a stranger", "subject": "Jack", "emotion": "recognition"},
  {"action": "sprints after them", "subject": "Jack", "emotion": "chase"}
]`

func TestDecomposeUsesCollaborator(t *testing.T) {
	var calls atomic.Int32
	gen := collaborator.Func(func(ctx context.Context, prompt string) (string, error) {
		calls.Add(1)
		return aiReply, nil
	})

	e := New(WithCollaborator(gen))
	got, err := e.Decompose(context.Background(), shibuya, 4, moment.Context{Characters: []string{"Jack"}})
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, int32(1), calls.Load())

	for _, m := range got {
		assert.Equal(t, moment.SourceAI, m.Source)
	}
	assert.Equal(t, "steps into the crossing", got[0].Action)
	assert.Equal(t, "sprints after them", got[3].Action)
}

func TestDecomposeCollaboratorMarkerInitialActions(t *testing.T) {
	gen := collaborator.Func(func(ctx context.Context, prompt string) (string, error) {
		return `[{"action": "steps into the crossing", "subject": "Jack", "emotion": "arrival"},
			{"action": "suddenly sprints after them", "subject": "Jack", "emotion": "chase"}]`, nil
	})

	got, err := New(WithCollaborator(gen)).Decompose(context.Background(), shibuya, 6, moment.Context{})
	require.NoError(t, err)
	require.Len(t, got, 6)
	for i := 1; i < len(got); i++ {
		assert.NotEqual(t, got[i-1].Action, got[i].Action, "adjacent actions at %d", i)
	}
}

func TestDecomposeCollaboratorGating(t *testing.T) {
	var calls atomic.Int32
	gen := collaborator.Func(func(ctx context.Context, prompt string) (string, error) {
		calls.Add(1)
		return aiReply, nil
	})
	e := New(WithCollaborator(gen))

	// Too short
	got, err := e.Decompose(context.Background(), repeats, 3, moment.Context{})
	require.NoError(t, err)
	assert.Equal(t, moment.SourceNarrationAnalysis, got[0].Source)

	// Too few shots
	got, err = e.Decompose(context.Background(), shibuya, 2, moment.Context{})
	require.NoError(t, err)
	assert.Equal(t, moment.SourceNarrationAnalysis, got[0].Source)

	assert.Equal(t, int32(0), calls.Load())
}

func TestDecomposeCollaboratorFallback(t *testing.T) {
	tests := []struct {
		name    string
		gen     collaborator.Func
		timeout time.Duration
	}{
		{"error", func(context.Context, string) (string, error) {
			return "", errors.New("503 service unavailable")
		}, time.Second},
		{"garbage", func(context.Context, string) (string, error) {
			return "Sorry, I can't do that.", nil
		}, time.Second},
		{"timeout", func(ctx context.Context, _ string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		}, 20 * time.Millisecond},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.WarnLevel)
			e := New(WithCollaborator(tc.gen), WithTimeout(tc.timeout), WithLogger(zap.New(core)))

			got, err := e.Decompose(context.Background(), shibuya, 4, moment.Context{})
			require.NoError(t, err)
			require.Len(t, got, 4)
			for _, m := range got {
				assert.Equal(t, moment.SourceNarrationAnalysis, m.Source)
			}

			warned := logs.FilterMessage("collaborator failed, using rule-based extraction")
			require.Equal(t, 1, warned.Len())
			assert.NotEmpty(t, warned.All()[0].ContextMap()["requestId"])
		})
	}
}

func TestDecomposeSeeded(t *testing.T) {
	narration := "He waits. He waits. He waits. He waits. He waits."
	a, err := New(WithSeed(42)).Decompose(context.Background(), narration, 5, moment.Context{})
	require.NoError(t, err)
	b, err := New(WithSeed(42)).Decompose(context.Background(), narration, 5, moment.Context{})
	require.NoError(t, err)
	assert.Equal(t, a, b)

	e := New(WithSeed(42))
	first, err := e.Decompose(context.Background(), narration, 5, moment.Context{})
	require.NoError(t, err)
	second, err := e.Decompose(context.Background(), narration, 5, moment.Context{})
	require.NoError(t, err)
	assert.Equal(t, first, second, "one engine repeats itself")
	assert.Equal(t, a, first)

	for _, m := range a[1:] {
		assert.True(t, m.Deduplicated, m.Action)
	}
}

func TestDecomposeRequestIDs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	e := New(WithLogger(zap.New(core)))

	for i := 0; i < 2; i++ {
		_, err := e.Decompose(context.Background(), shibuya, 4, moment.Context{})
		require.NoError(t, err)
	}

	done := logs.FilterMessage("narration decomposed").All()
	require.Len(t, done, 2)
	first := done[0].ContextMap()["requestId"]
	second := done[1].ContextMap()["requestId"]
	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
	assert.Equal(t, "rules", done[0].ContextMap()["path"])
}

func TestDecomposeScenes(t *testing.T) {
	e := New()
	scenes := []Scene{
		{Narration: shibuya, Target: 4},
		{Narration: "", Target: 3},
		{Narration: repeats, Target: 5},
		{Narration: sixBeats, Target: 2},
	}

	got, err := e.DecomposeScenes(context.Background(), scenes, 2)
	require.NoError(t, err)
	require.Len(t, got, len(scenes))
	for i, s := range scenes {
		assert.Len(t, got[i], s.Target, "scene %d", i)
	}
	assert.Contains(t, got[0][0].Action, "arrives")
	assert.Equal(t, moment.SourceNarrativeArc, got[1][0].Source)

	// Results match a sequential run
	for i, s := range scenes {
		want, err := e.Decompose(context.Background(), s.Narration, s.Target, s.Context)
		require.NoError(t, err)
		assert.Equal(t, want, got[i], "scene %d", i)
	}
}

func TestDecomposeScenesInvalid(t *testing.T) {
	scenes := []Scene{
		{Narration: shibuya, Target: 4},
		{Narration: shibuya, Target: 0},
	}
	_, err := New().DecomposeScenes(context.Background(), scenes, 0)
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Contains(t, err.Error(), "scene 1")
}
