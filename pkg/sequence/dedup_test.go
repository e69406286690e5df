package sequence

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kittclouds/shotkit/pkg/moment"
)

func withActions(actions ...string) []moment.Moment {
	out := make([]moment.Moment, len(actions))
	for i, a := range actions {
		out[i] = moment.Moment{Action: a, Subject: "the protagonist", Intensity: 0.5}
	}
	return out
}

func TestDeduplicateRepeats(t *testing.T) {
	d := NewDeduplicator()
	got := d.Deduplicate(withActions("runs", "runs again", "runs once more"))

	assert.Equal(t, "runs", got[0].Action)
	assert.False(t, got[0].Deduplicated)
	assert.Equal(t, "starts to runs again", got[1].Action)
	assert.Equal(t, "continues to runs once more", got[2].Action)
	assert.True(t, got[1].Deduplicated)
	assert.True(t, got[2].Deduplicated)
}

func TestDeduplicateWindow(t *testing.T) {
	d := NewDeduplicator()

	// Same verb three moments later is allowed
	got := d.Deduplicate(withActions("runs home", "stops", "waits", "runs away"))
	for _, m := range got {
		assert.False(t, m.Deduplicated, m.Action)
	}

	// Inflections of one verb are the same verb
	got = d.Deduplicate(withActions("chases them", "chasing the car"))
	assert.True(t, got[1].Deduplicated)

	// Distance of two is still inside the window
	got = d.Deduplicate(withActions("looks up", "waits", "looks down"))
	assert.Equal(t, "continues to looks down", got[2].Action)
}

func TestDeduplicateIdempotent(t *testing.T) {
	d := NewDeduplicator()
	in := withActions("runs", "runs", "runs", "spots her", "spots her", "runs", "runs")

	once := d.Deduplicate(in)
	twice := d.Deduplicate(once)
	assert.Equal(t, once, twice)

	// Input is never mutated
	assert.Equal(t, "runs", in[1].Action)
}

func TestDeduplicateWithSeed(t *testing.T) {
	in := withActions("runs", "runs", "runs", "runs", "runs")

	d := NewDeduplicator(WithSeed(7))
	a := d.Deduplicate(in)
	b := d.Deduplicate(in)
	assert.Equal(t, a, b, "same seed gives the same markers on every call")
	assert.Equal(t, a, NewDeduplicator(WithSeed(7)).Deduplicate(in))

	for _, m := range a[1:] {
		marked, _ := splitMarker(m.Action)
		assert.True(t, marked, m.Action)
	}
}

func TestDeduplicateMarkerInitialRepeats(t *testing.T) {
	d := NewDeduplicator()

	got := d.Deduplicate(withActions("steps into the crossing", "suddenly sprints after them", "suddenly sprints after them"))
	assert.False(t, got[1].Deduplicated)
	assert.True(t, got[2].Deduplicated)
	assert.Equal(t, "continues to suddenly sprints after them", got[2].Action)

	got = d.Deduplicate(withActions("Now He", "Now He", "Now He"))
	assert.Equal(t, "Now He", got[0].Action)
	assert.Equal(t, "starts to Now He", got[1].Action)
	assert.Equal(t, "continues to Now He", got[2].Action)

	assert.Equal(t, got, d.Deduplicate(got))
}

func TestDeduplicateSynonyms(t *testing.T) {
	in := withActions("runs to the car", "sprints across the lot")

	plain := NewDeduplicator().Deduplicate(in)
	assert.False(t, plain[1].Deduplicated)

	syn := NewDeduplicator(WithSynonyms(true)).Deduplicate(in)
	assert.True(t, syn[1].Deduplicated)
	assert.True(t, strings.HasSuffix(syn[1].Action, "sprints across the lot"))

	d := NewDeduplicator(WithSynonyms(true))
	assert.True(t, d.Similar("looks around", "watches the door"))
	assert.True(t, d.Similar("then walks", "walking"))
	assert.False(t, d.Similar("walks", "speaks"))
}

func TestDeduplicateLogs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	d := NewDeduplicator(WithLogger(zap.New(core)))

	d.Deduplicate(withActions("waits", "waits"))
	require.Equal(t, 1, logs.Len())

	entry := logs.All()[0]
	assert.Equal(t, "deduplicated action", entry.Message)
	assert.Equal(t, "starts to waits", entry.ContextMap()["modified"])
}

func TestPrimaryVerb(t *testing.T) {
	d := NewDeduplicator()
	assert.Equal(t, "runs", d.PrimaryVerb("suddenly runs away"))
	assert.Equal(t, "opens", d.PrimaryVerb("She opens the door"))
	assert.Equal(t, "juggles", d.PrimaryVerb("Juggles knives"))
	assert.Equal(t, "", d.PrimaryVerb(""))
}

func TestDeduplicateShort(t *testing.T) {
	d := NewDeduplicator()
	assert.Empty(t, d.Deduplicate(nil))
	one := withActions("runs")
	assert.Equal(t, one, d.Deduplicate(one))
}
