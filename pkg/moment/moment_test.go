package moment

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-0.2, 0},
		{0, 0},
		{0.42, 0.42},
		{1, 1},
		{1.7, 1},
		{math.NaN(), 0},
		{math.Inf(1), 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Clamp(tt.in), "Clamp(%v)", tt.in)
	}
}

func TestSourceTagJSON(t *testing.T) {
	m := Moment{Action: "arrives", Subject: "Jack", Source: SourceNarrativeArc, ArcPhase: PhaseSetup}
	raw, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"source":"narrative_arc"`)
	assert.Contains(t, string(raw), `"arcPhase":"setup"`)
	assert.NotContains(t, string(raw), "interpolated")

	var tag SourceTag
	require.NoError(t, tag.UnmarshalText([]byte("raw_narration")))
	assert.Equal(t, SourceRawNarration, tag)
	assert.Error(t, tag.UnmarshalText([]byte("bogus")))

	var back Moment
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, m, back)

	var p Phase
	assert.Error(t, p.UnmarshalText([]byte("epilogue")))
}

func TestIntensitiesAndClone(t *testing.T) {
	ms := []Moment{{Intensity: 0.3}, {Intensity: 0.8}}
	assert.Equal(t, []float64{0.3, 0.8}, Intensities(ms))

	c := Clone(ms)
	c[0].Intensity = 1
	assert.Equal(t, 0.3, ms[0].Intensity)
	assert.Nil(t, Clone(nil))
}

func TestContextCast(t *testing.T) {
	c := Context{Characters: []string{" Mina ", "", "Jack", "mina"}, MainCharacter: "Jack"}
	assert.Equal(t, []string{"Jack", "Mina"}, c.Cast())
	assert.Equal(t, "Jack", c.Lead())

	assert.Equal(t, "Mina", Context{Characters: []string{"Mina"}}.Lead())
	assert.Equal(t, "", Context{}.Lead())
	assert.Empty(t, Context{}.Cast())
}
