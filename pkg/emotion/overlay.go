package emotion

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/kittclouds/shotkit/pkg/moment"
	"github.com/kittclouds/shotkit/pkg/scanner/narrative"
)

// ErrUnknownEmotion is returned when an overlay maps a verb to an emotion
// that has no intensity.
var ErrUnknownEmotion = errors.New("emotion: verb mapped to unknown emotion")

// Options extends the built-in table. Entries override defaults.
type Options struct {
	Intensities map[string]float64 `yaml:"intensities"`
	Verbs       map[string]string  `yaml:"verbs"`
}

// New builds a table from the defaults plus opts
func New(opts Options) (*Table, error) {
	intensities := clampMap(defaultIntensities)
	for k, v := range opts.Intensities {
		intensities[normalize(k)] = moment.Clamp(v)
	}

	verbs := make(map[string]string, len(defaultVerbs)+len(opts.Verbs))
	for k, v := range defaultVerbs {
		verbs[narrative.Stem(k)] = v
	}

	// Deterministic order so the first bad entry is always the one reported
	keys := make([]string, 0, len(opts.Verbs))
	for k := range opts.Verbs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		e := normalize(opts.Verbs[k])
		if _, ok := intensities[e]; !ok {
			return nil, fmt.Errorf("%w: %s -> %s", ErrUnknownEmotion, k, e)
		}
		verbs[narrative.Stem(k)] = e
	}

	return &Table{
		intensities: intensities,
		verbs:       verbs,
		cues:        defaultCues,
	}, nil
}

// Load builds a table from a YAML overlay:
//
//	intensities:
//	  dread: 0.8
//	verbs:
//	  lurks: dread
func Load(r io.Reader) (*Table, error) {
	var opts Options
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("emotion: decode overlay: %w", err)
	}
	return New(opts)
}

func mustBuild(opts Options) *Table {
	t, err := New(opts)
	if err != nil {
		panic(err)
	}
	return t
}
