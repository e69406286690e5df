package sequence

import (
	"math/rand/v2"
	"strings"

	"go.uber.org/zap"

	"github.com/kittclouds/shotkit/pkg/moment"
	"github.com/kittclouds/shotkit/pkg/scanner/narrative"
)

// Markers are the progression markers, in rotation order
var Markers = []string{
	"begins to", "starts to", "continues to", "proceeds to",
	"then", "now", "suddenly", "finally", "eventually",
}

// Window is how many previous primary verbs a moment is compared against
const Window = 2

// synonymGroups treat near-identical verbs as repeats
var synonymGroups = [][]string{
	{"look", "watch", "observe", "gaze", "stare", "glance"},
	{"run", "sprint", "dash", "race", "rush"},
	{"walk", "step", "pace", "stride"},
	{"speak", "say", "tell", "talk"},
	{"stand", "rise", "get up"},
}

// DedupOption configures a Deduplicator
type DedupOption func(*Deduplicator)

// WithSeed picks markers from a PRNG seeded with seed instead of rotating
// by index. Every Deduplicate call starts from the same seed.
func WithSeed(seed uint64) DedupOption {
	return func(d *Deduplicator) {
		d.seed = seed
		d.seeded = true
	}
}

// WithSynonyms treats verbs of the same synonym group as repeats
func WithSynonyms(on bool) DedupOption {
	return func(d *Deduplicator) {
		d.synonyms = on
	}
}

// WithLogger logs every rewrite at debug level
func WithLogger(log *zap.Logger) DedupOption {
	return func(d *Deduplicator) {
		if log != nil {
			d.log = log
		}
	}
}

// WithVerbs replaces the shared verb lexicon
func WithVerbs(m *narrative.Matcher) DedupOption {
	return func(d *Deduplicator) {
		if m != nil {
			d.verbs = m
		}
	}
}

// Deduplicator rewrites actions whose primary verb repeats one of the last
// Window verbs by prefixing a progression marker. Running it twice gives
// the same result as running it once. Read-only after construction.
type Deduplicator struct {
	verbs    *narrative.Matcher
	synonyms bool
	log      *zap.Logger
	seed     uint64
	seeded   bool

	groupOf map[string]int
}

// NewDeduplicator creates a Deduplicator
func NewDeduplicator(opts ...DedupOption) *Deduplicator {
	d := &Deduplicator{
		verbs: narrative.MustShared(),
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.groupOf = make(map[string]int)
	for gi, group := range synonymGroups {
		for _, w := range group {
			d.groupOf[narrative.Stem(w)] = gi
		}
	}
	return d
}

// Deduplicate returns a copy of moments with repeated actions rewritten
func (d *Deduplicator) Deduplicate(moments []moment.Moment) []moment.Moment {
	out := moment.Clone(moments)
	if len(out) <= 1 {
		return out
	}

	var rng *rand.Rand
	if d.seeded {
		rng = rand.New(rand.NewPCG(d.seed, d.seed))
	}

	window := make([]string, 0, Window+1)
	for i := range out {
		action := out[i].Action
		_, rest := splitMarker(action)
		key := d.verbKey(rest)

		// Moments rewritten by an earlier pass keep their marker
		if !out[i].Deduplicated && d.seen(window, key) {
			out[i].Action = marker(rng, i) + " " + action
			out[i].Deduplicated = true
			d.log.Debug("deduplicated action",
				zap.Int("index", i),
				zap.String("original", action),
				zap.String("modified", out[i].Action),
			)
		}

		window = append(window, key)
		if len(window) > Window {
			window = window[1:]
		}
	}
	return out
}

// PrimaryVerb returns the verb that identifies an action, ignoring any
// leading progression marker.
func (d *Deduplicator) PrimaryVerb(action string) string {
	_, rest := splitMarker(action)
	return d.verbs.PrimaryVerb(rest)
}

// Similar reports whether two actions count as repeats
func (d *Deduplicator) Similar(a, b string) bool {
	_, a = splitMarker(a)
	_, b = splitMarker(b)
	return d.match(d.verbKey(a), d.verbKey(b))
}

func (d *Deduplicator) seen(window []string, key string) bool {
	for _, w := range window {
		if d.match(w, key) {
			return true
		}
	}
	return false
}

func (d *Deduplicator) match(a, b string) bool {
	if a == b {
		return a != ""
	}
	if !d.synonyms {
		return false
	}
	ga, okA := d.groupOf[a]
	gb, okB := d.groupOf[b]
	return okA && okB && ga == gb
}

// verbKey identifies the primary verb across inflections
func (d *Deduplicator) verbKey(action string) string {
	verb := d.verbs.PrimaryVerb(action)
	if verb == "" {
		return ""
	}
	return narrative.Stem(verb)
}

func marker(rng *rand.Rand, index int) string {
	if rng == nil {
		return Markers[index%len(Markers)]
	}
	return Markers[rng.IntN(len(Markers))]
}

// splitMarker strips every leading progression marker
func splitMarker(action string) (bool, string) {
	rest := strings.TrimSpace(action)
	marked := false
	for {
		m, ok := leadingMarker(rest)
		if !ok {
			return marked, rest
		}
		marked = true
		rest = strings.TrimSpace(rest[len(m):])
	}
}

func leadingMarker(s string) (string, bool) {
	lower := strings.ToLower(s)
	for _, m := range Markers {
		if strings.HasPrefix(lower, m+" ") {
			return m, true
		}
	}
	return "", false
}
