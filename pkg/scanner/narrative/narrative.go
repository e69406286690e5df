package narrative

import (
	"bytes"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/blevesearch/vellum"
)

// VerbMatch is the result of looking up a verb
type VerbMatch struct {
	Canonical string // third-person present form, e.g. "chases"
	Category  Category
	Form      Form
	Stem      string
}

// Matcher uses an FST to map verb stems to lexicon entries.
// A Matcher is read-only after New and safe for concurrent use.
type Matcher struct {
	fst     *vellum.FST
	entries []verbEntry
}

// verbEntry is a static verb mapping
type verbEntry struct {
	canonical string
	category  Category
}

// verbEntries is the action vocabulary, grouped by category
var verbEntries = []verbEntry{
	// Movement
	{"arrives", CategoryMovement},
	{"enters", CategoryMovement},
	{"walks", CategoryMovement},
	{"runs", CategoryMovement},
	{"approaches", CategoryMovement},
	{"moves", CategoryMovement},
	{"steps", CategoryMovement},
	{"chases", CategoryMovement},
	{"races", CategoryMovement},
	{"rushes", CategoryMovement},
	{"dashes", CategoryMovement},
	{"sprints", CategoryMovement},
	{"flees", CategoryMovement},
	{"escapes", CategoryMovement},
	{"retreats", CategoryMovement},
	{"turns", CategoryMovement},
	{"reaches", CategoryMovement},
	{"falls", CategoryMovement},

	// Perception
	{"spots", CategoryPerception},
	{"notices", CategoryPerception},
	{"sees", CategoryPerception},
	{"watches", CategoryPerception},
	{"observes", CategoryPerception},
	{"looks", CategoryPerception},
	{"scans", CategoryPerception},
	{"searches", CategoryPerception},
	{"finds", CategoryPerception},

	// Communication
	{"speaks", CategoryCommunication},
	{"says", CategoryCommunication},
	{"tells", CategoryCommunication},
	{"asks", CategoryCommunication},
	{"demands", CategoryCommunication},
	{"shouts", CategoryCommunication},
	{"whispers", CategoryCommunication},
	{"confesses", CategoryCommunication},
	{"reveals", CategoryCommunication},
	{"meets", CategoryCommunication},
	{"greets", CategoryCommunication},
	{"argues", CategoryCommunication},
	{"agrees", CategoryCommunication},
	{"refuses", CategoryCommunication},

	// Realization / emotional response
	{"realizes", CategoryRealization},
	{"discovers", CategoryRealization},
	{"understands", CategoryRealization},
	{"fears", CategoryRealization},
	{"worries", CategoryRealization},
	{"hesitates", CategoryRealization},
	{"pauses", CategoryRealization},
	{"reflects", CategoryRealization},

	// Confrontation
	{"confronts", CategoryConfrontation},
	{"faces", CategoryConfrontation},
	{"challenges", CategoryConfrontation},
	{"fights", CategoryConfrontation},
	{"attacks", CategoryConfrontation},
	{"defends", CategoryConfrontation},
	{"struggles", CategoryConfrontation},
	{"grabs", CategoryConfrontation},
	{"pushes", CategoryConfrontation},
	{"pulls", CategoryConfrontation},
	{"throws", CategoryConfrontation},

	// Resolution
	{"loses", CategoryResolution},
	{"fails", CategoryResolution},
	{"succeeds", CategoryResolution},
	{"wins", CategoryResolution},
	{"accepts", CategoryResolution},
	{"leaves", CategoryResolution},
	{"departs", CategoryResolution},
	{"surrenders", CategoryResolution},
	{"sacrifices", CategoryResolution},
	{"transforms", CategoryResolution},
	{"overcomes", CategoryResolution},
	{"resolves", CategoryResolution},

	// State
	{"stands", CategoryState},
	{"sits", CategoryState},
	{"waits", CategoryState},
	{"hides", CategoryState},
	{"holds", CategoryState},
	{"drops", CategoryState},
	{"opens", CategoryState},
	{"closes", CategoryState},

	// Progression
	{"begins", CategoryProgression},
	{"starts", CategoryProgression},
	{"continues", CategoryProgression},
	{"proceeds", CategoryProgression},
	{"stops", CategoryProgression},
	{"ends", CategoryProgression},
}

// packValue encodes Category and entry index into uint64
// Bits: [Category 8][Index 16]
func packValue(c Category, idx int) uint64 {
	return (uint64(c) << 16) | uint64(idx&0xFFFF)
}

// unpackValue decodes Category and entry index from uint64
func unpackValue(v uint64) (Category, int) {
	return Category((v >> 16) & 0xFF), int(v & 0xFFFF)
}

var (
	shared     *Matcher
	sharedErr  error
	sharedOnce sync.Once
)

// Shared returns the process-wide matcher, built once on first use.
func Shared() (*Matcher, error) {
	sharedOnce.Do(func() {
		shared, sharedErr = New()
	})
	return shared, sharedErr
}

// MustShared is Shared for package-level initialization; the embedded
// lexicon is static, so a build failure is a programming error.
func MustShared() *Matcher {
	m, err := Shared()
	if err != nil {
		panic("narrative: build lexicon: " + err.Error())
	}
	return m
}

// New creates a Matcher with the embedded verb lexicon
func New() (*Matcher, error) {
	type keyed struct {
		stem string
		idx  int
	}

	// Sort entries for FST (must be lexicographic, no duplicates)
	seen := make(map[string]bool, len(verbEntries))
	sorted := make([]keyed, 0, len(verbEntries))
	for i, e := range verbEntries {
		stem := Stem(e.canonical)
		if seen[stem] {
			continue
		}
		seen[stem] = true
		sorted = append(sorted, keyed{stem: stem, idx: i})
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].stem < sorted[j].stem
	})

	// Build FST
	var buf bytes.Buffer
	builder, err := vellum.New(&buf, nil)
	if err != nil {
		return nil, err
	}

	for _, k := range sorted {
		val := packValue(verbEntries[k.idx].category, k.idx)
		if err := builder.Insert([]byte(k.stem), val); err != nil {
			return nil, err
		}
	}

	if err := builder.Close(); err != nil {
		return nil, err
	}

	// Load FST
	fst, err := vellum.Load(buf.Bytes())
	if err != nil {
		return nil, err
	}

	return &Matcher{fst: fst, entries: verbEntries}, nil
}

// Lookup finds the lexicon entry for a verb in any inflection
func (m *Matcher) Lookup(word string) *VerbMatch {
	word = strings.TrimFunc(word, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if word == "" {
		return nil
	}
	stem := Stem(word)

	val, found, err := m.fst.Get([]byte(stem))
	if err != nil || !found {
		return nil
	}

	category, idx := unpackValue(val)
	return &VerbMatch{
		Canonical: m.entries[idx].canonical,
		Category:  category,
		Form:      InflectionOf(word),
		Stem:      stem,
	}
}

// IsVerb reports whether a word is a known action verb
func (m *Matcher) IsVerb(word string) bool {
	return m.Lookup(word) != nil
}

// PrimaryVerb returns the first recognized verb in an action phrase, or the
// first word when none is recognized. The result is the surface form.
func (m *Matcher) PrimaryVerb(action string) string {
	words := strings.Fields(action)
	for _, w := range words {
		if m.IsVerb(w) {
			return strings.ToLower(strings.TrimFunc(w, func(r rune) bool { return !unicode.IsLetter(r) }))
		}
	}
	if len(words) == 0 {
		return ""
	}
	return strings.ToLower(words[0])
}

// Canonicals returns every canonical verb in the lexicon, in lexicon order
func (m *Matcher) Canonicals() []string {
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.canonical
	}
	return out
}

// DictionarySize returns the number of entries in the FST
func (m *Matcher) DictionarySize() int {
	return m.fst.Len()
}

// Close releases resources
func (m *Matcher) Close() error {
	return m.fst.Close()
}
