// Package extract turns narration into an ordered list of moments using the
// verb lexicon, the emotion table and subject resolution. No network access.
package extract

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kittclouds/shotkit/pkg/emotion"
	"github.com/kittclouds/shotkit/pkg/moment"
	"github.com/kittclouds/shotkit/pkg/scanner/chunker"
	"github.com/kittclouds/shotkit/pkg/scanner/discovery"
	"github.com/kittclouds/shotkit/pkg/scanner/narrative"
	"github.com/kittclouds/shotkit/pkg/scanner/resolver"
)

// ErrExtractionEmpty is returned by Clauses when narration yields no clause
var ErrExtractionEmpty = errors.New("extract: no clauses in narration")

const (
	// SummaryLen bounds the fallback action text
	SummaryLen = 50
	// VisualLen bounds visual descriptions
	VisualLen = 100
)

// Option configures an Extractor
type Option func(*Extractor)

// WithTable replaces the built-in emotion table
func WithTable(t *emotion.Table) Option {
	return func(e *Extractor) {
		if t != nil {
			e.table = t
		}
	}
}

// WithMatcher replaces the shared verb lexicon
func WithMatcher(m *narrative.Matcher) Option {
	return func(e *Extractor) {
		if m != nil {
			e.verbs = m
		}
	}
}

// WithSplitter replaces the default clause splitter
func WithSplitter(s *chunker.Splitter) Option {
	return func(e *Extractor) {
		if s != nil {
			e.splitter = s
		}
	}
}

// WithCoreference resolves pronouns to the last named subject
func WithCoreference(on bool) Option {
	return func(e *Extractor) {
		e.coref = on
	}
}

// Extractor is the rule-based moment extractor. It holds read-only state and
// is safe for concurrent use.
type Extractor struct {
	table    *emotion.Table
	verbs    *narrative.Matcher
	splitter *chunker.Splitter
	leads    *discovery.LeadScanner
	coref    bool
}

// New creates an Extractor
func New(opts ...Option) *Extractor {
	e := &Extractor{
		table:    emotion.Default(),
		verbs:    narrative.MustShared(),
		splitter: chunker.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.leads = discovery.NewLeadScanner(e.verbs)
	return e
}

// Table returns the emotion table in use
func (e *Extractor) Table() *emotion.Table {
	return e.table
}

// Verbs returns the verb lexicon in use
func (e *Extractor) Verbs() *narrative.Matcher {
	return e.verbs
}

// Extract returns one moment per clause. Narration with no usable clause
// yields a single raw_narration moment; blank narration yields nothing.
func (e *Extractor) Extract(narration string, sc moment.Context) []moment.Moment {
	moments, err := e.Clauses(narration, sc)
	if errors.Is(err, ErrExtractionEmpty) {
		if strings.TrimSpace(narration) == "" {
			return nil
		}
		return []moment.Moment{e.Fallback(narration, sc)}
	}
	return moments
}

// Clauses extracts a moment from every clause of narration
func (e *Extractor) Clauses(narration string, sc moment.Context) ([]moment.Moment, error) {
	clauses := e.splitter.Split(narration)
	if len(clauses) == 0 {
		return nil, ErrExtractionEmpty
	}

	r := e.resolverFor(narration, sc)
	moments := make([]moment.Moment, 0, len(clauses))
	for _, c := range clauses {
		action, verb := e.Action(c.Text)
		subject := r.Subject(c.Text)

		em := emotion.DefaultEmotion
		if verb != nil {
			em = e.table.EmotionOfActionVerb(verb.Canonical)
		}
		if em == emotion.DefaultEmotion {
			em = e.table.InferEmotion(c.Text)
		}

		moments = append(moments, moment.Moment{
			Action:            action,
			Subject:           subject,
			Emotion:           em,
			Intensity:         e.table.IntensityOf(em),
			VisualDescription: VisualDescription(action, subject),
			Source:            moment.SourceNarrationAnalysis,
		})
	}
	return moments, nil
}

// Fallback builds the single moment used when narration has no clause
func (e *Extractor) Fallback(narration string, sc moment.Context) moment.Moment {
	summary := Summarize(narration, VisualLen)

	action := Summarize(narration, SummaryLen)
	if _, verb := e.Action(narration); verb != nil {
		action = verb.Canonical
	}

	subject := e.resolverFor(narration, sc).Subject(narration)
	return moment.Moment{
		Action:            action,
		Subject:           subject,
		Emotion:           emotion.DefaultEmotion,
		Intensity:         emotion.DefaultIntensity,
		VisualDescription: summary,
		Source:            moment.SourceRawNarration,
	}
}

// Action picks the verb of a clause and returns the text from it to the end
// of the clause. Present third-person forms beat gerunds, gerunds beat past
// forms; within one form the earliest wins. Without a verb the whole clause
// is the action.
func (e *Extractor) Action(clause string) (string, *narrative.VerbMatch) {
	clause = strings.TrimSpace(clause)

	var (
		best    *narrative.VerbMatch
		bestPos int
	)
	for _, w := range words(clause) {
		m := e.verbs.Lookup(w.text)
		if m == nil {
			continue
		}
		if best == nil || m.Form < best.Form {
			best, bestPos = m, w.start
		}
	}
	if best == nil {
		return clause, nil
	}

	return clause[bestPos:], best
}

func (e *Extractor) resolverFor(narration string, sc moment.Context) *resolver.Resolver {
	opts := []resolver.Option{
		resolver.WithCharacters(sc.Cast()),
		resolver.WithCoreference(e.coref),
	}
	if lead, ok := e.leads.Lead(narration); ok {
		opts = append(opts, resolver.WithLead(lead))
	}
	return resolver.New(opts...)
}

// VisualDescription describes a moment for the frame: the action as-is when
// it already names the subject, otherwise the subject followed by the
// action. Always capitalized and bounded by VisualLen.
func VisualDescription(action, subject string) string {
	action = strings.TrimSpace(action)
	desc := action
	if subject != "" && !strings.Contains(strings.ToLower(action), strings.ToLower(subject)) {
		desc = subject + " " + action
	}
	return Summarize(Capitalize(desc), VisualLen)
}

// Capitalize upper-cases the first word's initial, leaving the rest intact
func Capitalize(s string) string {
	idx := strings.IndexFunc(s, unicode.IsSpace)
	if idx < 0 {
		idx = len(s)
	}
	caser := cases.Title(language.English, cases.NoLower)
	return caser.String(s[:idx]) + s[idx:]
}

// Summarize collapses whitespace and truncates to limit runes, marking the
// cut with "...".
func Summarize(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	cut := limit - 3
	if cut < 0 {
		cut = 0
	}
	return strings.TrimRightFunc(string(runes[:cut]), unicode.IsSpace) + "..."
}

type word struct {
	text  string
	start int
}

func words(text string) []word {
	var out []word
	start := -1
	for i, r := range text {
		if unicode.IsLetter(r) || r == '\'' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			out = append(out, word{text: text[start:i], start: start})
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, word{text: text[start:], start: start})
	}
	return out
}
