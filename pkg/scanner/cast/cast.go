// Package cast provides a character dictionary using Aho-Corasick.
// A single automaton built from names and aliases scans clauses for mentions.
package cast

import (
	"strings"
	"unicode"
	"unicode/utf8"

	ahocorasick "github.com/petar-dambovaliev/aho-corasick"
)

// NormalizeRaw cleans and lowercases text for matching.
func NormalizeRaw(s string) string {
	out, _ := fold(s)
	return out
}

// span is the source byte range that produced one folded byte
type span struct{ start, end int }

// fold lowercases s, maps the curly apostrophe to a straight one and turns
// every other non-word rune into a single separating space. spans[i] is the
// source range of folded byte i.
func fold(s string) (string, []span) {
	var out strings.Builder
	out.Grow(len(s))
	spans := make([]span, 0, len(s))
	pendingSpace := false

	for i, ch := range s {
		c := unicode.ToLower(ch)
		if c == '’' {
			c = '\''
		}

		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '\'' {
			pendingSpace = out.Len() > 0
			continue
		}

		if pendingSpace {
			out.WriteByte(' ')
			spans = append(spans, span{i, i})
			pendingSpace = false
		}
		src := span{i, i + utf8.RuneLen(ch)}
		n, _ := out.WriteRune(c)
		for range n {
			spans = append(spans, src)
		}
	}

	return out.String(), spans
}

// Dictionary maps surface forms (names and auto-aliases) to canonical names.
// It is read-only after Compile.
type Dictionary struct {
	ac ahocorasick.AhoCorasick

	// Pattern index -> canonical name
	patternToName []string

	// Normalized pattern -> pattern index
	patternIndex map[string]int

	// All patterns in order (for AC builder)
	patterns []string

	names []string
}

// Compile builds a Dictionary from character names. Empty names are skipped;
// when two characters share an alias the first one registered keeps it.
func Compile(names []string) *Dictionary {
	d := &Dictionary{patternIndex: make(map[string]int)}

	for _, name := range names {
		name = strings.TrimSpace(name)
		key := NormalizeRaw(name)
		if key == "" {
			continue
		}
		d.names = append(d.names, name)

		surfaces := append([]string{key}, autoAliases(key)...)
		for _, surface := range surfaces {
			if _, exists := d.patternIndex[surface]; exists {
				continue
			}
			d.patternIndex[surface] = len(d.patterns)
			d.patterns = append(d.patterns, surface)
			d.patternToName = append(d.patternToName, name)
		}
	}

	if len(d.patterns) == 0 {
		return d
	}

	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: true,
		MatchOnlyWholeWords:  true,
		MatchKind:            ahocorasick.LeftMostLongestMatch,
	})
	d.ac = builder.Build(d.patterns)
	return d
}

// Names returns the registered canonical names in registration order
func (d *Dictionary) Names() []string {
	return d.names
}

// Len returns the number of registered characters
func (d *Dictionary) Len() int {
	return len(d.names)
}

// Lookup finds the character for an exact surface form
func (d *Dictionary) Lookup(surface string) (string, bool) {
	idx, ok := d.patternIndex[NormalizeRaw(surface)]
	if !ok {
		return "", false
	}
	return d.patternToName[idx], true
}

// Match is a detected character mention
type Match struct {
	Start int // Byte offsets in the scanned text
	End   int
	Name  string
}

// Scan finds all character mentions in text, leftmost first. Text is folded
// the same way names are, so "Mary-Jane" matches the name "Mary Jane".
func (d *Dictionary) Scan(text string) []Match {
	if len(d.patterns) == 0 {
		return nil
	}

	folded, spans := fold(text)
	matches := d.ac.FindAll(folded)
	result := make([]Match, 0, len(matches))
	for _, m := range matches {
		result = append(result, Match{
			Start: spans[m.Start()].start,
			End:   spans[m.End()-1].end,
			Name:  d.patternToName[m.Pattern()],
		})
	}
	return result
}

// FirstIn returns the first character mentioned in text
func (d *Dictionary) FirstIn(text string) (string, bool) {
	matches := d.Scan(text)
	if len(matches) == 0 {
		return "", false
	}
	best := matches[0]
	for _, m := range matches[1:] {
		if m.Start < best.Start {
			best = m
		}
	}
	return best.Name, true
}

// autoAliases derives first/last-name aliases from a multi-word name
func autoAliases(key string) []string {
	tokens := strings.Fields(key)
	if len(tokens) <= 1 {
		return nil
	}

	first := tokens[0]
	last := tokens[len(tokens)-1]
	var out []string

	if len(first) >= 3 {
		out = append(out, first)
	}
	if len(last) >= 3 && last != first {
		out = append(out, last)
	}
	if len(tokens) >= 3 {
		out = append(out, first+" "+last)
	}
	return out
}
