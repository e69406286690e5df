// Package chunker splits narration into independent clauses: sentence
// boundaries, clause punctuation and coordinating conjunctions.
package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ============================================================================
// TextRange
// ============================================================================

// TextRange represents a byte offset span in text
type TextRange struct {
	Start int
	End   int
}

// NewRange creates a new TextRange
func NewRange(start, end int) TextRange {
	return TextRange{Start: start, End: end}
}

// Len returns the length of the range
func (r TextRange) Len() int {
	return r.End - r.Start
}

// IsEmpty returns true if the range is empty
func (r TextRange) IsEmpty() bool {
	return r.Start >= r.End
}

// Slice extracts the text covered by this range
func (r TextRange) Slice(text string) string {
	if r.Start < 0 || r.End > len(text) || r.Start > r.End {
		return ""
	}
	return text[r.Start:r.End]
}

// Contains checks if this range contains another
func (r TextRange) Contains(other TextRange) bool {
	return r.Start <= other.Start && r.End >= other.End
}

// ============================================================================
// Clause
// ============================================================================

// Clause is one independent segment of narration
type Clause struct {
	Text     string    // trimmed clause text
	Range    TextRange // span of Text in the source
	Sentence int       // index of the sentence the clause belongs to
}

// DefaultConjunctions split clauses when they appear as whole words
var DefaultConjunctions = []string{"and", "then", "but", "while", "before", "after"}

// MinClauseLen is the shortest fragment kept, in characters
const MinClauseLen = 5

// ============================================================================
// Splitter
// ============================================================================

// Splitter performs rule-based clause detection
type Splitter struct {
	conjunctions map[string]bool
	minLen       int
}

// New creates a Splitter with the default English conjunctions
func New() *Splitter {
	return NewWithConjunctions(DefaultConjunctions)
}

// NewWithConjunctions creates a Splitter with a custom conjunction list
func NewWithConjunctions(words []string) *Splitter {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = true
	}
	return &Splitter{conjunctions: set, minLen: MinClauseLen}
}

// Split returns the clauses of text in order. Fragments shorter than
// MinClauseLen characters are dropped.
func (s *Splitter) Split(text string) []Clause {
	// Heuristic: one clause per ~40 bytes
	clauses := make([]Clause, 0, len(text)/40+1)
	segStart := 0
	sentence := 0
	wordStart := -1

	emit := func(end int) {
		if c, ok := s.clause(text, segStart, end, sentence); ok {
			clauses = append(clauses, c)
		}
	}

	for i, ch := range text {
		if isWordRune(ch) {
			if wordStart == -1 {
				wordStart = i
			}
			continue
		}

		// End of word: a conjunction closes the running clause
		if wordStart != -1 {
			if s.conjunctions[strings.ToLower(text[wordStart:i])] {
				emit(wordStart)
				segStart = i
			}
			wordStart = -1
		}

		switch {
		case isSentenceEnd(ch) && !decimalPoint(text, i):
			emit(i)
			segStart = i + utf8.RuneLen(ch)
			sentence++
		case isClauseBreak(ch):
			emit(i)
			segStart = i + utf8.RuneLen(ch)
		}
	}

	// Trailing word may itself be a dangling conjunction
	if wordStart != -1 && s.conjunctions[strings.ToLower(text[wordStart:])] {
		emit(wordStart)
		return clauses
	}
	emit(len(text))
	return clauses
}

func (s *Splitter) clause(text string, start, end, sentence int) (Clause, bool) {
	if start >= end {
		return Clause{}, false
	}
	raw := text[start:end]
	trimmed := strings.TrimFunc(raw, func(r rune) bool {
		return unicode.IsSpace(r) || r == '"' || r == '“' || r == '”' || r == '-'
	})
	if utf8.RuneCountInString(trimmed) < s.minLen {
		return Clause{}, false
	}
	offset := start + strings.Index(raw, trimmed)
	return Clause{
		Text:     trimmed,
		Range:    NewRange(offset, offset+len(trimmed)),
		Sentence: sentence,
	}, true
}

// Sentences splits text on . ! ? only, trimming each sentence and dropping
// empty ones.
func Sentences(text string) []string {
	parts := strings.FieldsFunc(text, isSentenceEnd)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isWordRune(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '\'' || ch == '’'
}

func isSentenceEnd(ch rune) bool {
	return ch == '.' || ch == '!' || ch == '?' || ch == '\n'
}

func isClauseBreak(ch rune) bool {
	return ch == ',' || ch == ';' || ch == ':'
}

// decimalPoint reports whether the '.' at i sits between two digits (3.5)
func decimalPoint(text string, i int) bool {
	if text[i] != '.' || i == 0 || i+1 >= len(text) {
		return false
	}
	return isDigit(text[i-1]) && isDigit(text[i+1])
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
