// Package discovery finds character names that narration never declares:
// capitalized tokens standing directly before a recognized action verb.
package discovery

import (
	"strings"

	"github.com/kittclouds/shotkit/pkg/scanner/chunker"
	"github.com/kittclouds/shotkit/pkg/scanner/narrative"
)

// LeadScanner infers the lead character of a narration
type LeadScanner struct {
	verbs     *narrative.Matcher
	threshold int
}

// NewLeadScanner creates a scanner that promotes a name on first sighting
func NewLeadScanner(verbs *narrative.Matcher) *LeadScanner {
	return &LeadScanner{verbs: verbs, threshold: 1}
}

// Scan feeds every "Name verb" pair of text into a fresh registry
func (s *LeadScanner) Scan(text string) *CandidateRegistry {
	reg := NewRegistry(s.threshold)

	for _, sentence := range chunker.Sentences(text) {
		words := strings.Fields(sentence)
		for i := 0; i+1 < len(words); i++ {
			if !s.verbs.IsVerb(words[i+1]) || endsClause(words[i]) {
				continue
			}
			_, display, ok := Canonicalize(words[i])
			if !ok || !IsCapitalized(display) {
				continue
			}

			// Two-word names: "Mary Jane runs"
			if i > 0 && !endsClause(words[i-1]) {
				if _, prev, ok := Canonicalize(words[i-1]); ok && IsCapitalized(prev) &&
					!strings.HasSuffix(strings.ToLower(prev), "ly") &&
					!reg.IsStopWord(strings.ToLower(prev)) {
					display = prev + " " + display
				}
			}
			reg.AddToken(display)
		}
	}
	return reg
}

// Lead returns the most frequent inferred name
func (s *LeadScanner) Lead(text string) (string, bool) {
	return s.Scan(text).Best()
}

func endsClause(word string) bool {
	return strings.ContainsAny(word[len(word)-1:], ",;:")
}
