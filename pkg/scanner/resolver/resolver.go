// Package resolver decides who performs each clause: named characters,
// aliases, pronouns and generic nouns. It maintains a narrative context to
// track recency and gender.
package resolver

import (
	"strings"
	"unicode"

	"github.com/kittclouds/shotkit/pkg/scanner/cast"
)

// Generic subject labels
const (
	LabelProtagonist = "the protagonist"
	LabelCharacters  = "the characters"
	LabelDefault     = "the character"
)

// Gender of an entity
type Gender int

const (
	GenderUnknown Gender = iota
	GenderMale
	GenderFemale
	GenderNeutral
	GenderPlural
)

// EntityMetadata represents a known character in the context
type EntityMetadata struct {
	ID      string
	Name    string
	Gender  Gender
	Aliases []string
}

// NarrativeContext tracks the state of the narrative
type NarrativeContext struct {
	history    []string // Stack of entity IDs (most recent at front)
	registry   map[string]EntityMetadata
	maxHistory int
}

// NewContext creates a new narrative context
func NewContext() *NarrativeContext {
	return &NarrativeContext{
		history:    make([]string, 0),
		registry:   make(map[string]EntityMetadata),
		maxHistory: 10,
	}
}

// Register adds an entity to the known registry
func (nc *NarrativeContext) Register(e EntityMetadata) {
	nc.registry[e.ID] = e
}

// Lookup returns a registered entity
func (nc *NarrativeContext) Lookup(id string) (EntityMetadata, bool) {
	e, ok := nc.registry[id]
	return e, ok
}

// PushMention records a mention, moving it to the front of history
func (nc *NarrativeContext) PushMention(entityID string) {
	// Remove existing occurrence
	for i, id := range nc.history {
		if id == entityID {
			nc.history = append(nc.history[:i], nc.history[i+1:]...)
			break
		}
	}

	// Push to front
	nc.history = append([]string{entityID}, nc.history...)

	// Trim if too long
	if len(nc.history) > nc.maxHistory {
		nc.history = nc.history[:nc.maxHistory]
	}
}

// FindMostRecent finds the most recent entity matching the gender
func (nc *NarrativeContext) FindMostRecent(gender Gender) string {
	for _, id := range nc.history {
		if meta, ok := nc.registry[id]; ok {
			if gendersCompatible(meta.Gender, gender) {
				return id
			}
		}
	}
	return ""
}

func gendersCompatible(entityGender, pronounGender Gender) bool {
	if entityGender == pronounGender {
		return true
	}
	if pronounGender == GenderUnknown {
		return true // Unknown pronoun matches anything
	}
	if pronounGender == GenderPlural {
		// A single unnamed-gender character is never "they"
		return false
	}
	return entityGender == GenderUnknown
}

// Option configures a Resolver
type Option func(*Resolver)

// WithCharacters registers the cast for the scene
func WithCharacters(names []string) Option {
	return func(r *Resolver) {
		r.cast = cast.Compile(names)
	}
}

// WithLead sets the character inferred from the whole narration
func WithLead(name string) Option {
	return func(r *Resolver) {
		if name = strings.TrimSpace(name); name != "" {
			r.lead = name
			r.leadDict = cast.Compile([]string{name})
		}
	}
}

// WithCoreference resolves pronouns and subjectless clauses to the most
// recently mentioned character instead of a generic label.
func WithCoreference(on bool) Option {
	return func(r *Resolver) {
		r.coref = on
	}
}

// Resolver handles subject, pronoun and alias resolution. It carries
// mention history and must not be shared between narrations.
type Resolver struct {
	Context *NarrativeContext

	cast     *cast.Dictionary
	lead     string
	leadDict *cast.Dictionary
	coref    bool
}

// New creates a new Resolver
func New(opts ...Option) *Resolver {
	r := &Resolver{
		Context: NewContext(),
		cast:    cast.Compile(nil),
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, name := range r.cast.Names() {
		r.Context.Register(EntityMetadata{ID: name, Name: name, Aliases: aliasesOf(name)})
	}
	if r.lead != "" {
		if _, known := r.Context.Lookup(r.lead); !known {
			r.Context.Register(EntityMetadata{ID: r.lead, Name: r.lead, Aliases: aliasesOf(r.lead)})
		}
	}
	return r
}

// Lead returns the narration-level lead character, if any
func (r *Resolver) Lead() string {
	return r.lead
}

// Subject resolves who performs a clause:
// a cast member named in it, then the lead, then a pronoun, then a generic
// noun ("the woman"), then LabelDefault.
func (r *Resolver) Subject(clause string) string {
	if name, ok := r.cast.FirstIn(clause); ok {
		r.ObserveMention(name)
		return name
	}
	if r.leadDict != nil {
		if _, ok := r.leadDict.FirstIn(clause); ok {
			r.ObserveMention(r.lead)
			return r.lead
		}
	}

	words := tokens(clause)

	for _, w := range words {
		if !r.isPronoun(w) {
			continue
		}
		gender := r.inferPronounGender(w)
		switch gender {
		case GenderPlural:
			return LabelCharacters
		case GenderMale, GenderFemale:
			if r.coref {
				if id := r.Context.FindMostRecent(gender); id != "" {
					return r.display(id)
				}
			}
			return LabelProtagonist
		}
	}

	if noun, ok := genericNoun(words); ok {
		return noun
	}

	if r.coref {
		if id := r.Context.FindMostRecent(GenderUnknown); id != "" {
			return r.display(id)
		}
	}
	return LabelDefault
}

// Resolve attempts to resolve text (pronoun or alias) to an EntityID
func (r *Resolver) Resolve(text string) string {
	if r.isPronoun(text) {
		gender := r.inferPronounGender(text)
		return r.Context.FindMostRecent(gender)
	}

	// Check direct alias match
	lower := strings.ToLower(text)
	for _, meta := range r.Context.registry {
		if strings.ToLower(meta.Name) == lower {
			return meta.ID
		}
		for _, alias := range meta.Aliases {
			if strings.ToLower(alias) == lower {
				return meta.ID
			}
		}
	}

	return ""
}

// ObserveMention updates context with an explicit mention
func (r *Resolver) ObserveMention(entityID string) {
	r.Context.PushMention(entityID)
}

func (r *Resolver) display(id string) string {
	if meta, ok := r.Context.Lookup(id); ok {
		return meta.Name
	}
	return id
}

func (r *Resolver) isPronoun(text string) bool {
	switch strings.ToLower(text) {
	case "he", "him", "his", "she", "her", "hers", "it", "its", "they", "them", "their":
		return true
	default:
		return false
	}
}

func (r *Resolver) inferPronounGender(text string) Gender {
	switch strings.ToLower(text) {
	case "he", "him", "his":
		return GenderMale
	case "she", "her", "hers":
		return GenderFemale
	case "it", "its":
		return GenderNeutral
	case "they", "them", "their":
		return GenderPlural
	default:
		return GenderUnknown
	}
}

var genericNouns = map[string]bool{
	"man": true, "woman": true, "person": true, "figure": true,
	"character": true, "stranger": true, "girl": true, "boy": true,
}

// genericNoun finds "the man", "a figure" and similar
func genericNoun(words []string) (string, bool) {
	for i := 0; i+1 < len(words); i++ {
		det := strings.ToLower(words[i])
		if det != "the" && det != "a" && det != "an" {
			continue
		}
		if noun := strings.ToLower(words[i+1]); genericNouns[noun] {
			return "the " + noun, true
		}
	}
	return "", false
}

func tokens(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
}

func aliasesOf(name string) []string {
	parts := strings.Fields(name)
	if len(parts) < 2 {
		return nil
	}
	return []string{parts[0], parts[len(parts)-1]}
}
