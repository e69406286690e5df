package discovery

import (
	"strings"

	"github.com/orsinium-labs/stopwords"
)

// CandidateStatus tracks the lifecycle of a discovery candidate
type CandidateStatus int

const (
	StatusWatching CandidateStatus = iota
	StatusPromoted
	StatusIgnored
)

// CandidateStats tracks info about a potential character name
type CandidateStats struct {
	Count   int
	Status  CandidateStatus
	Display string // Best display form seen
	First   int    // Order of first sighting
}

// CandidateRegistry tracks potential character names
type CandidateRegistry struct {
	Stats              map[CanonicalToken]*CandidateStats
	PromotionThreshold int
	StopWords          map[string]bool

	english func(string) bool
	seen    int
}

// NewRegistry creates a new registry
func NewRegistry(threshold int) *CandidateRegistry {
	if threshold < 1 {
		threshold = 1
	}
	return &CandidateRegistry{
		Stats:              make(map[CanonicalToken]*CandidateStats),
		PromotionThreshold: threshold,
		StopWords:          make(map[string]bool),
		english:            stopwords.MustGet("en").Contains,
	}
}

// AddStopWord adds a custom ignored word
func (r *CandidateRegistry) AddStopWord(word string) {
	r.StopWords[strings.ToLower(word)] = true
}

// IsStopWord checks the English list and the custom additions
func (r *CandidateRegistry) IsStopWord(key string) bool {
	if r.StopWords[key] {
		return true
	}
	// Multi-word candidates are stop words only if every part is
	for _, part := range strings.Fields(key) {
		if !r.english(part) && !r.StopWords[part] {
			return false
		}
	}
	return true
}

// AddToken processes a token. Returns true if promoted this time.
func (r *CandidateRegistry) AddToken(raw string) bool {
	key, display, valid := Canonicalize(raw)
	if !valid {
		return false
	}

	// 1. Check stopwords
	if r.IsStopWord(string(key)) {
		return false
	}

	// 2. Get/Create stats
	stats, exists := r.Stats[key]
	if !exists {
		stats = &CandidateStats{
			Status:  StatusWatching,
			Display: display,
			First:   r.seen,
		}
		r.seen++
		r.Stats[key] = stats
	}

	stats.Count++

	// If already ignored/promoted, just count
	if stats.Status != StatusWatching {
		return false
	}

	// 3. Check threshold
	if stats.Count >= r.PromotionThreshold {
		stats.Status = StatusPromoted
		return true
	}

	return false
}

// Ignore marks a token so it is never promoted
func (r *CandidateRegistry) Ignore(raw string) {
	key, display, valid := Canonicalize(raw)
	if !valid {
		return
	}
	if s, ok := r.Stats[key]; ok {
		s.Status = StatusIgnored
		return
	}
	r.Stats[key] = &CandidateStats{Status: StatusIgnored, Display: display, First: r.seen}
	r.seen++
}

// GetStatus returns the status of a token
func (r *CandidateRegistry) GetStatus(raw string) CandidateStatus {
	key, _, valid := Canonicalize(raw)
	if !valid {
		return StatusIgnored
	}
	if s, ok := r.Stats[key]; ok {
		return s.Status
	}
	return StatusWatching // Default (conceptually unknown)
}

// GetStats helper
func (r *CandidateRegistry) GetStats(raw string) *CandidateStats {
	key, _, _ := Canonicalize(raw)
	return r.Stats[key]
}

// Best returns the promoted candidate seen most often, earliest first on ties
func (r *CandidateRegistry) Best() (string, bool) {
	var best *CandidateStats
	for _, s := range r.Stats {
		if s.Status != StatusPromoted {
			continue
		}
		if best == nil || s.Count > best.Count || (s.Count == best.Count && s.First < best.First) {
			best = s
		}
	}
	if best == nil {
		return "", false
	}
	return best.Display, true
}
