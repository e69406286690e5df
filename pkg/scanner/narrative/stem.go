package narrative

import (
	"strings"
)

// irregular maps irregular past forms to their base form
var irregular = map[string]string{
	"ran":        "run",
	"saw":        "see",
	"fled":       "flee",
	"spoke":      "speak",
	"fought":     "fight",
	"lost":       "lose",
	"found":      "find",
	"met":        "meet",
	"stood":      "stand",
	"sat":        "sit",
	"left":       "leave",
	"told":       "tell",
	"said":       "say",
	"understood": "understand",
	"won":        "win",
	"began":      "begin",
	"held":       "hold",
	"threw":      "throw",
	"hid":        "hide",
	"overcame":   "overcome",
	"came":       "come",
	"went":       "go",
	"took":       "take",
	"fell":       "fall",
	"caught":     "catch",
	"felt":       "feel",
}

// doubled consonants that English doubles before -ed/-ing (spotted, running)
const doubling = "bdgmnprt"

// Stem reduces an inflected verb to a crude stem so that every form of the
// same verb collapses to one key: arrive/arrives/arrived/arriving -> "arriv".
func Stem(word string) string {
	w := strings.ToLower(strings.TrimSpace(word))
	if base, ok := irregular[w]; ok {
		w = base
	}

	switch {
	case strings.HasSuffix(w, "ies") && len(w) > 4:
		w = w[:len(w)-3] + "y"
	case strings.HasSuffix(w, "ied") && len(w) > 4:
		w = w[:len(w)-3] + "y"
	case strings.HasSuffix(w, "ing") && len(w) > 5:
		w = undouble(w[:len(w)-3])
	case strings.HasSuffix(w, "ed") && len(w) > 4:
		w = undouble(w[:len(w)-2])
	case strings.HasSuffix(w, "es") && len(w) > 4 && sibilant(w[:len(w)-2]):
		w = w[:len(w)-2]
	case strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") && len(w) > 3:
		w = w[:len(w)-1]
	}

	if strings.HasSuffix(w, "e") && len(w) > 3 {
		w = w[:len(w)-1]
	}
	return w
}

// InflectionOf reports which form a surface word is in
func InflectionOf(word string) Form {
	w := strings.ToLower(strings.TrimSpace(word))
	if _, ok := irregular[w]; ok {
		return FormPast
	}
	switch {
	case strings.HasSuffix(w, "ing") && len(w) > 5:
		return FormGerund
	case strings.HasSuffix(w, "ed") && len(w) > 4:
		return FormPast
	case strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") && len(w) > 3:
		return FormPresent
	default:
		return FormBase
	}
}

func undouble(w string) string {
	n := len(w)
	if n >= 4 && w[n-1] == w[n-2] && strings.IndexByte(doubling, w[n-1]) >= 0 {
		return w[:n-1]
	}
	return w
}

func sibilant(w string) bool {
	return strings.HasSuffix(w, "s") || strings.HasSuffix(w, "x") || strings.HasSuffix(w, "z") ||
		strings.HasSuffix(w, "ch") || strings.HasSuffix(w, "sh")
}
