package collaborator

import "unicode/utf8"

// charsPerToken is the rough rune-per-token ratio of English prose
const charsPerToken = 4

// EstimateTokens sizes a prompt or reply for the debug log. Narration may
// carry curly quotes and accents, so runes are counted, not bytes.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + charsPerToken - 1) / charsPerToken
}
