package collaborator

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/kittclouds/shotkit/pkg/emotion"
	"github.com/kittclouds/shotkit/pkg/extract"
	"github.com/kittclouds/shotkit/pkg/moment"
)

// MinMoments is the fewest usable entries a response must carry
const MinMoments = 2

// Parse reads moments from a response: the first well-formed JSON array of
// objects anywhere in text. Entries missing action, subject or emotion are
// skipped. Intensity is always recomputed from the emotion.
func Parse(text string, table *emotion.Table) ([]moment.Moment, error) {
	if table == nil {
		table = emotion.Default()
	}

	arr, ok := FindArray(text)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON array of objects in response", ErrUnavailable)
	}

	var moments []moment.Moment
	gjson.Parse(arr).ForEach(func(_, entry gjson.Result) bool {
		action := strings.TrimSpace(entry.Get("action").String())
		subject := strings.TrimSpace(entry.Get("subject").String())
		em := strings.ToLower(strings.TrimSpace(entry.Get("emotion").String()))
		if action == "" || subject == "" || em == "" {
			return true
		}

		visual := strings.TrimSpace(entry.Get("visualDescription").String())
		if visual == "" {
			visual = extract.VisualDescription(action, subject)
		}

		moments = append(moments, moment.Moment{
			Action:            action,
			Subject:           subject,
			Emotion:           em,
			Intensity:         table.IntensityOf(em),
			VisualDescription: visual,
			Source:            moment.SourceAI,
		})
		return true
	})

	if len(moments) < MinMoments {
		return nil, fmt.Errorf("%w: %d usable moments, need %d", ErrUnavailable, len(moments), MinMoments)
	}
	return moments, nil
}

// FindArray returns the first substring of text that is a valid, non-empty
// JSON array whose elements are all objects.
func FindArray(text string) (string, bool) {
	for start := strings.IndexByte(text, '['); start >= 0; {
		if end := matchBracket(text, start); end > start {
			candidate := text[start : end+1]
			if isObjectArray(candidate) {
				return candidate, true
			}
		}

		next := strings.IndexByte(text[start+1:], '[')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

func isObjectArray(s string) bool {
	if !gjson.Valid(s) {
		return false
	}
	res := gjson.Parse(s)
	if !res.IsArray() {
		return false
	}
	elems := res.Array()
	if len(elems) == 0 {
		return false
	}
	for _, e := range elems {
		if !e.IsObject() {
			return false
		}
	}
	return true
}

// matchBracket finds the ']' closing the '[' at start, skipping strings
func matchBracket(text string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
