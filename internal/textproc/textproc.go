// Package textproc holds the light text analysis applied to source
// material before it is sent to the model: whitespace cleanup, subject
// area detection, and Bloom's taxonomy helpers.
package textproc

import (
	"regexp"
	"strings"
)

var (
	reSpace       = regexp.MustCompile(`\s+`)
	reRepeatDot   = regexp.MustCompile(`\.{2,}`)
	reRepeatBang  = regexp.MustCompile(`!{2,}`)
	reRepeatQuery = regexp.MustCompile(`\?{2,}`)
	reNoSpaceSent = regexp.MustCompile(`([.!?])([A-Z])`)
	reSentence    = regexp.MustCompile(`[.!?]+`)
)

// Clean collapses whitespace, squeezes repeated terminal punctuation,
// and makes sure sentences are separated by a space. Unlike a strict
// ASCII filter it keeps non-Latin letters and symbols, since the model
// handles them fine.
func Clean(text string) string {
	text = reSpace.ReplaceAllString(text, " ")
	text = reRepeatDot.ReplaceAllString(text, ".")
	text = reRepeatBang.ReplaceAllString(text, "!")
	text = reRepeatQuery.ReplaceAllString(text, "?")
	text = reNoSpaceSent.ReplaceAllString(text, "$1 $2")
	return strings.TrimSpace(text)
}

// Stats summarizes the shape of a text.
type Stats struct {
	Words            int
	Sentences        int
	WordsPerSentence float64
	UniqueRatio      float64
	Complexity       string // low, medium, high
}

// Analyze computes Stats for text.
func Analyze(text string) Stats {
	words := strings.Fields(text)
	var sentences int
	for _, s := range reSentence.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			sentences++
		}
	}

	st := Stats{Words: len(words), Sentences: sentences}
	if sentences > 0 {
		st.WordsPerSentence = float64(len(words)) / float64(sentences)
	}
	if len(words) > 0 {
		uniq := make(map[string]struct{}, len(words))
		for _, w := range words {
			uniq[strings.ToLower(w)] = struct{}{}
		}
		st.UniqueRatio = float64(len(uniq)) / float64(len(words))
	}

	switch {
	case st.WordsPerSentence > 20 && st.UniqueRatio > 0.6:
		st.Complexity = "high"
	case st.WordsPerSentence > 15 && st.UniqueRatio > 0.4:
		st.Complexity = "medium"
	default:
		st.Complexity = "low"
	}
	return st
}

var subjectKeywords = []struct {
	subject  string
	keywords []string
}{
	{"science", []string{"experiment", "hypothesis", "theory", "analysis", "scientific", "research", "study", "data", "observation", "method"}},
	{"history", []string{"century", "war", "empire", "historical", "period", "era", "ancient", "revolution", "society", "civilization"}},
	{"literature", []string{"character", "theme", "plot", "author", "literary", "novel", "story", "poem", "narrative", "symbolism"}},
}

// DetectSubject guesses the subject area of text. It needs at least two
// subject keywords; ties go to the earlier subject in the list.
func DetectSubject(text string) string {
	lower := strings.ToLower(text)
	best, bestCount := "general", 0
	for _, s := range subjectKeywords {
		n := 0
		for _, kw := range s.keywords {
			if strings.Contains(lower, kw) {
				n++
			}
		}
		if n > bestCount {
			best, bestCount = s.subject, n
		}
	}
	if bestCount < 2 {
		return "general"
	}
	return best
}
