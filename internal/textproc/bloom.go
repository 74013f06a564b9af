package textproc

import "strings"

// Bloom's taxonomy levels, lowest to highest.
const (
	BloomRemember   = "remember"
	BloomUnderstand = "understand"
	BloomApply      = "apply"
	BloomAnalyze    = "analyze"
	BloomEvaluate   = "evaluate"
	BloomCreate     = "create"
)

// difficultyBloom lists the levels a difficulty targets; the first entry
// is the primary one.
var difficultyBloom = map[string][]string{
	"easy":   {BloomRemember, BloomUnderstand},
	"medium": {BloomUnderstand, BloomApply},
	"hard":   {BloomAnalyze, BloomEvaluate, BloomCreate},
	"mixed":  {BloomRemember, BloomUnderstand, BloomApply, BloomAnalyze},
}

var difficultyFocus = map[string]string{
	"easy":   "basic facts and recall. Focus on who, what, where, when questions using direct facts from the text.",
	"medium": "conceptual understanding and application. Focus on why and how questions that test relationships between concepts.",
	"hard":   "critical analysis and evaluation. Require inference, synthesis, and deep thinking.",
	"mixed":  "various cognitive levels, from basic recall to critical analysis. Vary the difficulty across questions.",
}

// BloomLevels returns the target Bloom levels for a difficulty.
func BloomLevels(difficulty string) []string {
	if lv, ok := difficultyBloom[strings.ToLower(difficulty)]; ok {
		return lv
	}
	return []string{BloomUnderstand}
}

// PrimaryBloom returns the main Bloom level for a difficulty.
func PrimaryBloom(difficulty string) string {
	return BloomLevels(difficulty)[0]
}

// Focus describes what questions of a difficulty should test.
func Focus(difficulty string) string {
	if f, ok := difficultyFocus[strings.ToLower(difficulty)]; ok {
		return f
	}
	return difficultyFocus["medium"]
}

// bloomKeywords is checked from the highest level down.
var bloomKeywords = []struct {
	level    string
	keywords []string
}{
	{BloomCreate, []string{"create", "design", "develop", "formulate", "construct"}},
	{BloomEvaluate, []string{"evaluate", "assess", "judge", "critique", "justify"}},
	{BloomAnalyze, []string{"analyze", "examine", "compare", "contrast", "differentiate"}},
	{BloomApply, []string{"apply", "demonstrate", "solve", "use", "implement"}},
	{BloomUnderstand, []string{"explain", "describe", "summarize", "interpret"}},
	{BloomRemember, []string{"what", "when", "where", "who", "define", "list", "name", "identify"}},
}

// ClassifyBloom infers a Bloom level from the wording of a question.
func ClassifyBloom(question string) string {
	words := strings.FieldsFunc(strings.ToLower(question), func(r rune) bool {
		return !(r >= 'a' && r <= 'z')
	})
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	for _, b := range bloomKeywords {
		for _, kw := range b.keywords {
			if _, ok := set[kw]; ok {
				return b.level
			}
		}
	}
	return BloomUnderstand
}
