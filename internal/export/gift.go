package export

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/abhisek/quizgen/internal/quiz"
)

// giftSpecial are the characters GIFT treats as markup.
const giftSpecial = `~=#{}:`

// escapeGIFT backslash-escapes GIFT markup characters and encodes
// newlines and carriage returns as \n and \r so a field stays on one
// line. Leading and trailing whitespace is escaped too, so ParseGIFT
// gives back the field unchanged.
func escapeGIFT(s string) string {
	lead := len(s) - len(strings.TrimLeftFunc(s, unicode.IsSpace))
	trail := len(strings.TrimRightFunc(s, unicode.IsSpace))
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case strings.ContainsRune(giftSpecial, r), i < lead || i >= trail:
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func unescapeGIFT(s string) string {
	var b strings.Builder
	escaped := false
	for _, r := range s {
		switch {
		case escaped:
			switch r {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteRune(r)
			}
			escaped = false
		case r == '\\':
			escaped = true
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// trimGIFT trims surrounding whitespace, keeping trailing whitespace
// that is escaped.
func trimGIFT(s string) string {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	for s != "" {
		r, size := utf8.DecodeLastRuneInString(s)
		if !unicode.IsSpace(r) {
			break
		}
		body := s[:len(s)-size]
		slashes := len(body) - len(strings.TrimRight(body, `\`))
		if slashes%2 == 1 {
			break
		}
		s = body
	}
	return s
}

// encodeGIFT writes one block per question:
//
//	// difficulty: easy
//	::Q1:: question text {
//	=correct
//	~wrong
//	####explanation
//	}
//
// Options keep their order.
func encodeGIFT(questions []quiz.Question) ([]byte, error) {
	var buf bytes.Buffer
	for i, q := range questions {
		if i > 0 {
			buf.WriteByte('\n')
		}
		if q.Difficulty != "" {
			fmt.Fprintf(&buf, "// difficulty: %s\n", q.Difficulty)
		}
		fmt.Fprintf(&buf, "::Q%d:: %s {\n", i+1, escapeGIFT(q.Question))
		for _, opt := range q.Options {
			mark := '~'
			if opt == q.CorrectAnswer {
				mark = '='
			}
			fmt.Fprintf(&buf, "%c%s\n", mark, escapeGIFT(opt))
		}
		if q.Explanation != "" {
			fmt.Fprintf(&buf, "####%s\n", escapeGIFT(q.Explanation))
		}
		buf.WriteString("}\n")
	}
	return buf.Bytes(), nil
}

// indexUnescaped returns the index of the first sep in s that is not
// preceded by an escaping backslash, or -1.
func indexUnescaped(s, sep string) int {
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		if strings.HasPrefix(s[i:], sep) {
			return i
		}
	}
	return -1
}

// ParseGIFT reads questions written by the GIFT exporter. Unescaped
// whitespace around a field is dropped.
func ParseGIFT(data []byte) ([]quiz.Question, error) {
	var (
		out     []quiz.Question
		cur     *quiz.Question
		pending quiz.Difficulty
		line    int
	)
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line++
		text := trimGIFT(sc.Text())

		if cur == nil {
			switch {
			case text == "":
			case strings.HasPrefix(text, "//"):
				c := strings.TrimSpace(strings.TrimPrefix(text, "//"))
				if v, ok := strings.CutPrefix(c, "difficulty:"); ok {
					pending = quiz.Difficulty(strings.TrimSpace(v))
				}
			default:
				q, err := parseGIFTHeader(text)
				if err != nil {
					return nil, fmt.Errorf("gift line %d: %w", line, err)
				}
				q.Difficulty = pending
				pending = ""
				cur = &q
			}
			continue
		}

		switch {
		case text == "}":
			out = append(out, *cur)
			cur = nil
		case strings.HasPrefix(text, "####"):
			cur.Explanation = unescapeGIFT(text[4:])
		case strings.HasPrefix(text, "="):
			opt := unescapeGIFT(text[1:])
			cur.Options = append(cur.Options, opt)
			cur.CorrectAnswer = opt
		case strings.HasPrefix(text, "~"):
			cur.Options = append(cur.Options, unescapeGIFT(text[1:]))
		case text == "":
		default:
			return nil, fmt.Errorf("gift line %d: unexpected %q", line, text)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read gift: %w", err)
	}
	if cur != nil {
		return nil, fmt.Errorf("gift: unterminated question %q", cur.Question)
	}
	return out, nil
}

// parseGIFTHeader reads "::title:: text {".
func parseGIFTHeader(text string) (quiz.Question, error) {
	if rest, ok := strings.CutPrefix(text, "::"); ok {
		end := indexUnescaped(rest, "::")
		if end < 0 {
			return quiz.Question{}, fmt.Errorf("unterminated title")
		}
		text = trimGIFT(rest[end+2:])
	}
	open := indexUnescaped(text, "{")
	if open < 0 {
		return quiz.Question{}, fmt.Errorf("missing answer block")
	}
	if strings.TrimSpace(text[open+1:]) != "" {
		return quiz.Question{}, fmt.Errorf("answers must start on the next line")
	}
	return quiz.Question{Question: unescapeGIFT(trimGIFT(text[:open]))}, nil
}
