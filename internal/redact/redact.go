package redact

import (
	"regexp"
)

// Placeholder replaces every detected secret.
const Placeholder = "[REDACTED]"

type rule struct {
	name string
	re   *regexp.Regexp
}

// Whole PEM blocks go first so the header-only rule does not split them.
var rules = []rule{
	{"private-key", regexp.MustCompile(`(?s)-----BEGIN ([A-Z]+ )*PRIVATE KEY-----.*?-----END ([A-Z]+ )*PRIVATE KEY-----`)},
	{"private-key-header", regexp.MustCompile(`-----BEGIN ([A-Z]+ )*PRIVATE KEY-----`)},
	{"api-key", regexp.MustCompile(`(?i)(api[_-]?key|apikey|api[_-]?secret)\s*[:=]\s*["']?([A-Za-z0-9/+=_-]{20,})["']?`)},
	{"aws-access-key-id", regexp.MustCompile(`AKIA[0-9A-Z]{16}`)},
	{"aws-secret-access-key", regexp.MustCompile(`(?i)(aws[_-]?secret[_-]?access[_-]?key)\s*[:=]\s*["']?([A-Za-z0-9/+=]{40})["']?`)},
	{"assignment", regexp.MustCompile(`(?i)(secret|token|password|passwd|credential)\s*[:=]\s*["']([^"']{8,})["']`)},
	{"bearer", regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`)},
	{"jwt", regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`)},
	{"connection-string", regexp.MustCompile(`[a-z][a-z0-9+.-]*://[^\s:/@]+:[^\s@/]+@`)},
	{"github", regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`)},
	{"slack", regexp.MustCompile(`xox[bporas]-[A-Za-z0-9-]{10,}`)},
	{"anthropic", regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]{20,}`)},
	{"openai", regexp.MustCompile(`sk-[A-Za-z0-9]{20,}`)},
	{"hex-assignment", regexp.MustCompile(`(?i)(key|secret|token)\s*[:=]\s*["']?[0-9a-f]{32,}["']?`)},
}

// Result counts what [Text] replaced, by rule name.
type Result struct {
	Text    string
	Matches map[string]int
}

// Total is the number of replacements made.
func (r Result) Total() int {
	n := 0
	for _, c := range r.Matches {
		n += c
	}
	return n
}

// Text replaces detected secrets in text with [Placeholder].
func Text(text string) Result {
	res := Result{Text: text, Matches: map[string]int{}}
	for _, r := range rules {
		res.Text = r.re.ReplaceAllStringFunc(res.Text, func(string) string {
			res.Matches[r.name]++
			return Placeholder
		})
	}
	return res
}

// Secrets is [Text] without the accounting.
func Secrets(text string) string {
	return Text(text).Text
}
