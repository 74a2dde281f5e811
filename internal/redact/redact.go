// Package redact masks credentials in pasted answers before they are sent to a model.
package redact

import "regexp"

// Placeholder replaces every matched secret.
const Placeholder = "[REDACTED]"

type rule struct {
	name    string
	pattern *regexp.Regexp
}

var rules = []rule{
	{"aws-access-key", regexp.MustCompile(`AKIA[0-9A-Z]{16}`)},
	{"aws-secret", regexp.MustCompile(`(?i)(aws_secret_access_key|aws_secret)\s*[:=]\s*[A-Za-z0-9/+=]{40}`)},
	{"private-key", regexp.MustCompile(`-----BEGIN [A-Z ]+PRIVATE KEY-----[\s\S]*?-----END [A-Z ]+PRIVATE KEY-----`)},
	{"bearer", regexp.MustCompile(`Bearer\s+[A-Za-z0-9\-._~+/]+=*`)},
	{"openai-key", regexp.MustCompile(`sk-[A-Za-z0-9_\-]{20,}`)},
	{"assignment", regexp.MustCompile(`(?i)(api[_-]?key|api[_-]?secret|secret[_-]?key|token|password|passwd|credentials)\s*[:=]\s*\S+`)},
}

// Result reports what Text replaced, keyed by rule name.
type Result struct {
	Text    string
	Matches map[string]int
}

// Count returns the total number of replacements.
func (r Result) Count() int {
	n := 0
	for _, c := range r.Matches {
		n += c
	}
	return n
}

// Text replaces secrets in s with Placeholder.
func Text(s string) Result {
	res := Result{Matches: map[string]int{}}
	for _, r := range rules {
		n := len(r.pattern.FindAllStringIndex(s, -1))
		if n == 0 {
			continue
		}
		res.Matches[r.name] += n
		s = r.pattern.ReplaceAllString(s, Placeholder)
	}
	res.Text = s
	return res
}
