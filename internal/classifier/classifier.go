// Package classifier flags messages that look like monetary solicitation
// ("tribute") requests. Matching is deliberately naive: a single whole-word
// regex pass over the text, no scoring or negation handling. False positives
// are accepted; the bot flags, it never blocks.
package classifier

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultTerms are the solicitation terms the bot watches for.
var DefaultTerms = []string{
	"tribute",
	"donate",
	"send money",
	"cashapp",
	"venmo",
	"pay",
	"payment",
	"paypal",
	"transfer",
}

// Classifier matches text against a fixed set of solicitation terms
type Classifier struct {
	pattern *regexp.Regexp
}

// New compiles a classifier for the given terms. Terms are matched as whole
// words, case-insensitively.
func New(terms []string) (*Classifier, error) {
	if len(terms) == 0 {
		return nil, fmt.Errorf("no terms configured")
	}

	quoted := make([]string, len(terms))
	for i, term := range terms {
		quoted[i] = regexp.QuoteMeta(term)
	}

	pattern, err := regexp.Compile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
	if err != nil {
		return nil, fmt.Errorf("failed to compile term pattern: %w", err)
	}

	return &Classifier{pattern: pattern}, nil
}

// Default returns a classifier over DefaultTerms
func Default() *Classifier {
	c, err := New(DefaultTerms)
	if err != nil {
		panic(err)
	}
	return c
}

// IsTribute reports whether the text contains any solicitation term.
// Empty text never matches.
func (c *Classifier) IsTribute(text string) bool {
	if text == "" {
		return false
	}
	return c.pattern.MatchString(text)
}
