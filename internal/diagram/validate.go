package diagram

import (
	"errors"
	"fmt"
	"strings"
)

var ErrSyntaxMismatch = errors.New("diagram syntax mismatch")

// SyntaxMismatchError reports a document that does not open with any of the
// dialect's accepted tokens.
type SyntaxMismatchError struct {
	Dialect  Dialect
	Accepted []string
}

func (e *SyntaxMismatchError) Error() string {
	quoted := make([]string, len(e.Accepted))
	for i, p := range e.Accepted {
		quoted[i] = fmt.Sprintf("%q", p)
	}
	return fmt.Sprintf("invalid %s diagram syntax: expected to start with %s",
		e.Dialect, strings.Join(quoted, " or "))
}

func (e *SyntaxMismatchError) Is(target error) bool {
	return target == ErrSyntaxMismatch
}

// Validate checks only the leading token of text against the dialect.
// The trimmed text is returned on success.
func Validate(text string, d Dialect) (string, error) {
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownDialect, string(d))
	}
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)
	for _, p := range grammars[d].prefixes {
		if strings.HasPrefix(lower, strings.ToLower(p)) {
			return trimmed, nil
		}
	}
	return "", &SyntaxMismatchError{Dialect: d, Accepted: AcceptedPrefixes(d)}
}
