// Package paramextract recovers the numeric sweep parameter of a result file,
// either from its file name or from the comment on its first line.
package paramextract

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Extractor returns the sweep parameter for the file at path.
type Extractor interface {
	Extract(path string) (float64, error)
}

// Reason classifies why a parameter could not be extracted.
type Reason string

const (
	// ReasonNoMatch means the pattern did not match the identifier.
	ReasonNoMatch Reason = "no match"
	// ReasonInvalidNumber means the captured token is not a number.
	ReasonInvalidNumber Reason = "invalid number"
	// ReasonUnreadable means the file header could not be read.
	ReasonUnreadable Reason = "unreadable"
)

// ExtractionError reports a per-file extraction failure. Callers should skip
// the file and carry on with the rest of the sweep.
type ExtractionError struct {
	Reason Reason
	Source string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract parameter from %s: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("extract parameter from %s: %s", e.Source, e.Reason)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// compilePattern compiles a user-supplied pattern and checks that it has a
// group to capture the numeric token.
func compilePattern(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, fmt.Errorf("pattern is required")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	if re.NumSubexp() == 0 {
		return nil, fmt.Errorf("pattern %q has no capture group", pattern)
	}
	return re, nil
}

// captureToken returns the "param" named group when the pattern has one,
// otherwise the first group.
func captureToken(re *regexp.Regexp, s string) (string, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	if idx := re.SubexpIndex("param"); idx > 0 {
		return m[idx], true
	}
	return m[1], true
}

// parseToken converts a captured token into a float after replacing the
// locale-specific separator with a dot. A separator must sit between digits,
// and the result must be finite.
func parseToken(token, separator string, scale float64) (float64, error) {
	normalized := token
	if separator != "" {
		if strings.HasPrefix(token, separator) || strings.HasSuffix(token, separator) {
			return 0, fmt.Errorf("%q: separator %q must sit between digits", token, separator)
		}
		normalized = strings.ReplaceAll(token, separator, ".")
	}
	v, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, err
	}
	v *= scale
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", token)
	}
	return v, nil
}
