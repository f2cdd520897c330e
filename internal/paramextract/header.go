package paramextract

import (
	"regexp"

	"github.com/spboyer/coopsweep/internal/dataset"
)

// HeaderExtractor matches a pattern against the first line of the file,
// where the simulator writes its settings with a comma as decimal separator
// (for example "# coopRatio = 0,35").
type HeaderExtractor struct {
	pattern *regexp.Regexp
	scale   float64
	opts    dataset.Options
}

// NewHeaderExtractor compiles pattern and returns an extractor that
// multiplies each value by scale. Use a scale of 100 when the header stores
// a fraction and the sweep is expressed in percent.
func NewHeaderExtractor(pattern string, scale float64, opts dataset.Options) (*HeaderExtractor, error) {
	re, err := compilePattern(pattern)
	if err != nil {
		return nil, err
	}
	if err := checkScale(scale); err != nil {
		return nil, err
	}
	return &HeaderExtractor{pattern: re, scale: scale, opts: opts}, nil
}

// Extract implements Extractor. Only the first line of the file is read.
func (e *HeaderExtractor) Extract(path string) (float64, error) {
	line, err := dataset.ReadFirstLine(path, e.opts)
	if err != nil {
		return 0, &ExtractionError{Reason: ReasonUnreadable, Source: path, Err: err}
	}
	token, ok := captureToken(e.pattern, line)
	if !ok {
		return 0, &ExtractionError{Reason: ReasonNoMatch, Source: path}
	}
	v, err := parseToken(token, ",", e.scale)
	if err != nil {
		return 0, &ExtractionError{Reason: ReasonInvalidNumber, Source: path, Err: err}
	}
	return v, nil
}
