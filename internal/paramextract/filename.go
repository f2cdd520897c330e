package paramextract

import (
	"path/filepath"
	"regexp"
)

// FilenameExtractor matches a pattern against the base file name. A dash in
// the token always stands for the decimal point, so "Temptation1-2.csv"
// yields 1.2. A token that starts or ends with a dash is rejected, so
// negative parameters cannot be encoded in file names.
type FilenameExtractor struct {
	pattern *regexp.Regexp
	scale   float64
}

// NewFilenameExtractor compiles pattern and returns an extractor that
// multiplies each value by scale.
func NewFilenameExtractor(pattern string, scale float64) (*FilenameExtractor, error) {
	re, err := compilePattern(pattern)
	if err != nil {
		return nil, err
	}
	if err := checkScale(scale); err != nil {
		return nil, err
	}
	return &FilenameExtractor{pattern: re, scale: scale}, nil
}

// Extract implements Extractor.
func (e *FilenameExtractor) Extract(path string) (float64, error) {
	base := filepath.Base(path)
	token, ok := captureToken(e.pattern, base)
	if !ok {
		return 0, &ExtractionError{Reason: ReasonNoMatch, Source: path}
	}
	v, err := parseToken(token, "-", e.scale)
	if err != nil {
		return 0, &ExtractionError{Reason: ReasonInvalidNumber, Source: path, Err: err}
	}
	return v, nil
}
