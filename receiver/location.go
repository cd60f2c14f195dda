package receiver

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// LocationPattern builds the path a received file is reported under.
// It supports placeholders that get replaced with actual values:
//   - {year}     - 4-digit year (e.g., "2026")
//   - {month}    - 2-digit month (e.g., "01")
//   - {day}      - 2-digit day (e.g., "15")
//   - {slug}     - unique id plus the slugified file name
//   - {ext}      - lower-cased extension with leading dot (e.g., ".png")
//   - {filename} - {slug}{ext}
type LocationPattern struct {
	pattern string
}

func NewLocationPattern(pattern string) *LocationPattern {
	return &LocationPattern{pattern: pattern}
}

// DefaultLocationPattern organises locations by date: "{year}/{month}/{filename}".
func DefaultLocationPattern() *LocationPattern {
	return NewLocationPattern("{year}/{month}/{filename}")
}

// Generate replaces the placeholders. A zero timestamp leaves the date
// placeholders untouched.
func (p *LocationPattern) Generate(slug string, timestamp time.Time, ext string) (string, error) {
	if slug == "" {
		return "", fmt.Errorf("slug cannot be empty")
	}

	result := p.pattern

	if !timestamp.IsZero() {
		result = strings.ReplaceAll(result, "{year}", fmt.Sprintf("%04d", timestamp.Year()))
		result = strings.ReplaceAll(result, "{month}", fmt.Sprintf("%02d", timestamp.Month()))
		result = strings.ReplaceAll(result, "{day}", fmt.Sprintf("%02d", timestamp.Day()))
	}

	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	result = strings.ReplaceAll(result, "{slug}", slug)
	result = strings.ReplaceAll(result, "{filename}", slug+ext)
	result = strings.ReplaceAll(result, "{ext}", ext)

	return path.Clean(result), nil
}

// NormalizeBaseURL ensures the base URL ends with exactly one slash.
func NormalizeBaseURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimRight(trimmed, "/")
	return trimmed + "/"
}
