package config

import (
	"mime"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var extensionPattern = regexp.MustCompile(`^\.[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateMimeType accepts "type/subtype" with optional wildcard subtype.
func ValidateMimeType(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return false
	}

	mediaType, params, err := mime.ParseMediaType(s)
	if err != nil || len(params) > 0 {
		return false
	}

	major, minor, ok := strings.Cut(mediaType, "/")
	return ok && major != "" && major != "*" && minor != ""
}

func ValidateExtension(fl validator.FieldLevel) bool {
	return extensionPattern.MatchString(fl.Field().String())
}

func ValidateIdentifier(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}

	matched, err := regexp.MatchString(`^[A-Za-z_][A-Za-z0-9_]*$`, s)
	if err != nil {
		return false
	}

	return matched
}

// ValidateLocationPattern requires a relative pattern that names the file
// through {slug} or {filename} and cannot climb out of the base URL.
func ValidateLocationPattern(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}

	if strings.HasPrefix(s, "/") || strings.ContainsRune(s, 0) {
		return false
	}

	for _, segment := range strings.Split(s, "/") {
		if segment == ".." {
			return false
		}
	}

	return strings.Contains(s, "{slug}") || strings.Contains(s, "{filename}")
}
