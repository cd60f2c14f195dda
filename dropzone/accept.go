package dropzone

import (
	"strings"
)

// Rule maps one MIME type to the file extensions that stand for it.
type Rule struct {
	MIMEType   string
	Extensions []string
}

// Accept is an ordered accept filter. The order drives Hint and Phrase.
type Accept []Rule

// DefaultAccept admits PNG, JPG and JPEG images.
func DefaultAccept() Accept {
	return Accept{
		{MIMEType: "image/png", Extensions: []string{".png"}},
		{MIMEType: "image/jpg", Extensions: []string{".jpg"}},
		{MIMEType: "image/jpeg", Extensions: []string{".jpeg"}},
	}
}

// Allows reports whether f matches a rule by type or by name extension.
// An empty filter allows everything.
func (a Accept) Allows(f File) bool {
	if len(a) == 0 {
		return true
	}

	fileType := strings.ToLower(f.Type)
	name := strings.ToLower(f.Name)

	for _, rule := range a {
		if typeMatches(strings.ToLower(rule.MIMEType), fileType) {
			return true
		}
		for _, ext := range rule.Extensions {
			if ext != "" && strings.HasSuffix(name, strings.ToLower(ext)) {
				return true
			}
		}
	}

	return false
}

func typeMatches(pattern, fileType string) bool {
	if pattern == "" || fileType == "" {
		return false
	}

	if major, ok := strings.CutSuffix(pattern, "/*"); ok {
		fileMajor, _, _ := strings.Cut(fileType, "/")
		return fileMajor == major
	}

	return pattern == fileType
}

// Extensions lists the labels of the filter in order, upper-cased and
// without the leading dot. Rules without extensions contribute their subtype.
func (a Accept) Extensions() []string {
	var labels []string
	seen := map[string]bool{}

	add := func(label string) {
		label = strings.ToUpper(strings.TrimPrefix(label, "."))
		if label == "" || seen[label] {
			return
		}
		seen[label] = true
		labels = append(labels, label)
	}

	for _, rule := range a {
		if len(rule.Extensions) == 0 {
			_, sub, _ := strings.Cut(rule.MIMEType, "/")
			if sub != "*" {
				add(sub)
			}
			continue
		}
		for _, ext := range rule.Extensions {
			add(ext)
		}
	}

	return labels
}

// Hint is the short label list shown under the drop zone, e.g. "PNG, JPG, JPEG".
func (a Accept) Hint() string {
	return strings.Join(a.Extensions(), ", ")
}

// Phrase joins the labels for prose, e.g. "PNG, JPG, or JPEG".
func (a Accept) Phrase() string {
	labels := a.Extensions()

	switch len(labels) {
	case 0:
		return ""
	case 1:
		return labels[0]
	case 2:
		return labels[0] + " or " + labels[1]
	default:
		return strings.Join(labels[:len(labels)-1], ", ") + ", or " + labels[len(labels)-1]
	}
}
