package receiver

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"
)

type MultipartFile struct {
	Field  string
	File   multipart.File
	Header *multipart.FileHeader
}

type ParsedMultipart struct {
	Files []MultipartFile

	form *multipart.Form
}

// CloseFiles closes every opened part and removes the temporary files the
// form spilled to disk. The request may be a copy made by middleware, so
// net/http's own cleanup cannot be relied on.
func (pm *ParsedMultipart) CloseFiles() {
	for _, mf := range pm.Files {
		if mf.File != nil {
			mf.File.Close()
		}
	}

	if pm.form != nil {
		pm.form.RemoveAll()
	}
}

// ParseMultipart caps the body at maxPayload, parses it keeping up to
// maxMemory in memory, and opens every file under field. A body over the
// cap yields a *http.MaxBytesError.
func ParseMultipart(w http.ResponseWriter, r *http.Request, maxPayload, maxMemory int64, field string) (*ParsedMultipart, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPayload)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		return nil, err
	}

	pm := &ParsedMultipart{form: r.MultipartForm}
	for _, fh := range r.MultipartForm.File[field] {
		f, err := fh.Open()
		if err != nil {
			pm.CloseFiles()
			return nil, err
		}

		pm.Files = append(pm.Files, MultipartFile{Field: field, File: f, Header: fh})
	}

	return pm, nil
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return true
	}
	return errors.Is(err, multipart.ErrMessageTooLarge) || strings.Contains(err.Error(), "request body too large")
}
