package receiver

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/indieinfra/dropper/logging"
)

type StoredFile struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Size     int64  `json:"size"`
	Location string `json:"location"`
}

// Store takes ownership of one received part.
type Store interface {
	Put(ctx context.Context, name, contentType string, r io.Reader) (*StoredFile, error)
}

// DiscardStore drains parts and hands back a placeholder location.
type DiscardStore struct {
	BaseURL string
	Pattern *LocationPattern

	now func() time.Time
}

func (ds *DiscardStore) Put(ctx context.Context, name, contentType string, r io.Reader) (*StoredFile, error) {
	n, err := io.Copy(io.Discard, r)
	if err != nil {
		return nil, fmt.Errorf("drain %s: %w", name, err)
	}

	if ul := logging.FromContext(ctx); ul != nil {
		ul.Infof("discarded %s (%s, %d bytes)", name, contentType, n)
	}

	location, err := ds.location(name)
	if err != nil {
		return nil, err
	}

	return &StoredFile{
		Name:     name,
		Type:     contentType,
		Size:     n,
		Location: location,
	}, nil
}

func (ds *DiscardStore) location(filename string) (string, error) {
	base := ds.BaseURL
	if base == "" {
		base = "https://noop.example.org"
	}

	pattern := ds.Pattern
	if pattern == nil || pattern.pattern == "" {
		pattern = DefaultLocationPattern()
	}

	now := time.Now
	if ds.now != nil {
		now = ds.now
	}

	ext := strings.ToLower(filepath.Ext(filename))
	rel, err := pattern.Generate(locationSlug(filename), now(), ext)
	if err != nil {
		return "", err
	}

	return NormalizeBaseURL(base) + strings.TrimPrefix(rel, "/"), nil
}

func locationSlug(filename string) string {
	id := uuid.NewString()

	base := slug.Make(strings.TrimSuffix(filename, filepath.Ext(filename)))
	if base == "" {
		return id
	}
	return id + "-" + base
}
