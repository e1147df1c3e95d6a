// Package storage uploads media and hands back opaque locators. Locators are
// identifiers only: nothing guarantees the content stays retrievable.
package storage

import (
	"context"
	"io"
	"regexp"

	"github.com/google/uuid"
)

// Kind selects the key prefix an object is stored under
type Kind string

const (
	KindVideo     Kind = "videos"
	KindThumbnail Kind = "thumbnails"
)

// Object is one upload
type Object struct {
	Kind        Kind
	Name        string // display name, usually the client's filename
	ContentType string
	Size        int64
	Body        io.Reader
}

// Gateway stores an object and returns its locator. Failures wrap
// apperr.ErrStorageUnavailable.
type Gateway interface {
	Put(ctx context.Context, obj Object) (string, error)
}

var whitespace = regexp.MustCompile(`\s+`)

// ObjectKey builds "<kind>/<uuid>-<name>" with whitespace runs in name
// replaced by a dash.
func ObjectKey(kind Kind, name string) string {
	if name == "" {
		name = "upload"
	}
	return string(kind) + "/" + uuid.NewString() + "-" + whitespace.ReplaceAllString(name, "-")
}

// MockGateway accepts everything and returns a synthetic /api/... locator
// without persisting the bytes.
type MockGateway struct{}

func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (MockGateway) Put(_ context.Context, obj Object) (string, error) {
	return "/api/" + ObjectKey(obj.Kind, obj.Name), nil
}
