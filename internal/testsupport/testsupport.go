// Package testsupport provides an in-memory database and recording fakes
// for package tests.
package testsupport

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/reelhub/backend/internal/apperr"
	"github.com/reelhub/backend/internal/messaging"
	"github.com/reelhub/backend/internal/models"
	"github.com/reelhub/backend/internal/storage"
	"github.com/reelhub/backend/pkg/config"
	"github.com/reelhub/backend/pkg/logger"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var dsnReplacer = strings.NewReplacer("/", "_", " ", "_", "#", "_", "?", "_")

// NewDB opens a migrated sqlite in-memory database private to t.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", dsnReplacer.Replace(t.Name()))
	db, err := config.OpenSQL("sqlite", dsn, logger.Discard())
	require.NoError(t, err)
	require.NoError(t, config.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// CreateUser inserts a user with a unique email derived from username.
func CreateUser(t testing.TB, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com", Password: "x"}
	require.NoError(t, db.Create(user).Error)
	return user
}

// RecordingPublisher keeps every event it is given.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []messaging.ReelEvent
	Err    error
}

func (p *RecordingPublisher) Publish(_ context.Context, event messaging.ReelEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.Err
}

func (p *RecordingPublisher) Subjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Subject
	}
	return out
}

// StoredObject is what StubGateway saw for one Put.
type StoredObject struct {
	Kind        storage.Kind
	Name        string
	ContentType string
	Data        []byte
	Locator     string
}

// StubGateway reads every upload into memory. Kinds listed in Fail are
// rejected with apperr.ErrStorageUnavailable.
type StubGateway struct {
	mu      sync.Mutex
	objects []StoredObject
	Fail    map[storage.Kind]bool
}

func (g *StubGateway) Put(_ context.Context, obj storage.Object) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Fail[obj.Kind] {
		return "", fmt.Errorf("bucket offline: %w", apperr.ErrStorageUnavailable)
	}
	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return "", err
	}
	loc := "/api/" + storage.ObjectKey(obj.Kind, obj.Name)
	g.objects = append(g.objects, StoredObject{
		Kind:        obj.Kind,
		Name:        obj.Name,
		ContentType: obj.ContentType,
		Data:        data,
		Locator:     loc,
	})
	return loc, nil
}

func (g *StubGateway) Objects() []StoredObject {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]StoredObject(nil), g.objects...)
}

// StubGenerator returns canned captions and thumbnails.
type StubGenerator struct {
	Caption      string
	Thumbnail    []byte
	ThumbnailErr error

	mu           sync.Mutex
	captionInput []string
}

func (g *StubGenerator) GenerateCaption(_ context.Context, filename string, body io.Reader) string {
	data, _ := io.ReadAll(body)
	g.mu.Lock()
	g.captionInput = append(g.captionInput, filename+":"+string(data))
	g.mu.Unlock()
	return g.Caption
}

func (g *StubGenerator) GenerateThumbnail(string) ([]byte, error) {
	if g.ThumbnailErr != nil {
		return []byte{}, g.ThumbnailErr
	}
	return g.Thumbnail, nil
}

// CaptionInputs lists "filename:body" for every caption request.
func (g *StubGenerator) CaptionInputs() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.captionInput...)
}
