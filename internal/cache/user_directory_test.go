package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/reelhub/backend/internal/apperr"
	"github.com/reelhub/backend/internal/models"
	"github.com/reelhub/backend/internal/repositories"
	"github.com/reelhub/backend/internal/testsupport"
	"github.com/reelhub/backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	v, ok := s.data[key]
	if !ok {
		return nil, ErrMiss
	}
	return v, nil
}

func (s *memoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	s.ttls[key] = ttl
	return nil
}

// countingRepo counts id lookups that reach the database.
type countingRepo struct {
	repositories.UserRepository
	mu    sync.Mutex
	calls int
}

func (r *countingRepo) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	return r.UserRepository.GetUserByID(ctx, id)
}

func TestUserDirectoryReadThrough(t *testing.T) {
	db := testsupport.NewDB(t)
	user := testsupport.CreateUser(t, db, "cached")
	repo := &countingRepo{UserRepository: repositories.NewPostgresUserRepository(db)}
	store := newMemoryStore()
	dir := NewUserDirectory(repo, store, time.Minute, logger.Discard())
	ctx := context.Background()

	first, err := dir.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	second, err := dir.GetUserByID(ctx, user.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.calls)
	assert.Equal(t, first.Username, second.Username)
	assert.Empty(t, second.Password)
	assert.Equal(t, time.Minute, store.ttls[userKey(user.ID)])
	assert.NotContains(t, string(store.data[userKey(user.ID)]), "password")
}

func TestUserDirectoryFallsBackOnCacheError(t *testing.T) {
	db := testsupport.NewDB(t)
	user := testsupport.CreateUser(t, db, "resilient")
	store := newMemoryStore()
	store.getErr = errors.New("connection refused")
	dir := NewUserDirectory(repositories.NewPostgresUserRepository(db), store, time.Minute, logger.Discard())

	got, err := dir.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "resilient", got.Username)
}

func TestUserDirectoryDiscardsCorruptEntry(t *testing.T) {
	db := testsupport.NewDB(t)
	user := testsupport.CreateUser(t, db, "fresh")
	store := newMemoryStore()
	store.data[userKey(user.ID)] = []byte("{not json")
	dir := NewUserDirectory(repositories.NewPostgresUserRepository(db), store, time.Minute, logger.Discard())

	got, err := dir.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "fresh", got.Username)
}

func TestUserDirectoryMissIsNotCached(t *testing.T) {
	store := newMemoryStore()
	dir := NewUserDirectory(repositories.NewPostgresUserRepository(testsupport.NewDB(t)), store, time.Minute, logger.Discard())

	_, err := dir.GetUserByID(context.Background(), 42)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.Empty(t, store.data)
}
