package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/reelhub/backend/internal/models"
	"github.com/reelhub/backend/internal/repositories"
	"github.com/sirupsen/logrus"
)

// cachedUser is the subset of a user kept in the cache. Credentials never
// leave the database.
type cachedUser struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// UserDirectory fronts a UserRepository with a read-through cache on id
// lookups, the hot path when decorating reel listings with usernames.
// Users are never mutated after registration, so entries only expire.
type UserDirectory struct {
	repositories.UserRepository
	store Store
	ttl   time.Duration
	log   *logrus.Entry
}

// NewUserDirectory wraps repo with store.
func NewUserDirectory(repo repositories.UserRepository, store Store, ttl time.Duration, log *logrus.Logger) *UserDirectory {
	return &UserDirectory{
		UserRepository: repo,
		store:          store,
		ttl:            ttl,
		log:            log.WithField("component", "user_cache"),
	}
}

func userKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

// GetUserByID serves from the cache when possible. Cache failures fall back
// to the repository; they are never returned to the caller.
func (d *UserDirectory) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	raw, err := d.store.Get(ctx, userKey(id))
	if err == nil {
		var cu cachedUser
		if err := json.Unmarshal(raw, &cu); err == nil {
			return &models.User{ID: cu.ID, Username: cu.Username, Email: cu.Email, CreatedAt: cu.CreatedAt}, nil
		}
		d.log.WithField("user_id", id).Warn("discarding undecodable cache entry")
	} else if !errors.Is(err, ErrMiss) {
		d.log.WithError(err).WithField("user_id", id).Warn("cache read failed")
	}

	user, err := d.UserRepository.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(cachedUser{ID: user.ID, Username: user.Username, Email: user.Email, CreatedAt: user.CreatedAt})
	if err == nil {
		if err := d.store.Set(ctx, userKey(id), payload, d.ttl); err != nil {
			d.log.WithError(err).WithField("user_id", id).Warn("cache write failed")
		}
	}
	return user, nil
}

var _ repositories.UserRepository = (*UserDirectory)(nil)
