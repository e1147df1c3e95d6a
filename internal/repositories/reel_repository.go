package repositories

import (
	"context"
	"time"

	"github.com/reelhub/backend/internal/models"
	"gorm.io/gorm"
)

// ReelRepository is the reel store. Counter increments are executed by the
// storage engine in a single statement so concurrent callers never lose updates.
type ReelRepository interface {
	CreateReel(ctx context.Context, reel *models.Reel) error
	GetReelByID(ctx context.Context, id uint) (*models.Reel, error)
	GetPublicReels(ctx context.Context) ([]models.Reel, error)
	GetReelsByUserID(ctx context.Context, userID uint) ([]models.Reel, error)
	UpdateReel(ctx context.Context, id uint, fields models.ReelFields) (*models.Reel, error)
	DeleteReel(ctx context.Context, id uint) error
	IncrementLikesCount(ctx context.Context, id uint) error
	IncrementViewsCount(ctx context.Context, id uint) error
}

// PostgresReelRepository implements ReelRepository with gorm. Despite the name
// it runs on every dialect the service can be configured with.
type PostgresReelRepository struct {
	db        *gorm.DB
	now       func() time.Time
	precision time.Duration
}

// NewPostgresReelRepository creates a new PostgresReelRepository
func NewPostgresReelRepository(db *gorm.DB) *PostgresReelRepository {
	return &PostgresReelRepository{
		db:        db,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
		precision: time.Microsecond,
	}
}

// CreateReel inserts a reel with zeroed counters and both timestamps set to now
func (r *PostgresReelRepository) CreateReel(ctx context.Context, reel *models.Reel) error {
	now := r.now()
	reel.ID = 0
	reel.LikesCount = 0
	reel.ViewsCount = 0
	if reel.DurationMs < 0 {
		reel.DurationMs = 0
	}
	reel.CreatedAt = now
	reel.UpdatedAt = now
	return r.db.WithContext(ctx).Create(reel).Error
}

// GetReelByID retrieves a reel by ID
func (r *PostgresReelRepository) GetReelByID(ctx context.Context, id uint) (*models.Reel, error) {
	var reel models.Reel
	if err := r.db.WithContext(ctx).First(&reel, id).Error; err != nil {
		return nil, notFound(err, "reel %d", id)
	}
	return &reel, nil
}

// GetPublicReels retrieves every non-private reel, newest first
func (r *PostgresReelRepository) GetPublicReels(ctx context.Context) ([]models.Reel, error) {
	reels := make([]models.Reel, 0)
	err := r.db.WithContext(ctx).
		Where("is_private = ?", false).
		Order("created_at DESC").Order("id DESC").
		Find(&reels).Error
	if err != nil {
		return nil, err
	}
	return reels, nil
}

// GetReelsByUserID retrieves all reels of one owner, private ones included
func (r *PostgresReelRepository) GetReelsByUserID(ctx context.Context, userID uint) ([]models.Reel, error) {
	reels := make([]models.Reel, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&reels).Error
	if err != nil {
		return nil, err
	}
	return reels, nil
}

// UpdateReel replaces the content columns of a reel. updated_at always moves
// forward, even when the clock has not advanced since the previous write.
func (r *PostgresReelRepository) UpdateReel(ctx context.Context, id uint, fields models.ReelFields) (*models.Reel, error) {
	var reel models.Reel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&reel, id).Error; err != nil {
			return notFound(err, "reel %d", id)
		}

		now := r.now()
		if !now.After(reel.UpdatedAt) {
			now = reel.UpdatedAt.Add(r.precision)
		}
		if fields.DurationMs < 0 {
			fields.DurationMs = 0
		}
		reel.Apply(fields)
		reel.UpdatedAt = now

		return tx.Model(&models.Reel{}).Where("id = ?", id).UpdateColumns(map[string]any{
			"title":         reel.Title,
			"description":   reel.Description,
			"video_url":     reel.VideoURL,
			"thumbnail_url": reel.ThumbnailURL,
			"duration_ms":   reel.DurationMs,
			"is_private":    reel.IsPrivate,
			"updated_at":    reel.UpdatedAt,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &reel, nil
}

// DeleteReel deletes a reel by ID
func (r *PostgresReelRepository) DeleteReel(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Reel{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "reel %d", id)
	}
	return nil
}

// IncrementLikesCount adds one like inside the database
func (r *PostgresReelRepository) IncrementLikesCount(ctx context.Context, id uint) error {
	return r.increment(ctx, id, "likes_count")
}

// IncrementViewsCount adds one view inside the database
func (r *PostgresReelRepository) IncrementViewsCount(ctx context.Context, id uint) error {
	return r.increment(ctx, id, "views_count")
}

// increment issues "col = col + 1" and reports apperr.ErrNotFound when the
// statement matched no row, so existence check and update cannot interleave.
// updated_at only moves forward; an update may have stamped it ahead of the clock.
func (r *PostgresReelRepository) increment(ctx context.Context, id uint, column string) error {
	now := r.now()
	res := r.db.WithContext(ctx).Model(&models.Reel{}).Where("id = ?", id).UpdateColumns(map[string]any{
		column:       gorm.Expr(column+" + ?", 1),
		"updated_at": gorm.Expr("CASE WHEN updated_at < ? THEN ? ELSE updated_at END", now, now),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "reel %d", id)
	}
	return nil
}

var _ ReelRepository = (*PostgresReelRepository)(nil)
