package models

import "time"

// Reel is a short video post with engagement counters and a visibility flag.
// The same struct is persisted by gorm (reels table) and by the Mongo store.
type Reel struct {
	ID           uint      `json:"id" gorm:"primaryKey" bson:"_id"`
	UserID       uint      `json:"user_id" gorm:"not null;index" bson:"user_id"` // Owner, validated only at creation
	Title        string    `json:"title" gorm:"size:255" bson:"title"`
	Description  string    `json:"description" gorm:"type:text" bson:"description"`
	VideoURL     string    `json:"video_url" gorm:"size:1024" bson:"video_url"`
	ThumbnailURL string    `json:"thumbnail_url" gorm:"size:1024" bson:"thumbnail_url"`
	DurationMs   int64     `json:"duration_ms" gorm:"not null;default:0" bson:"duration_ms"`
	LikesCount   int64     `json:"likes_count" gorm:"not null;default:0" bson:"likes_count"`
	ViewsCount   int64     `json:"views_count" gorm:"not null;default:0" bson:"views_count"`
	IsPrivate    bool      `json:"is_private" gorm:"not null;default:false;index" bson:"is_private"`
	CreatedAt    time.Time `json:"created_at" gorm:"index" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// ReelFields are the columns replaced wholesale by an update.
type ReelFields struct {
	Title        string
	Description  string
	VideoURL     string
	ThumbnailURL string
	DurationMs   int64
	IsPrivate    bool
}

// Fields returns the replaceable part of the reel.
func (r *Reel) Fields() ReelFields {
	return ReelFields{
		Title:        r.Title,
		Description:  r.Description,
		VideoURL:     r.VideoURL,
		ThumbnailURL: r.ThumbnailURL,
		DurationMs:   r.DurationMs,
		IsPrivate:    r.IsPrivate,
	}
}

// Apply overwrites the replaceable columns of r with f.
func (r *Reel) Apply(f ReelFields) {
	r.Title = f.Title
	r.Description = f.Description
	r.VideoURL = f.VideoURL
	r.ThumbnailURL = f.ThumbnailURL
	r.DurationMs = f.DurationMs
	r.IsPrivate = f.IsPrivate
}

// ReelResponse is a reel decorated with its owner's username.
type ReelResponse struct {
	Reel
	Username string `json:"username"`
}

// UnknownUsername is shown for reels whose owner no longer resolves.
const UnknownUsername = "Unknown"

// CreateReelRequest defines the request body for creating a reel from
// already-uploaded media.
type CreateReelRequest struct {
	UserID       uint   `json:"user_id" validate:"required"`
	Title        string `json:"title" validate:"max=255"`
	Description  string `json:"description"`
	VideoURL     string `json:"video_url" validate:"max=1024"`
	ThumbnailURL string `json:"thumbnail_url" validate:"max=1024"`
	DurationMs   int64  `json:"duration_ms" validate:"min=0"`
	IsPrivate    bool   `json:"is_private"`
}

// UpdateReelRequest defines the request body for replacing a reel's content.
// Absent fields overwrite with their zero value.
type UpdateReelRequest struct {
	Title        string `json:"title" validate:"max=255"`
	Description  string `json:"description"`
	VideoURL     string `json:"video_url" validate:"max=1024"`
	ThumbnailURL string `json:"thumbnail_url" validate:"max=1024"`
	DurationMs   int64  `json:"duration_ms" validate:"min=0"`
	IsPrivate    bool   `json:"is_private"`
}

// Fields converts the request into the replaceable reel columns.
func (r UpdateReelRequest) Fields() ReelFields {
	return ReelFields{
		Title:        r.Title,
		Description:  r.Description,
		VideoURL:     r.VideoURL,
		ThumbnailURL: r.ThumbnailURL,
		DurationMs:   r.DurationMs,
		IsPrivate:    r.IsPrivate,
	}
}
