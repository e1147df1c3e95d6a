package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/reelhub/backend/internal/ai"
	"github.com/reelhub/backend/internal/apperr"
	"github.com/reelhub/backend/internal/messaging"
	"github.com/reelhub/backend/internal/models"
	"github.com/reelhub/backend/internal/repositories"
	"github.com/reelhub/backend/internal/storage"
	"github.com/sirupsen/logrus"
)

// MediaGenerator produces default captions and thumbnails. *ai.Generator
// implements it.
type MediaGenerator interface {
	GenerateCaption(ctx context.Context, filename string, body io.Reader) string
	GenerateThumbnail(filename string) ([]byte, error)
}

// MediaFile is an uploaded file that can be opened more than once.
type MediaFile struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// UploadReelInput carries a multipart reel upload.
type UploadReelInput struct {
	UserID      uint
	Title       string
	Description string
	Privacy     string // "private" (any case) hides the reel from public listings
	Video       *MediaFile
	Thumbnail   *MediaFile
}

// ReelService orchestrates the reel store, the user directory, the storage
// gateway and the generator.
type ReelService struct {
	reels     repositories.ReelRepository
	users     repositories.UserRepository
	storage   storage.Gateway
	generator MediaGenerator
	events    messaging.Publisher
	log       *logrus.Entry
	now       func() time.Time
}

// NewReelService creates a new ReelService
func NewReelService(
	reels repositories.ReelRepository,
	users repositories.UserRepository,
	gateway storage.Gateway,
	generator MediaGenerator,
	events messaging.Publisher,
	log *logrus.Logger,
) *ReelService {
	if events == nil {
		events = messaging.NopPublisher{}
	}
	return &ReelService{
		reels:     reels,
		users:     users,
		storage:   gateway,
		generator: generator,
		events:    events,
		log:       log.WithField("component", "reel_service"),
		now:       time.Now,
	}
}

// CreateReel stores a reel whose media was uploaded beforehand. The owner
// must exist.
func (s *ReelService) CreateReel(ctx context.Context, req models.CreateReelRequest) (*models.ReelResponse, error) {
	owner, err := s.users.GetUserByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	reel := &models.Reel{
		UserID:       req.UserID,
		Title:        req.Title,
		Description:  req.Description,
		VideoURL:     req.VideoURL,
		ThumbnailURL: req.ThumbnailURL,
		DurationMs:   req.DurationMs,
		IsPrivate:    req.IsPrivate,
	}
	if err := s.reels.CreateReel(ctx, reel); err != nil {
		return nil, fmt.Errorf("create reel: %w", err)
	}

	s.publish(ctx, messaging.SubjectReelCreated, reel)
	return &models.ReelResponse{Reel: *reel, Username: owner.Username}, nil
}

// UploadReel stores the video, fills in a thumbnail and a caption when the
// client sent none, then creates the reel. Video storage failures abort the
// upload; thumbnail and caption generation failures only leave the field empty.
func (s *ReelService) UploadReel(ctx context.Context, in UploadReelInput) (*models.ReelResponse, error) {
	if in.Video == nil || in.Video.Size == 0 {
		return nil, fmt.Errorf("video file is required: %w", apperr.ErrValidationFailed)
	}

	owner, err := s.users.GetUserByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	videoURL, err := s.put(ctx, storage.KindVideo, in.Video)
	if err != nil {
		return nil, err
	}

	var thumbnailURL string
	if in.Thumbnail != nil && in.Thumbnail.Size > 0 {
		thumbnailURL, err = s.put(ctx, storage.KindThumbnail, in.Thumbnail)
		if err != nil {
			return nil, err
		}
	} else {
		thumbnailURL = s.generatedThumbnail(ctx, in.UserID, in.Video.Filename)
	}

	description := in.Description
	if description == "" {
		description = s.generatedCaption(ctx, in.Video)
	}

	reel := &models.Reel{
		UserID:       in.UserID,
		Title:        in.Title,
		Description:  description,
		VideoURL:     videoURL,
		ThumbnailURL: thumbnailURL,
		IsPrivate:    strings.EqualFold(in.Privacy, "private"),
	}
	if err := s.reels.CreateReel(ctx, reel); err != nil {
		return nil, fmt.Errorf("create reel: %w", err)
	}

	s.publish(ctx, messaging.SubjectReelCreated, reel)
	return &models.ReelResponse{Reel: *reel, Username: owner.Username}, nil
}

func (s *ReelService) put(ctx context.Context, kind storage.Kind, f *MediaFile) (string, error) {
	body, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", f.Filename, err)
	}
	defer body.Close()

	loc, err := s.storage.Put(ctx, storage.Object{
		Kind:        kind,
		Name:        f.Filename,
		ContentType: f.ContentType,
		Size:        f.Size,
		Body:        body,
	})
	if err != nil {
		if !errors.Is(err, apperr.ErrStorageUnavailable) {
			err = fmt.Errorf("%w: %v", apperr.ErrStorageUnavailable, err)
		}
		return "", err
	}
	return loc, nil
}

// generatedThumbnail returns "" when anything along the way fails.
func (s *ReelService) generatedThumbnail(ctx context.Context, userID uint, videoName string) string {
	log := s.log.WithFields(logrus.Fields{"user_id": userID, "filename": videoName})

	data, err := s.generator.GenerateThumbnail(videoName)
	if err != nil || len(data) == 0 {
		log.WithError(err).Warn("thumbnail generation failed, continuing without thumbnail")
		return ""
	}

	name := fmt.Sprintf("%d_%d.jpg", userID, s.now().UnixMilli())
	loc, err := s.storage.Put(ctx, storage.Object{
		Kind:        storage.KindThumbnail,
		Name:        name,
		ContentType: "image/jpeg",
		Size:        int64(len(data)),
		Body:        bytes.NewReader(data),
	})
	if err != nil {
		log.WithError(err).Warn("generated thumbnail upload failed, continuing without thumbnail")
		return ""
	}
	return loc
}

// generatedCaption returns "" when the video can no longer be read.
func (s *ReelService) generatedCaption(ctx context.Context, video *MediaFile) string {
	body, err := video.Open()
	if err != nil {
		s.log.WithError(err).WithField("filename", video.Filename).Warn("caption generation failed, leaving description empty")
		return ""
	}
	defer body.Close()
	return s.generator.GenerateCaption(ctx, video.Filename, body) + ai.GeneratedMarker
}

// GetReel returns one reel with its owner's username
func (s *ReelService) GetReel(ctx context.Context, id uint) (*models.ReelResponse, error) {
	reel, err := s.reels.GetReelByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := s.decorate(ctx, []models.Reel{*reel})
	return &out[0], nil
}

// ListPublicReels returns all public reels, newest first
func (s *ReelService) ListPublicReels(ctx context.Context) ([]models.ReelResponse, error) {
	reels, err := s.reels.GetPublicReels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list public reels: %w", err)
	}
	return s.decorate(ctx, reels), nil
}

// ListReelsByOwner returns every reel of ownerID, private ones included.
// Callers must pass the authenticated identity, never a client-chosen id.
func (s *ReelService) ListReelsByOwner(ctx context.Context, ownerID uint) ([]models.ReelResponse, error) {
	reels, err := s.reels.GetReelsByUserID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list reels of user %d: %w", ownerID, err)
	}
	return s.decorate(ctx, reels), nil
}

// UpdateReel replaces the reel's content fields
func (s *ReelService) UpdateReel(ctx context.Context, id uint, req models.UpdateReelRequest) (*models.ReelResponse, error) {
	reel, err := s.reels.UpdateReel(ctx, id, req.Fields())
	if err != nil {
		return nil, err
	}
	s.publish(ctx, messaging.SubjectReelUpdated, reel)
	out := s.decorate(ctx, []models.Reel{*reel})
	return &out[0], nil
}

// DeleteReel removes the reel. Stored media is left in place.
func (s *ReelService) DeleteReel(ctx context.Context, id uint) error {
	if err := s.reels.DeleteReel(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, messaging.SubjectReelDeleted, &models.Reel{ID: id})
	return nil
}

// LikeReel adds one like
func (s *ReelService) LikeReel(ctx context.Context, id uint) error {
	if err := s.reels.IncrementLikesCount(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, messaging.SubjectReelLiked, &models.Reel{ID: id})
	return nil
}

// ViewReel adds one view
func (s *ReelService) ViewReel(ctx context.Context, id uint) error {
	if err := s.reels.IncrementViewsCount(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, messaging.SubjectReelViewed, &models.Reel{ID: id})
	return nil
}

// decorate attaches usernames, resolving each owner once per call.
func (s *ReelService) decorate(ctx context.Context, reels []models.Reel) []models.ReelResponse {
	out := make([]models.ReelResponse, len(reels))
	usernames := make(map[uint]string)

	for i, reel := range reels {
		name, ok := usernames[reel.UserID]
		if !ok {
			name = models.UnknownUsername
			user, err := s.users.GetUserByID(ctx, reel.UserID)
			switch {
			case err == nil:
				name = user.Username
			case !errors.Is(err, apperr.ErrNotFound):
				s.log.WithError(err).WithField("user_id", reel.UserID).Warn("owner lookup failed")
			}
			usernames[reel.UserID] = name
		}
		out[i] = models.ReelResponse{Reel: reel, Username: name}
	}
	return out
}

func (s *ReelService) publish(ctx context.Context, subject string, reel *models.Reel) {
	event := messaging.NewReelEvent(subject, reel.ID, reel.UserID, reel.IsPrivate)
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"subject": subject, "reel_id": reel.ID}).Warn("publish reel event failed")
	}
}
