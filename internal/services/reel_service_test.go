package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/reelhub/backend/internal/ai"
	"github.com/reelhub/backend/internal/apperr"
	"github.com/reelhub/backend/internal/messaging"
	"github.com/reelhub/backend/internal/models"
	"github.com/reelhub/backend/internal/repositories"
	"github.com/reelhub/backend/internal/storage"
	"github.com/reelhub/backend/internal/testsupport"
	"github.com/reelhub/backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db        *gorm.DB
	service   *ReelService
	gateway   *testsupport.StubGateway
	generator *testsupport.StubGenerator
	events    *testsupport.RecordingPublisher
	owner     *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testsupport.NewDB(t)
	f := &fixture{
		db:        db,
		gateway:   &testsupport.StubGateway{},
		generator: &testsupport.StubGenerator{Caption: "My Clip | #trending #viral #reels", Thumbnail: []byte("jpeg")},
		events:    &testsupport.RecordingPublisher{},
		owner:     testsupport.CreateUser(t, db, "creator"),
	}
	f.service = NewReelService(
		repositories.NewPostgresReelRepository(db),
		repositories.NewPostgresUserRepository(db),
		f.gateway,
		f.generator,
		f.events,
		logger.Discard(),
	)
	return f
}

func memFile(name, contentType string, data []byte) *MediaFile {
	return &MediaFile{
		Filename:    name,
		ContentType: contentType,
		Size:        int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

func TestCreateReelRequiresExistingOwner(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.CreateReel(context.Background(), models.CreateReelRequest{UserID: 9999, Title: "x"})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.Empty(t, f.events.Subjects())
}

func TestCreateReel(t *testing.T) {
	f := newFixture(t)

	out, err := f.service.CreateReel(context.Background(), models.CreateReelRequest{
		UserID:   f.owner.ID,
		Title:    "Sunset",
		VideoURL: "/api/videos/sunset.mp4",
	})
	require.NoError(t, err)
	assert.NotZero(t, out.ID)
	assert.Equal(t, "creator", out.Username)
	assert.Zero(t, out.LikesCount)
	assert.Equal(t, []string{messaging.SubjectReelCreated}, f.events.Subjects())
}

func TestUploadReelFillsCaptionAndThumbnail(t *testing.T) {
	f := newFixture(t)

	out, err := f.service.UploadReel(context.Background(), UploadReelInput{
		UserID:  f.owner.ID,
		Title:   "Clip",
		Privacy: "PRIVATE",
		Video:   memFile("my clip.mp4", "video/mp4", []byte("video-bytes")),
	})
	require.NoError(t, err)

	assert.Equal(t, "My Clip | #trending #viral #reels"+ai.GeneratedMarker, out.Description)
	assert.True(t, out.IsPrivate)
	assert.Zero(t, out.DurationMs)
	assert.Equal(t, "creator", out.Username)

	objects := f.gateway.Objects()
	require.Len(t, objects, 2)
	assert.Equal(t, storage.KindVideo, objects[0].Kind)
	assert.Equal(t, []byte("video-bytes"), objects[0].Data)
	assert.Equal(t, objects[0].Locator, out.VideoURL)
	assert.Equal(t, storage.KindThumbnail, objects[1].Kind)
	assert.Equal(t, "image/jpeg", objects[1].ContentType)
	assert.Regexp(t, `^\d+_\d+\.jpg$`, objects[1].Name)
	assert.Equal(t, objects[1].Locator, out.ThumbnailURL)

	// The caption sees the full video even though it was already uploaded.
	assert.Equal(t, []string{"my clip.mp4:video-bytes"}, f.generator.CaptionInputs())
}

func TestUploadReelKeepsClientValues(t *testing.T) {
	f := newFixture(t)

	out, err := f.service.UploadReel(context.Background(), UploadReelInput{
		UserID:      f.owner.ID,
		Description: "hand written",
		Privacy:     "public",
		Video:       memFile("v.mp4", "video/mp4", []byte("v")),
		Thumbnail:   memFile("cover.png", "image/png", []byte("png")),
	})
	require.NoError(t, err)

	assert.Equal(t, "hand written", out.Description)
	assert.False(t, out.IsPrivate)
	assert.Empty(t, f.generator.CaptionInputs())

	objects := f.gateway.Objects()
	require.Len(t, objects, 2)
	assert.Equal(t, "cover.png", objects[1].Name)
	assert.Equal(t, objects[1].Locator, out.ThumbnailURL)
}

func TestUploadReelThumbnailFailureDegrades(t *testing.T) {
	f := newFixture(t)
	f.generator.ThumbnailErr = apperr.ErrGenerationFailed

	out, err := f.service.UploadReel(context.Background(), UploadReelInput{
		UserID: f.owner.ID,
		Video:  memFile("v.mp4", "video/mp4", []byte("v")),
	})
	require.NoError(t, err)
	assert.Empty(t, out.ThumbnailURL)
	assert.NotEmpty(t, out.VideoURL)
}

func TestUploadReelGeneratedThumbnailStorageFailureDegrades(t *testing.T) {
	f := newFixture(t)
	f.gateway.Fail = map[storage.Kind]bool{storage.KindThumbnail: true}

	out, err := f.service.UploadReel(context.Background(), UploadReelInput{
		UserID: f.owner.ID,
		Video:  memFile("v.mp4", "video/mp4", []byte("v")),
	})
	require.NoError(t, err)
	assert.Empty(t, out.ThumbnailURL)
}

func TestUploadReelStorageUnavailable(t *testing.T) {
	f := newFixture(t)
	f.gateway.Fail = map[storage.Kind]bool{storage.KindVideo: true}

	_, err := f.service.UploadReel(context.Background(), UploadReelInput{
		UserID: f.owner.ID,
		Video:  memFile("v.mp4", "video/mp4", []byte("v")),
	})
	assert.True(t, errors.Is(err, apperr.ErrStorageUnavailable))

	reels, err := f.service.ListPublicReels(context.Background())
	require.NoError(t, err)
	assert.Empty(t, reels)
}

func TestUploadReelProvidedThumbnailStorageFailureAborts(t *testing.T) {
	f := newFixture(t)
	f.gateway.Fail = map[storage.Kind]bool{storage.KindThumbnail: true}

	_, err := f.service.UploadReel(context.Background(), UploadReelInput{
		UserID:    f.owner.ID,
		Video:     memFile("v.mp4", "video/mp4", []byte("v")),
		Thumbnail: memFile("t.jpg", "image/jpeg", []byte("t")),
	})
	assert.True(t, errors.Is(err, apperr.ErrStorageUnavailable))
}

func TestUploadReelValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.UploadReel(ctx, UploadReelInput{UserID: f.owner.ID})
	assert.True(t, errors.Is(err, apperr.ErrValidationFailed))

	_, err = f.service.UploadReel(ctx, UploadReelInput{UserID: f.owner.ID, Video: memFile("v.mp4", "video/mp4", nil)})
	assert.True(t, errors.Is(err, apperr.ErrValidationFailed))

	_, err = f.service.UploadReel(ctx, UploadReelInput{UserID: 555, Video: memFile("v.mp4", "video/mp4", []byte("v"))})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.Empty(t, f.gateway.Objects())
}

func TestListingsDecorateWithUsernames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	visible, err := f.service.CreateReel(ctx, models.CreateReelRequest{UserID: f.owner.ID, Title: "visible"})
	require.NoError(t, err)
	hidden, err := f.service.CreateReel(ctx, models.CreateReelRequest{UserID: f.owner.ID, Title: "hidden", IsPrivate: true})
	require.NoError(t, err)

	public, err := f.service.ListPublicReels(ctx)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, visible.ID, public[0].ID)
	assert.Equal(t, "creator", public[0].Username)

	mine, err := f.service.ListReelsByOwner(ctx, f.owner.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, hidden.ID, mine[0].ID)
}

func TestDeletedOwnerRendersAsUnknown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.CreateReel(ctx, models.CreateReelRequest{UserID: f.owner.ID, Title: "orphan"})
	require.NoError(t, err)
	require.NoError(t, f.db.Delete(&models.User{}, f.owner.ID).Error)

	got, err := f.service.GetReel(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UnknownUsername, got.Username)
}

func TestReelMutations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.CreateReel(ctx, models.CreateReelRequest{UserID: f.owner.ID, Title: "v1"})
	require.NoError(t, err)

	require.NoError(t, f.service.LikeReel(ctx, created.ID))
	require.NoError(t, f.service.ViewReel(ctx, created.ID))
	require.NoError(t, f.service.ViewReel(ctx, created.ID))

	updated, err := f.service.UpdateReel(ctx, created.ID, models.UpdateReelRequest{Title: "v2", IsPrivate: true})
	require.NoError(t, err)
	assert.Equal(t, "v2", updated.Title)
	assert.True(t, updated.IsPrivate)
	assert.Equal(t, int64(1), updated.LikesCount)
	assert.Equal(t, int64(2), updated.ViewsCount)
	assert.Equal(t, "creator", updated.Username)

	require.NoError(t, f.service.DeleteReel(ctx, created.ID))
	_, err = f.service.GetReel(ctx, created.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	assert.True(t, errors.Is(f.service.LikeReel(ctx, created.ID), apperr.ErrNotFound))
	assert.True(t, errors.Is(f.service.DeleteReel(ctx, created.ID), apperr.ErrNotFound))

	assert.Equal(t, []string{
		messaging.SubjectReelCreated,
		messaging.SubjectReelLiked,
		messaging.SubjectReelViewed,
		messaging.SubjectReelViewed,
		messaging.SubjectReelUpdated,
		messaging.SubjectReelDeleted,
	}, f.events.Subjects())
}

func TestPublishFailureDoesNotFailOperation(t *testing.T) {
	f := newFixture(t)
	f.events.Err = errors.New("nats down")

	_, err := f.service.CreateReel(context.Background(), models.CreateReelRequest{UserID: f.owner.ID})
	assert.NoError(t, err)
}
