package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/reelhub/backend/internal/apperr"
	"github.com/reelhub/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoReelRepository implements ReelRepository for MongoDB. Integer ids come
// from a sequence document bumped with $inc, counters use $inc as well.
type MongoReelRepository struct {
	collection *mongo.Collection
	sequences  *mongo.Collection
	now        func() time.Time
}

// NewMongoReelRepository creates a new MongoReelRepository
func NewMongoReelRepository(db *mongo.Database) *MongoReelRepository {
	return &MongoReelRepository{
		collection: db.Collection("reels"),
		sequences:  db.Collection("sequences"),
		// BSON datetimes carry millisecond precision.
		now: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// EnsureIndexes creates the indexes backing the listing queries
func (r *MongoReelRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "is_private", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return err
}

func (r *MongoReelRepository) nextID(ctx context.Context) (uint, error) {
	var seq struct {
		Value int64 `bson:"value"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := r.sequences.FindOneAndUpdate(ctx, bson.M{"_id": "reels"}, bson.M{"$inc": bson.M{"value": 1}}, opts).Decode(&seq)
	if err != nil {
		return 0, fmt.Errorf("allocate reel id: %w", err)
	}
	return uint(seq.Value), nil
}

// CreateReel creates a new reel in MongoDB
func (r *MongoReelRepository) CreateReel(ctx context.Context, reel *models.Reel) error {
	id, err := r.nextID(ctx)
	if err != nil {
		return err
	}
	now := r.now()
	reel.ID = id
	reel.LikesCount = 0
	reel.ViewsCount = 0
	if reel.DurationMs < 0 {
		reel.DurationMs = 0
	}
	reel.CreatedAt = now
	reel.UpdatedAt = now
	_, err = r.collection.InsertOne(ctx, reel)
	return err
}

// GetReelByID retrieves a reel by ID from MongoDB
func (r *MongoReelRepository) GetReelByID(ctx context.Context, id uint) (*models.Reel, error) {
	var reel models.Reel
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&reel)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("reel %d: %w", id, apperr.ErrNotFound)
		}
		return nil, err
	}
	return &reel, nil
}

// GetPublicReels retrieves every non-private reel, newest first
func (r *MongoReelRepository) GetPublicReels(ctx context.Context) ([]models.Reel, error) {
	return r.find(ctx, bson.M{"is_private": false})
}

// GetReelsByUserID retrieves all reels of one owner, private ones included
func (r *MongoReelRepository) GetReelsByUserID(ctx context.Context, userID uint) ([]models.Reel, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

func (r *MongoReelRepository) find(ctx context.Context, filter bson.M) ([]models.Reel, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reels := make([]models.Reel, 0)
	if err = cursor.All(ctx, &reels); err != nil {
		return nil, err
	}
	return reels, nil
}

// UpdateReel replaces the content fields of a reel
func (r *MongoReelRepository) UpdateReel(ctx context.Context, id uint, fields models.ReelFields) (*models.Reel, error) {
	current, err := r.GetReelByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := r.now()
	if !now.After(current.UpdatedAt) {
		now = current.UpdatedAt.Add(time.Millisecond)
	}
	if fields.DurationMs < 0 {
		fields.DurationMs = 0
	}
	update := bson.M{
		"$set": bson.M{
			"title":         fields.Title,
			"description":   fields.Description,
			"video_url":     fields.VideoURL,
			"thumbnail_url": fields.ThumbnailURL,
			"duration_ms":   fields.DurationMs,
			"is_private":    fields.IsPrivate,
			"updated_at":    now,
		},
	}

	var reel models.Reel
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&reel)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("reel %d: %w", id, apperr.ErrNotFound)
		}
		return nil, err
	}
	return &reel, nil
}

// DeleteReel deletes a reel by ID from MongoDB
func (r *MongoReelRepository) DeleteReel(ctx context.Context, id uint) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("reel %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// IncrementLikesCount increments the likes count of a reel
func (r *MongoReelRepository) IncrementLikesCount(ctx context.Context, id uint) error {
	return r.increment(ctx, id, "likes_count")
}

// IncrementViewsCount increments the views count of a reel
func (r *MongoReelRepository) IncrementViewsCount(ctx context.Context, id uint) error {
	return r.increment(ctx, id, "views_count")
}

// increment bumps a counter; $max keeps updated_at from moving backwards.
func (r *MongoReelRepository) increment(ctx context.Context, id uint, field string) error {
	update := bson.M{
		"$inc": bson.M{field: 1},
		"$max": bson.M{"updated_at": r.now()},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("reel %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}

var _ ReelRepository = (*MongoReelRepository)(nil)
