package repository

import (
	"context"
	"fmt"
	"time"

	"storerating/pkg/metrics"
	"storerating/pkg/rating"
	"storerating/store-service/internal/app/store/entity"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ratingsCollection = "ratings"

type ratingRepository struct {
	collection *mongo.Collection
}

// NewRatingRepository создает репозиторий оценок в MongoDB
func NewRatingRepository(db *mongo.Database) RatingRepository {
	return &ratingRepository{collection: db.Collection(ratingsCollection)}
}

// EnsureIndexes создает уникальный индекс (store_id, user_id) и индекс по user_id
func (r *ratingRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "store_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetName("store_user_uniq").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("user_id_idx"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create rating indexes: %w", err)
	}
	return nil
}

func (r *ratingRepository) Upsert(ctx context.Context, record *entity.RatingRecord) (err error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpsert, ratingsCollection)
	defer func() { timer.ObserveDuration(err) }()

	now := time.Now().UTC()
	record.UpdatedAt = now

	filter := bson.M{"store_id": record.StoreID, "user_id": record.UserID}
	update := bson.M{
		"$set": bson.M{
			"rating":     record.Rating,
			"user_name":  record.UserName,
			"user_email": record.UserEmail,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"_id":        uuid.NewString(),
			"created_at": now,
		},
	}

	if _, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to upsert rating: %w", err)
	}
	return nil
}

func (r *ratingRepository) Delete(ctx context.Context, storeID, userID string) (err error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpDelete, ratingsCollection)
	defer func() { timer.ObserveDuration(err) }()

	result, err := r.collection.DeleteOne(ctx, bson.M{"store_id": storeID, "user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete rating: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrRatingNotFound
	}
	return nil
}

// ListByStore возвращает оценки магазина, новые первыми
func (r *ratingRepository) ListByStore(ctx context.Context, storeID string) ([]entity.RatingRecord, error) {
	return r.find(ctx, bson.M{"store_id": storeID})
}

func (r *ratingRepository) ListByUser(ctx context.Context, userID string) ([]entity.RatingRecord, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

func (r *ratingRepository) find(ctx context.Context, filter bson.M) (records []entity.RatingRecord, err error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, ratingsCollection)
	defer func() { timer.ObserveDuration(err) }()

	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find ratings: %w", err)
	}
	defer cursor.Close(ctx)

	records = []entity.RatingRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode ratings: %w", err)
	}
	return records, nil
}

func (r *ratingRepository) All(ctx context.Context) ([]rating.Record, error) {
	opts := options.Find().SetProjection(bson.M{"store_id": 1, "user_id": 1, "rating": 1})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load ratings: %w", err)
	}
	defer cursor.Close(ctx)

	var records []rating.Record
	for cursor.Next(ctx) {
		var doc entity.RatingRecord
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode rating: %w", err)
		}
		records = append(records, rating.Record{StoreID: doc.StoreID, UserID: doc.UserID, Value: doc.Rating})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ratings: %w", err)
	}
	return records, nil
}
