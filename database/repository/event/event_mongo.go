package eventRepo

import (
	"context"
	"time"

	"schedulo/config"
	"schedulo/database"
	"schedulo/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoEventRepo struct {
	coll *mongo.Collection
}

// NewMongoEventRepo returns an EventRepository backed by the "events"
// collection.
func NewMongoEventRepo() EventRepository {
	coll := database.MongoClient.
		Database(config.AppConfig.DatabaseName).
		Collection("events")
	return &mongoEventRepo{coll: coll}
}

func (r *mongoEventRepo) Insert(ctx context.Context, ev *models.Event) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	_, err := r.coll.InsertOne(ctx, ev)
	return err
}

func (r *mongoEventRepo) FindOverlapping(ctx context.Context, start, end time.Time) ([]models.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"start": bson.M{"$lt": end},
		"end":   bson.M{"$gt": start},
	}
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.M{"start": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []models.Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *mongoEventRepo) FindUpcoming(ctx context.Context, from time.Time, limit int) ([]models.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"start": bson.M{"$gt": from}}
	opts := options.Find().SetSort(bson.M{"start": 1})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []models.Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
