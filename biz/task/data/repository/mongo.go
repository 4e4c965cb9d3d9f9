package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ncobase/taskdesk/biz/task/structs"
	"github.com/ncobase/taskdesk/logging/logger"
	"github.com/ncobase/taskdesk/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo stores rows in the tasks collection.
type Mongo struct {
	collection *mongo.Collection
	clock      types.Clock
}

// NewMongo uses the tasks collection of db and makes sure the per-user
// index exists.
func NewMongo(db *mongo.Database, clock types.Clock) *Mongo {
	if clock == nil {
		clock = types.SystemClock
	}
	collection := db.Collection("tasks")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		logger.Warn(ctx, "failed to create index on tasks", "error", err)
	}

	return &Mongo{collection: collection, clock: clock}
}

func (r *Mongo) List(ctx context.Context, userID string) ([]structs.RemoteTask, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer cursor.Close(ctx)

	tasks := make([]structs.RemoteTask, 0)
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}
	return tasks, nil
}

func (r *Mongo) Insert(ctx context.Context, in structs.RemoteTaskInput) (structs.RemoteTask, error) {
	row := structs.RemoteTask{
		ID:          uuid.NewString(),
		UserID:      in.UserID,
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		Status:      in.Status,
		CreatedAt:   r.clock.Now().UTC().Truncate(time.Millisecond),
	}
	if _, err := r.collection.InsertOne(ctx, row); err != nil {
		return structs.RemoteTask{}, fmt.Errorf("failed to insert task: %w", err)
	}
	return row, nil
}

func (r *Mongo) Update(ctx context.Context, userID, id string, patch structs.RemoteTaskPatch) (structs.RemoteTask, error) {
	set := bson.M{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = nullIfEmpty(patch.Description)
	}
	if patch.DueDate != nil {
		set["due_date"] = nullIfEmpty(patch.DueDate)
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}

	filter := bson.M{"_id": id, "user_id": userID}
	var row structs.RemoteTask
	var err error
	if len(set) == 0 {
		err = r.collection.FindOne(ctx, filter).Decode(&row)
	} else {
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		err = r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&row)
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return structs.RemoteTask{}, structs.ErrTaskNotFound
	}
	if err != nil {
		return structs.RemoteTask{}, fmt.Errorf("failed to update task: %w", err)
	}
	return row, nil
}

func (r *Mongo) Delete(ctx context.Context, userID, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.DeletedCount == 0 {
		return structs.ErrTaskNotFound
	}
	return nil
}
