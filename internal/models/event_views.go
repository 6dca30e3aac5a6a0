package models

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	EventViewsColName = "event_views"

	// ViewRetention is how long a view document lives before the TTL index drops it.
	ViewRetention = 30 * 24 * time.Hour
	// ViewDedupWindow suppresses repeat opens from one session.
	ViewDedupWindow = time.Hour
)

// EventView records one detail open of an event.
type EventView struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID     string             `bson:"event_id" json:"event_id" validate:"required"`
	OrganizerID string             `bson:"organizer_id,omitempty" json:"organizer_id,omitempty"`
	UserID      *string            `bson:"user_id,omitempty" json:"user_id,omitempty"`
	SessionID   string             `bson:"session_id" json:"session_id" validate:"required"`
	IPAddress   string             `bson:"ip_address,omitempty" json:"ip_address,omitempty"`
	UserAgent   string             `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	ViewedAt    time.Time          `bson:"viewed_at" json:"viewed_at"`
	ExpiresAt   time.Time          `bson:"expires_at" json:"expires_at"`
}

type EventViewStats struct {
	EventID       string `json:"event_id"`
	TotalViews    int64  `json:"total_views"`
	UniqueViews   int64  `json:"unique_views"`
	ViewsToday    int64  `json:"views_today"`
	ViewsThisWeek int64  `json:"views_this_week"`
}

type EventViewsRepo interface {
	TrackEventView(ctx context.Context, view *EventView) (bool, error)
	GetEventViewStats(ctx context.Context, eventID string, now time.Time) (*EventViewStats, error)
	EnsureViewIndexes(ctx context.Context) error
}

func (mdb *MongodbRepo) EnsureViewIndexes(ctx context.Context) error {
	col, err := mdb.GetCollection(ctx, mdb.dbName, EventViewsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().
				SetExpireAfterSeconds(0).
				SetName("expires_at_ttl"),
		},
		{
			Keys: bson.D{
				{Key: "event_id", Value: 1},
				{Key: "session_id", Value: 1},
				{Key: "viewed_at", Value: -1},
			},
			Options: options.Index().SetName("event_session_viewed_at_idx"),
		},
		{
			Keys: bson.D{
				{Key: "organizer_id", Value: 1},
				{Key: "viewed_at", Value: -1},
			},
			Options: options.Index().SetName("organizer_viewed_at_idx"),
		},
	}

	if _, err := col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("error creating indexes: %w", err)
	}
	return nil
}

// TrackEventView inserts the view unless the same session opened the event
// within ViewDedupWindow. It reports whether a document was written.
func (mdb *MongodbRepo) TrackEventView(ctx context.Context, view *EventView) (bool, error) {
	col, err := mdb.GetCollection(ctx, mdb.dbName, EventViewsColName)
	if err != nil {
		return false, fmt.Errorf("error getting collection: %w", err)
	}

	now := time.Now()
	var recent EventView
	err = col.FindOne(ctx, bson.M{
		"event_id":   view.EventID,
		"session_id": view.SessionID,
		"viewed_at":  bson.M{"$gte": now.Add(-ViewDedupWindow)},
	}).Decode(&recent)
	if err == nil {
		return false, nil
	}
	if err != mongo.ErrNoDocuments {
		return false, fmt.Errorf("error checking recent views: %w", err)
	}

	view.ViewedAt = now
	view.ExpiresAt = now.Add(ViewRetention)
	if view.ID.IsZero() {
		view.ID = primitive.NewObjectID()
	}

	if _, err := col.InsertOne(ctx, view); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("error inserting event view: %w", err)
	}
	return true, nil
}

func (mdb *MongodbRepo) GetEventViewStats(ctx context.Context, eventID string, now time.Time) (*EventViewStats, error) {
	col, err := mdb.GetCollection(ctx, mdb.dbName, EventViewsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	stats := &EventViewStats{EventID: eventID}
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfWeek := startOfDay.AddDate(0, 0, -int(now.Weekday()))

	if stats.TotalViews, err = col.CountDocuments(ctx, bson.M{"event_id": eventID}); err != nil {
		return nil, fmt.Errorf("error counting total views: %w", err)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"event_id": eventID}}},
		{{Key: "$group", Value: bson.M{"_id": "$session_id"}}},
		{{Key: "$count", Value: "unique_sessions"}},
	}
	cursor, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("error aggregating unique views: %w", err)
	}
	defer cursor.Close(ctx)

	var unique []struct {
		Count int64 `bson:"unique_sessions"`
	}
	if err := cursor.All(ctx, &unique); err != nil {
		return nil, fmt.Errorf("error decoding unique views: %w", err)
	}
	if len(unique) > 0 {
		stats.UniqueViews = unique[0].Count
	}

	if stats.ViewsToday, err = col.CountDocuments(ctx, bson.M{
		"event_id":  eventID,
		"viewed_at": bson.M{"$gte": startOfDay},
	}); err != nil {
		return nil, fmt.Errorf("error counting today's views: %w", err)
	}

	if stats.ViewsThisWeek, err = col.CountDocuments(ctx, bson.M{
		"event_id":  eventID,
		"viewed_at": bson.M{"$gte": startOfWeek},
	}); err != nil {
		return nil, fmt.Errorf("error counting this week's views: %w", err)
	}

	return stats, nil
}
