package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const PreferencesColName = "user_preferences"

type Preferences struct {
	UserID               string    `bson:"user_id" json:"user_id"`
	ShowPastEvents       bool      `bson:"show_past_events" json:"show_past_events"`
	EventInteractionMode string    `bson:"event_interaction_mode" json:"event_interaction_mode" validate:"required,oneof=click hover"`
	EventDisplayMode     string    `bson:"event_display_mode" json:"event_display_mode" validate:"required,oneof=popup overlay fullpage"`
	EventBackgroundMode  string    `bson:"event_background_mode" json:"event_background_mode" validate:"required,oneof=image white blur"`
	OverlayOpacity       int       `bson:"overlay_opacity" json:"overlay_opacity" validate:"gte=0,lte=100"`
	MenuInteractionMode  string    `bson:"menu_interaction_mode" json:"menu_interaction_mode" validate:"required,oneof=click hover"`
	CreatedAt            time.Time `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt            time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

func DefaultPreferences(userID string) Preferences {
	return Preferences{
		UserID:               userID,
		EventInteractionMode: "click",
		EventDisplayMode:     "popup",
		EventBackgroundMode:  "white",
		OverlayOpacity:       50,
		MenuInteractionMode:  "click",
	}
}

type PreferencesRepo interface {
	GetPreferences(ctx context.Context, userID string) (*Preferences, error)
	SavePreferences(ctx context.Context, prefs *Preferences) (*Preferences, error)
}

// GetPreferences returns the stored document or defaults when the user has
// never saved any.
func (mdb *MongodbRepo) GetPreferences(ctx context.Context, userID string) (*Preferences, error) {
	col, err := mdb.GetCollection(ctx, mdb.dbName, PreferencesColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	var prefs Preferences
	err = col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&prefs)
	if errors.Is(err, mongo.ErrNoDocuments) {
		d := DefaultPreferences(userID)
		return &d, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error finding preferences: %w", err)
	}
	return &prefs, nil
}

func (mdb *MongodbRepo) SavePreferences(ctx context.Context, prefs *Preferences) (*Preferences, error) {
	col, err := mdb.GetCollection(ctx, mdb.dbName, PreferencesColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"show_past_events":       prefs.ShowPastEvents,
			"event_interaction_mode": prefs.EventInteractionMode,
			"event_display_mode":     prefs.EventDisplayMode,
			"event_background_mode":  prefs.EventBackgroundMode,
			"overlay_opacity":        prefs.OverlayOpacity,
			"menu_interaction_mode":  prefs.MenuInteractionMode,
			"updated_at":             now,
		},
		"$setOnInsert": bson.M{
			"user_id":    prefs.UserID,
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var saved Preferences
	if err := col.FindOneAndUpdate(ctx, bson.M{"user_id": prefs.UserID}, update, opts).Decode(&saved); err != nil {
		return nil, fmt.Errorf("error upserting preferences: %w", err)
	}
	return &saved, nil
}
