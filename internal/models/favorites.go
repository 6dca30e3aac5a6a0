package models

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const FavoritesColName = "user_favorites"

type FavoriteItem struct {
	EventID string    `bson:"event_id" json:"event_id"`
	AddedAt time.Time `bson:"added_at" json:"added_at"`
}

// Favorites is one document per user keyed by event id.
type Favorites struct {
	ID        primitive.ObjectID      `bson:"_id,omitempty" json:"id"`
	UserID    string                  `bson:"user_id" json:"user_id" validate:"required"`
	Items     map[string]FavoriteItem `bson:"items" json:"items"`
	CreatedAt time.Time               `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt time.Time               `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// EventIDs returns the starred ids, most recently added first.
func (f *Favorites) EventIDs() []string {
	if f == nil {
		return []string{}
	}
	items := make([]FavoriteItem, 0, len(f.Items))
	for _, it := range f.Items {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].AddedAt.After(items[j].AddedAt) })
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.EventID)
	}
	return ids
}

type FavoritesRepo interface {
	AddFavorite(ctx context.Context, userID, eventID string) (*Favorites, error)
	RemoveFavorite(ctx context.Context, userID, eventID string) error
	GetFavorites(ctx context.Context, userID string) (*Favorites, error)
}

func (mdb *MongodbRepo) AddFavorite(ctx context.Context, userID, eventID string) (*Favorites, error) {
	col, err := mdb.GetCollection(ctx, mdb.dbName, FavoritesColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	now := time.Now()

	update := bson.M{
		"$set": bson.M{
			"updated_at":                     now,
			fmt.Sprintf("items.%s", eventID): FavoriteItem{EventID: eventID, AddedAt: now},
		},
		"$setOnInsert": bson.M{
			"user_id":    userID,
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var result Favorites
	if err := col.FindOneAndUpdate(ctx, bson.M{"user_id": userID}, update, opts).Decode(&result); err != nil {
		return nil, fmt.Errorf("error upserting favorite: %w", err)
	}
	return &result, nil
}

func (mdb *MongodbRepo) RemoveFavorite(ctx context.Context, userID, eventID string) error {
	col, err := mdb.GetCollection(ctx, mdb.dbName, FavoritesColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}

	update := bson.M{
		"$unset": bson.M{fmt.Sprintf("items.%s", eventID): ""},
		"$set":   bson.M{"updated_at": time.Now()},
	}
	if _, err := col.UpdateOne(ctx, bson.M{"user_id": userID}, update); err != nil {
		return fmt.Errorf("error removing favorite: %w", err)
	}
	return nil
}

// GetFavorites returns an empty set for users that never starred anything.
func (mdb *MongodbRepo) GetFavorites(ctx context.Context, userID string) (*Favorites, error) {
	col, err := mdb.GetCollection(ctx, mdb.dbName, FavoritesColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	var fav Favorites
	err = col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&fav)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &Favorites{UserID: userID, Items: map[string]FavoriteItem{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error finding favorites: %w", err)
	}
	return &fav, nil
}
