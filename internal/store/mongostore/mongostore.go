// Package mongostore implements the persistence ports on MongoDB. The
// conditional stock decrement maps to a single UpdateOne with a
// stock >= qty filter and a $inc update, which the server applies as one
// atomic document operation.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Stores bundles the per-entity stores sharing one database handle.
type Stores struct {
	Users     *UserStore
	Products  *ProductStore
	Orders    *OrderStore
	Reviews   *ReviewStore
	Addresses *AddressStore
}

// Connect dials MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return client, nil
}

func New(db *mongo.Database) *Stores {
	return &Stores{
		Users:     &UserStore{collection: db.Collection("users")},
		Products:  &ProductStore{collection: db.Collection("products")},
		Orders:    &OrderStore{collection: db.Collection("orders")},
		Reviews:   &ReviewStore{collection: db.Collection("reviews")},
		Addresses: &AddressStore{collection: db.Collection("addresses")},
	}
}

// EnsureIndexes creates the unique indexes the stores rely on: one
// account per email, one review per (product, user) pair.
func (s *Stores) EnsureIndexes(ctx context.Context) error {
	_, err := s.Users.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create user email index: %w", err)
	}

	_, err = s.Reviews.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "product_id", Value: 1}, {Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create review index: %w", err)
	}

	_, err = s.Orders.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create order index: %w", err)
	}

	return nil
}
