package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/example/storefront/internal/address"
)

type AddressStore struct {
	collection *mongo.Collection
}

type addressDoc struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	Label     string    `bson:"label"`
	FirstName string    `bson:"first_name"`
	LastName  string    `bson:"last_name"`
	Street    string    `bson:"street"`
	Apartment string    `bson:"apartment,omitempty"`
	City      string    `bson:"city"`
	State     string    `bson:"state"`
	Zip       string    `bson:"zip"`
	Country   string    `bson:"country"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func toAddressDoc(a *address.Address) addressDoc {
	return addressDoc{
		ID:        a.ID,
		UserID:    a.UserID,
		Label:     a.Label,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Street:    a.Street,
		Apartment: a.Apartment,
		City:      a.City,
		State:     a.State,
		Zip:       a.Zip,
		Country:   a.Country,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func (d addressDoc) toAddress() address.Address {
	return address.Address{
		ID:        d.ID,
		UserID:    d.UserID,
		Label:     d.Label,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Street:    d.Street,
		Apartment: d.Apartment,
		City:      d.City,
		State:     d.State,
		Zip:       d.Zip,
		Country:   d.Country,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (s *AddressStore) Create(ctx context.Context, a *address.Address) error {
	if _, err := s.collection.InsertOne(ctx, toAddressDoc(a)); err != nil {
		return fmt.Errorf("failed to insert address: %w", err)
	}
	return nil
}

func (s *AddressStore) Get(ctx context.Context, id string) (*address.Address, error) {
	var doc addressDoc
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, address.ErrAddressNotFound
		}
		return nil, fmt.Errorf("failed to get address: %w", err)
	}

	a := doc.toAddress()
	return &a, nil
}

func (s *AddressStore) ListByUser(ctx context.Context, userID string) ([]address.Address, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []addressDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode addresses: %w", err)
	}

	out := make([]address.Address, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toAddress())
	}
	return out, nil
}

func (s *AddressStore) Delete(ctx context.Context, id string) error {
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}
	if res.DeletedCount == 0 {
		return address.ErrAddressNotFound
	}
	return nil
}
