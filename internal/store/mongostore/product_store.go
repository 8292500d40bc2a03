package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/example/storefront/internal/catalog"
)

type ProductStore struct {
	collection *mongo.Collection
}

type productDoc struct {
	ID          string    `bson:"_id"`
	Name        string    `bson:"name"`
	Description string    `bson:"description"`
	Price       int       `bson:"price"`
	ImageURL    string    `bson:"image_url"`
	Category    string    `bson:"category"`
	Rating      float64   `bson:"rating"`
	Stock       int       `bson:"stock"`
	SellerID    string    `bson:"seller_id"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func toProductDoc(p *catalog.Product) productDoc {
	return productDoc{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Category:    p.Category,
		Rating:      p.Rating,
		Stock:       p.Stock,
		SellerID:    p.SellerID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (d productDoc) toProduct() catalog.Product {
	return catalog.Product{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		ImageURL:    d.ImageURL,
		Category:    d.Category,
		Rating:      d.Rating,
		Stock:       d.Stock,
		SellerID:    d.SellerID,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (s *ProductStore) List(ctx context.Context, category string) ([]catalog.Product, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []productDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	out := make([]catalog.Product, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toProduct())
	}
	return out, nil
}

func (s *ProductStore) Get(ctx context.Context, id string) (*catalog.Product, error) {
	var doc productDoc
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	p := doc.toProduct()
	return &p, nil
}

func (s *ProductStore) Create(ctx context.Context, p *catalog.Product) error {
	if _, err := s.collection.InsertOne(ctx, toProductDoc(p)); err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

func (s *ProductStore) Update(ctx context.Context, p *catalog.Product) error {
	res, err := s.collection.ReplaceOne(ctx, bson.M{"_id": p.ID}, toProductDoc(p))
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if res.MatchedCount == 0 {
		return catalog.ErrProductNotFound
	}
	return nil
}

func (s *ProductStore) Delete(ctx context.Context, id string) error {
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return catalog.ErrProductNotFound
	}
	return nil
}

// DecrementStock decrements stock by qty only while stock >= qty still
// holds at write time. The filter and the $inc run server-side as one
// atomic operation; a zero match count means a concurrent purchase won
// the race (or the product vanished) and surfaces as ErrStockConflict.
func (s *ProductStore) DecrementStock(ctx context.Context, id string, qty int) error {
	res, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": id, "stock": bson.M{"$gte": qty}},
		bson.M{
			"$inc": bson.M{"stock": -qty},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	if res.ModifiedCount == 0 {
		return catalog.ErrStockConflict
	}
	return nil
}

func (s *ProductStore) IncrementStock(ctx context.Context, id string, qty int) error {
	res, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{"stock": qty},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to increment stock: %w", err)
	}
	if res.MatchedCount == 0 {
		return catalog.ErrProductNotFound
	}
	return nil
}
