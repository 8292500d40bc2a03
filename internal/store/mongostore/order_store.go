package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/example/storefront/internal/orders"
)

type OrderStore struct {
	collection *mongo.Collection
}

type orderItemDoc struct {
	ProductID   string `bson:"product_id"`
	Name        string `bson:"name"`
	Description string `bson:"description"`
	Quantity    int    `bson:"quantity"`
	Price       int    `bson:"price"`
	ImageURL    string `bson:"image_url"`
}

type orderDoc struct {
	ID          string         `bson:"_id"`
	UserID      string         `bson:"user_id"`
	Items       []orderItemDoc `bson:"items"`
	TotalAmount int            `bson:"total_amount"`
	Status      string         `bson:"status"`
	CreatedAt   time.Time      `bson:"created_at"`
	UpdatedAt   time.Time      `bson:"updated_at"`
}

func toOrderDoc(o *orders.Order) orderDoc {
	items := make([]orderItemDoc, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemDoc{
			ProductID:   it.ProductID,
			Name:        it.Name,
			Description: it.Description,
			Quantity:    it.Quantity,
			Price:       it.Price,
			ImageURL:    it.ImageURL,
		})
	}
	return orderDoc{
		ID:          o.ID,
		UserID:      o.UserID,
		Items:       items,
		TotalAmount: o.TotalAmount,
		Status:      string(o.Status),
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func (d orderDoc) toOrder() orders.Order {
	items := make([]orders.OrderItem, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, orders.OrderItem{
			ProductID:   it.ProductID,
			Name:        it.Name,
			Description: it.Description,
			Quantity:    it.Quantity,
			Price:       it.Price,
			ImageURL:    it.ImageURL,
		})
	}
	return orders.Order{
		ID:          d.ID,
		UserID:      d.UserID,
		Items:       items,
		TotalAmount: d.TotalAmount,
		Status:      orders.Status(d.Status),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (s *OrderStore) Create(ctx context.Context, o *orders.Order) error {
	if _, err := s.collection.InsertOne(ctx, toOrderDoc(o)); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

func (s *OrderStore) GetByID(ctx context.Context, id string) (*orders.Order, error) {
	var doc orderDoc
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, orders.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	o := doc.toOrder()
	return &o, nil
}

func (s *OrderStore) ListByUser(ctx context.Context, userID string) ([]orders.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []orderDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}

	out := make([]orders.Order, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toOrder())
	}
	return out, nil
}

// CancelForUser sets the order's status to Cancelled in one conditional
// update keyed on both the order ID and the owner, so a missing order
// and someone else's order are indistinguishable. The update is not
// constrained on the current status: cancelling twice is idempotent.
func (s *OrderStore) CancelForUser(ctx context.Context, orderID, userID string) (*orders.Order, error) {
	var doc orderDoc
	err := s.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": orderID, "user_id": userID},
		bson.M{"$set": bson.M{"status": string(orders.StatusCancelled), "updated_at": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, orders.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	o := doc.toOrder()
	return &o, nil
}

func (s *OrderStore) HasUserPurchased(ctx context.Context, userID, productID string) (bool, error) {
	n, err := s.collection.CountDocuments(ctx, bson.M{
		"user_id":          userID,
		"items.product_id": productID,
		"status":           string(orders.StatusPlaced),
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check purchase history: %w", err)
	}
	return n > 0, nil
}
