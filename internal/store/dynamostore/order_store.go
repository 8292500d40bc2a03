package dynamostore

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/example/storefront/internal/orders"
)

type OrderStore struct {
	client *dynamodb.Client
	table  string
}

type orderLineItem struct {
	ProductID   string `dynamodbav:"product_id"`
	Name        string `dynamodbav:"name"`
	Description string `dynamodbav:"description"`
	Quantity    int    `dynamodbav:"quantity"`
	Price       int    `dynamodbav:"price"`
	ImageURL    string `dynamodbav:"image_url"`
}

type orderItem struct {
	ID          string          `dynamodbav:"id"`
	UserID      string          `dynamodbav:"user_id"`
	Items       []orderLineItem `dynamodbav:"items"`
	// ProductIDs duplicates the line product ids as a flat list so
	// HasUserPurchased can use a contains() filter; filter expressions
	// cannot reach into a list of maps.
	ProductIDs  []string        `dynamodbav:"product_ids"`
	TotalAmount int             `dynamodbav:"total_amount"`
	OrderStatus string          `dynamodbav:"order_status"`
	CreatedAt   string          `dynamodbav:"created_at"`
	UpdatedAt   string          `dynamodbav:"updated_at"`
	GSI1PK      string          `dynamodbav:"gsi1pk"`
}

func toOrderItem(o *orders.Order) orderItem {
	lines := make([]orderLineItem, 0, len(o.Items))
	productIDs := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, orderLineItem{
			ProductID:   it.ProductID,
			Name:        it.Name,
			Description: it.Description,
			Quantity:    it.Quantity,
			Price:       it.Price,
			ImageURL:    it.ImageURL,
		})
		productIDs = append(productIDs, it.ProductID)
	}
	return orderItem{
		ID:          o.ID,
		UserID:      o.UserID,
		Items:       lines,
		ProductIDs:  productIDs,
		TotalAmount: o.TotalAmount,
		OrderStatus: string(o.Status),
		CreatedAt:   o.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:   o.UpdatedAt.Format(time.RFC3339Nano),
		GSI1PK:      o.UserID,
	}
}

func (it orderItem) toOrder() orders.Order {
	items := make([]orders.OrderItem, 0, len(it.Items))
	for _, line := range it.Items {
		items = append(items, orders.OrderItem{
			ProductID:   line.ProductID,
			Name:        line.Name,
			Description: line.Description,
			Quantity:    line.Quantity,
			Price:       line.Price,
			ImageURL:    line.ImageURL,
		})
	}
	createdAt, _ := time.Parse(time.RFC3339Nano, it.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, it.UpdatedAt)
	return orders.Order{
		ID:          it.ID,
		UserID:      it.UserID,
		Items:       items,
		TotalAmount: it.TotalAmount,
		Status:      orders.Status(it.OrderStatus),
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

func (s *OrderStore) Create(ctx context.Context, o *orders.Order) error {
	av, err := attributevalue.MarshalMap(toOrderItem(o))
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return fmt.Errorf("failed to put order: %w", err)
	}
	return nil
}

func (s *OrderStore) GetByID(ctx context.Context, id string) (*orders.Order, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if result.Item == nil {
		return nil, orders.ErrOrderNotFound
	}

	var it orderItem
	if err := attributevalue.UnmarshalMap(result.Item, &it); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order: %w", err)
	}

	o := it.toOrder()
	return &o, nil
}

func (s *OrderStore) ListByUser(ctx context.Context, userID string) ([]orders.Order, error) {
	result, err := queryByPartition(ctx, s.client, s.table, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	out := make([]orders.Order, 0, len(result.Items))
	for _, raw := range result.Items {
		var it orderItem
		if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
			return nil, fmt.Errorf("failed to unmarshal order: %w", err)
		}
		out = append(out, it.toOrder())
	}
	return out, nil
}

// CancelForUser flips the order to Cancelled with a single conditional
// update; the ownership condition makes missing and foreign orders
// indistinguishable. No status condition, so double-cancel is
// idempotent.
func (s *OrderStore) CancelForUser(ctx context.Context, orderID, userID string) (*orders.Order, error) {
	result, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: orderID},
		},
		UpdateExpression:    aws.String("SET order_status = :cancelled, updated_at = :t"),
		ConditionExpression: aws.String("attribute_exists(id) AND user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cancelled": &types.AttributeValueMemberS{Value: string(orders.StatusCancelled)},
			":uid":       &types.AttributeValueMemberS{Value: userID},
			":t":         &types.AttributeValueMemberS{Value: time.Now().Format(time.RFC3339Nano)},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return nil, orders.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	var it orderItem
	if err := attributevalue.UnmarshalMap(result.Attributes, &it); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order: %w", err)
	}

	o := it.toOrder()
	return &o, nil
}

func (s *OrderStore) HasUserPurchased(ctx context.Context, userID, productID string) (bool, error) {
	result, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		IndexName:              aws.String(indexGSI1),
		KeyConditionExpression: aws.String("gsi1pk = :pk"),
		FilterExpression:       aws.String("contains(product_ids, :pid) AND order_status = :placed"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: userID},
			":pid":    &types.AttributeValueMemberS{Value: productID},
			":placed": &types.AttributeValueMemberS{Value: string(orders.StatusPlaced)},
		},
	})
	if err != nil {
		return false, fmt.Errorf("failed to check purchase history: %w", err)
	}
	return len(result.Items) > 0, nil
}
