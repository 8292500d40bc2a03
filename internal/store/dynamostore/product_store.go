package dynamostore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/example/storefront/internal/catalog"
)

// allProductsPartition is the fixed GSI1 value shared by every product
// so the catalog can be listed with a single Query.
const allProductsPartition = "PRODUCTS"

type ProductStore struct {
	client *dynamodb.Client
	table  string
}

type productItem struct {
	ID          string  `dynamodbav:"id"`
	Name        string  `dynamodbav:"name"`
	Description string  `dynamodbav:"description"`
	Price       int     `dynamodbav:"price"`
	ImageURL    string  `dynamodbav:"image_url"`
	Category    string  `dynamodbav:"category"`
	Rating      float64 `dynamodbav:"rating"`
	Stock       int     `dynamodbav:"stock"`
	SellerID    string  `dynamodbav:"seller_id"`
	CreatedAt   string  `dynamodbav:"created_at"`
	UpdatedAt   string  `dynamodbav:"updated_at"`
	GSI1PK      string  `dynamodbav:"gsi1pk"`
}

func toProductItem(p *catalog.Product) productItem {
	return productItem{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Category:    p.Category,
		Rating:      p.Rating,
		Stock:       p.Stock,
		SellerID:    p.SellerID,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339Nano),
		GSI1PK:      allProductsPartition,
	}
}

func (it productItem) toProduct() catalog.Product {
	createdAt, _ := time.Parse(time.RFC3339Nano, it.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, it.UpdatedAt)
	return catalog.Product{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		Price:       it.Price,
		ImageURL:    it.ImageURL,
		Category:    it.Category,
		Rating:      it.Rating,
		Stock:       it.Stock,
		SellerID:    it.SellerID,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

func (s *ProductStore) List(ctx context.Context, category string) ([]catalog.Product, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		IndexName:              aws.String(indexGSI1),
		KeyConditionExpression: aws.String("gsi1pk = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: allProductsPartition},
		},
		ScanIndexForward: aws.Bool(false),
	}
	if category != "" {
		input.FilterExpression = aws.String("category = :cat")
		input.ExpressionAttributeValues[":cat"] = &types.AttributeValueMemberS{Value: category}
	}

	result, err := s.client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	out := make([]catalog.Product, 0, len(result.Items))
	for _, raw := range result.Items {
		var it productItem
		if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
			return nil, fmt.Errorf("failed to unmarshal product: %w", err)
		}
		out = append(out, it.toProduct())
	}
	return out, nil
}

func (s *ProductStore) Get(ctx context.Context, id string) (*catalog.Product, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if result.Item == nil {
		return nil, catalog.ErrProductNotFound
	}

	var it productItem
	if err := attributevalue.UnmarshalMap(result.Item, &it); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product: %w", err)
	}

	p := it.toProduct()
	return &p, nil
}

func (s *ProductStore) Create(ctx context.Context, p *catalog.Product) error {
	av, err := attributevalue.MarshalMap(toProductItem(p))
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to put product: %w", err)
	}
	return nil
}

func (s *ProductStore) Update(ctx context.Context, p *catalog.Product) error {
	av, err := attributevalue.MarshalMap(toProductItem(p))
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                av,
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return catalog.ErrProductNotFound
		}
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

func (s *ProductStore) Delete(ctx context.Context, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return catalog.ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// DecrementStock decrements stock by qty only while stock >= qty still
// holds at write time. DynamoDB evaluates the condition and applies the
// update in one indivisible operation; a failed condition means a
// concurrent purchase won the race and surfaces as ErrStockConflict.
func (s *ProductStore) DecrementStock(ctx context.Context, id string, qty int) error {
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:    aws.String("SET stock = stock - :q, updated_at = :t"),
		ConditionExpression: aws.String("attribute_exists(id) AND stock >= :q"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":q": &types.AttributeValueMemberN{Value: strconv.Itoa(qty)},
			":t": &types.AttributeValueMemberS{Value: time.Now().Format(time.RFC3339Nano)},
		},
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return catalog.ErrStockConflict
		}
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	return nil
}

func (s *ProductStore) IncrementStock(ctx context.Context, id string, qty int) error {
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:    aws.String("SET stock = stock + :q, updated_at = :t"),
		ConditionExpression: aws.String("attribute_exists(id)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":q": &types.AttributeValueMemberN{Value: strconv.Itoa(qty)},
			":t": &types.AttributeValueMemberS{Value: time.Now().Format(time.RFC3339Nano)},
		},
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return catalog.ErrProductNotFound
		}
		return fmt.Errorf("failed to increment stock: %w", err)
	}
	return nil
}
