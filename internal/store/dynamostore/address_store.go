package dynamostore

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/example/storefront/internal/address"
)

type AddressStore struct {
	client *dynamodb.Client
	table  string
}

type addressItem struct {
	ID        string `dynamodbav:"id"`
	UserID    string `dynamodbav:"user_id"`
	Label     string `dynamodbav:"label"`
	FirstName string `dynamodbav:"first_name"`
	LastName  string `dynamodbav:"last_name"`
	Street    string `dynamodbav:"street"`
	Apartment string `dynamodbav:"apartment,omitempty"`
	City      string `dynamodbav:"city"`
	State     string `dynamodbav:"state"`
	Zip       string `dynamodbav:"zip"`
	Country   string `dynamodbav:"country"`
	CreatedAt string `dynamodbav:"created_at"`
	UpdatedAt string `dynamodbav:"updated_at"`
	GSI1PK    string `dynamodbav:"gsi1pk"`
}

func toAddressItem(a *address.Address) addressItem {
	return addressItem{
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
		CreatedAt: a.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt: a.UpdatedAt.Format(time.RFC3339Nano),
		GSI1PK:    a.UserID,
	}
}

func (it addressItem) toAddress() address.Address {
	createdAt, _ := time.Parse(time.RFC3339Nano, it.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, it.UpdatedAt)
	return address.Address{
		ID:        it.ID,
		UserID:    it.UserID,
		Label:     it.Label,
		FirstName: it.FirstName,
		LastName:  it.LastName,
		Street:    it.Street,
		Apartment: it.Apartment,
		City:      it.City,
		State:     it.State,
		Zip:       it.Zip,
		Country:   it.Country,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

func (s *AddressStore) Create(ctx context.Context, a *address.Address) error {
	av, err := attributevalue.MarshalMap(toAddressItem(a))
	if err != nil {
		return fmt.Errorf("failed to marshal address: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to put address: %w", err)
	}
	return nil
}

func (s *AddressStore) Get(ctx context.Context, id string) (*address.Address, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get address: %w", err)
	}
	if result.Item == nil {
		return nil, address.ErrAddressNotFound
	}

	var it addressItem
	if err := attributevalue.UnmarshalMap(result.Item, &it); err != nil {
		return nil, fmt.Errorf("failed to unmarshal address: %w", err)
	}

	a := it.toAddress()
	return &a, nil
}

func (s *AddressStore) ListByUser(ctx context.Context, userID string) ([]address.Address, error) {
	result, err := queryByPartition(ctx, s.client, s.table, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}

	out := make([]address.Address, 0, len(result.Items))
	for _, raw := range result.Items {
		var it addressItem
		if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
			return nil, fmt.Errorf("failed to unmarshal address: %w", err)
		}
		out = append(out, it.toAddress())
	}
	return out, nil
}

func (s *AddressStore) Delete(ctx context.Context, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return address.ErrAddressNotFound
		}
		return fmt.Errorf("failed to delete address: %w", err)
	}
	return nil
}
