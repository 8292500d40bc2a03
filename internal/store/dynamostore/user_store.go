package dynamostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/example/storefront/internal/user"
)

type UserStore struct {
	client *dynamodb.Client
	table  string
}

// userItem partitions GSI1 by email, which is the only secondary access
// path users need. Email uniqueness is enforced with a marker item
// keyed by the email itself, written in the same request as the user.
type userItem struct {
	ID           string `dynamodbav:"id"`
	Email        string `dynamodbav:"email"`
	Name         string `dynamodbav:"name"`
	PasswordHash string `dynamodbav:"password_hash"`
	Role         string `dynamodbav:"role"`
	Image        string `dynamodbav:"image,omitempty"`
	CreatedAt    string `dynamodbav:"created_at"`
	UpdatedAt    string `dynamodbav:"updated_at"`
	GSI1PK       string `dynamodbav:"gsi1pk"`
}

func (it userItem) toUser() user.User {
	createdAt, _ := time.Parse(time.RFC3339Nano, it.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, it.UpdatedAt)
	return user.User{
		ID:           it.ID,
		Email:        it.Email,
		Name:         it.Name,
		PasswordHash: it.PasswordHash,
		Role:         it.Role,
		Image:        it.Image,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}

func (s *UserStore) Create(ctx context.Context, u *user.User) error {
	item := userItem{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Image:        u.Image,
		CreatedAt:    u.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:    u.UpdatedAt.Format(time.RFC3339Nano),
		GSI1PK:       u.Email,
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	// The user row and an email marker row are written in one
	// transaction; the marker's existence condition turns a duplicate
	// registration into ErrEmailTaken regardless of interleaving.
	_, err = s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:           aws.String(s.table),
					Item:                av,
					ConditionExpression: aws.String("attribute_not_exists(id)"),
				},
			},
			{
				Put: &types.Put{
					TableName: aws.String(s.table),
					Item: map[string]types.AttributeValue{
						"id":      &types.AttributeValueMemberS{Value: "EMAIL#" + u.Email},
						"user_id": &types.AttributeValueMemberS{Value: u.ID},
					},
					ConditionExpression: aws.String("attribute_not_exists(id)"),
				},
			},
		},
	})
	if err != nil {
		var canceled *types.TransactionCanceledException
		if errors.As(err, &canceled) {
			return user.ErrEmailTaken
		}
		return fmt.Errorf("failed to put user: %w", err)
	}
	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*user.User, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if result.Item == nil {
		return nil, user.ErrUserNotFound
	}

	var it userItem
	if err := attributevalue.UnmarshalMap(result.Item, &it); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}

	u := it.toUser()
	return &u, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	result, err := queryByPartition(ctx, s.client, s.table, email)
	if err != nil {
		return nil, fmt.Errorf("failed to query user by email: %w", err)
	}
	if len(result.Items) == 0 {
		return nil, user.ErrUserNotFound
	}

	var it userItem
	if err := attributevalue.UnmarshalMap(result.Items[0], &it); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}

	u := it.toUser()
	return &u, nil
}

func (s *UserStore) UpdateRole(ctx context.Context, id, role string) (*user.User, error) {
	result, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:    aws.String("SET #r = :role, updated_at = :t"),
		ConditionExpression: aws.String("attribute_exists(id)"),
		ExpressionAttributeNames: map[string]string{
			"#r": "role",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":role": &types.AttributeValueMemberS{Value: role},
			":t":    &types.AttributeValueMemberS{Value: time.Now().Format(time.RFC3339Nano)},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user role: %w", err)
	}

	var it userItem
	if err := attributevalue.UnmarshalMap(result.Attributes, &it); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}

	u := it.toUser()
	return &u, nil
}
