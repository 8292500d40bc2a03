// Package dynamostore implements the persistence ports on DynamoDB.
// The conditional stock decrement maps to UpdateItem with a
// "stock >= :q" ConditionExpression, which DynamoDB evaluates
// server-side in the same indivisible operation as the write.
//
// Every table keys items by id, except reviews, which key by a
// pk of "<product>#<user>" to enforce the one-review-per-pair rule.
// All tables carry a GSI1 index (gsi1pk hash, created_at range) used
// for the listing access paths: products use a fixed partition value,
// orders and addresses partition by user, reviews by product, users
// by email.
package dynamostore

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const indexGSI1 = "GSI1"

// Stores bundles the per-entity stores sharing one DynamoDB client.
type Stores struct {
	Users     *UserStore
	Products  *ProductStore
	Orders    *OrderStore
	Reviews   *ReviewStore
	Addresses *AddressStore
}

// NewClient builds a DynamoDB client from the default AWS config chain.
func NewClient(ctx context.Context, region string) (*dynamodb.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return dynamodb.NewFromConfig(cfg), nil
}

// New wires the entity stores against tables named <prefix>-<entity>.
func New(client *dynamodb.Client, tablePrefix string) *Stores {
	return &Stores{
		Users:     &UserStore{client: client, table: tablePrefix + "-users"},
		Products:  &ProductStore{client: client, table: tablePrefix + "-products"},
		Orders:    &OrderStore{client: client, table: tablePrefix + "-orders"},
		Reviews:   &ReviewStore{client: client, table: tablePrefix + "-reviews"},
		Addresses: &AddressStore{client: client, table: tablePrefix + "-addresses"},
	}
}

func isConditionalCheckFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

func queryByPartition(ctx context.Context, client *dynamodb.Client, table, pk string) (*dynamodb.QueryOutput, error) {
	return client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(table),
		IndexName:              aws.String(indexGSI1),
		KeyConditionExpression: aws.String("gsi1pk = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: pk},
		},
		// Newest first: created_at is the index sort key.
		ScanIndexForward: aws.Bool(false),
	})
}
