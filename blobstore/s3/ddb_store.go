package s3

import (
	"context"
	"fmt"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hupe1980/blockcache/blobstore"
)

// DDBClient is the subset of *dynamodb.Client used by DDBStore.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

var (
	_ DDBClient       = (*dynamodb.Client)(nil)
	_ blobstore.Store = (*DDBStore)(nil)
)

const (
	attrVolume = "volume"
	attrName   = "name"
	attrData   = "data"
)

// DDBStore implements blobstore.Store on a DynamoDB table, one item per
// object. Items are capped at 400KB, which bounds the usable block size.
//
// Table schema:
//   - Partition key: volume (string) - one device per volume
//   - Sort key: name (string) - object name, e.g. blk/0000002a
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name blockcache \
//	  --attribute-definitions AttributeName=volume,AttributeType=S AttributeName=name,AttributeType=S \
//	  --key-schema AttributeName=volume,KeyType=HASH AttributeName=name,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type DDBStore struct {
	client DDBClient
	table  string
	volume string
}

// NewDDBStore creates a store for volume in table.
func NewDDBStore(client DDBClient, table, volume string) *DDBStore {
	return &DDBStore{client: client, table: table, volume: volume}
}

func (s *DDBStore) itemKey(name string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrVolume: &types.AttributeValueMemberS{Value: s.volume},
		attrName:   &types.AttributeValueMemberS{Value: name},
	}
}

func (s *DDBStore) Get(ctx context.Context, name string) ([]byte, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            s.itemKey(name),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("dynamodb get %s: %w", name, err)
	}

	if out.Item == nil {
		return nil, fmt.Errorf("%s: %w", name, blobstore.ErrNotFound)
	}

	data, ok := out.Item[attrData].(*types.AttributeValueMemberB)
	if !ok {
		return nil, fmt.Errorf("dynamodb get %s: invalid %s attribute", name, attrData)
	}

	return data.Value, nil
}

func (s *DDBStore) Put(ctx context.Context, name string, data []byte) error {
	item := s.itemKey(name)
	item[attrData] = &types.AttributeValueMemberB{Value: data}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("dynamodb put %s: %w", name, err)
	}

	return nil
}

func (s *DDBStore) Delete(ctx context.Context, name string) error {
	if _, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       s.itemKey(name),
	}); err != nil {
		return fmt.Errorf("dynamodb delete %s: %w", name, err)
	}

	return nil
}

func (s *DDBStore) List(ctx context.Context, prefix string) ([]string, error) {
	input := &dynamodb.QueryInput{
		TableName:                aws.String(s.table),
		KeyConditionExpression:   aws.String("#v = :v"),
		ProjectionExpression:     aws.String("#n"),
		ExpressionAttributeNames: map[string]string{"#v": attrVolume, "#n": attrName},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: s.volume},
		},
	}
	if prefix != "" {
		input.KeyConditionExpression = aws.String("#v = :v AND begins_with(#n, :p)")
		input.ExpressionAttributeValues[":p"] = &types.AttributeValueMemberS{Value: prefix}
	}

	var names []string

	paginator := dynamodb.NewQueryPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("dynamodb query: %w", err)
		}

		for _, item := range page.Items {
			if n, ok := item[attrName].(*types.AttributeValueMemberS); ok {
				names = append(names, n.Value)
			}
		}
	}

	slices.Sort(names)
	return names, nil
}
