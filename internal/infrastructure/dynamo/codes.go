package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/greentech-platform/api/internal/domain"
)

// CodeRepo stores verification codes.
// PK: lookup_key (identifier#channel#purpose), SK: code_id (ULID). Because
// ULIDs sort by creation time, a descending query returns newest-first.
type CodeRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewCodeRepo(client *dynamodb.Client, tableName string) *CodeRepo {
	return &CodeRepo{client: client, tableName: tableName}
}

func (r *CodeRepo) Put(ctx context.Context, v *domain.VerificationCode) error {
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return fmt.Errorf("marshal verification code: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// Latest returns the newest record for the key regardless of validity.
func (r *CodeRepo) Latest(ctx context.Context, identifier string, ch domain.Channel, p domain.Purpose) (*domain.VerificationCode, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("lookup_key = :lk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":lk": &types.AttributeValueMemberS{Value: domain.CodeLookupKey(identifier, ch, p)},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("no code issued: %w", domain.ErrNotFound)
	}
	var v domain.VerificationCode
	if err := attributevalue.UnmarshalMap(out.Items[0], &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// LatestValid returns the newest record for the key with used=false and
// expires_at>now. The filter runs server-side; pages are walked newest-first
// until a match appears.
func (r *CodeRepo) LatestValid(ctx context.Context, identifier string, ch domain.Channel, p domain.Purpose, now time.Time) (*domain.VerificationCode, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("lookup_key = :lk"),
		FilterExpression:       aws.String("used = :f AND expires_at > :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":lk":  &types.AttributeValueMemberS{Value: domain.CodeLookupKey(identifier, ch, p)},
			":f":   &types.AttributeValueMemberBOOL{Value: false},
			":now": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", now.Unix())},
		},
		ScanIndexForward: aws.Bool(false),
	}
	for {
		out, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, err
		}
		if len(out.Items) > 0 {
			var v domain.VerificationCode
			if err := attributevalue.UnmarshalMap(out.Items[0], &v); err != nil {
				return nil, err
			}
			return &v, nil
		}
		if out.LastEvaluatedKey == nil {
			return nil, fmt.Errorf("no live code: %w", domain.ErrNotFound)
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

// MarkUsed consumes exactly one record. The conditional update is the single
// serialization point for concurrent verification attempts: when two callers
// race, the condition fails for the loser and domain.ErrNotFound comes back.
func (r *CodeRepo) MarkUsed(ctx context.Context, lookupKey, codeID string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.tableName),
		Key:              compositeKey("lookup_key", lookupKey, "code_id", codeID),
		UpdateExpression: aws.String("SET #u = :t"),
		ConditionExpression: aws.String(
			"attribute_exists(lookup_key) AND #u = :f"),
		ExpressionAttributeNames: map[string]string{"#u": fieldUsed},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberBOOL{Value: true},
			":f": &types.AttributeValueMemberBOOL{Value: false},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("code already consumed: %w", domain.ErrNotFound)
		}
		return err
	}
	return nil
}

// DeleteExpired removes every record with expires_at<=now, used or not.
// A paginated scan is acceptable here: the sweeper keeps the table small.
func (r *CodeRepo) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	input := &dynamodb.ScanInput{
		TableName:            aws.String(r.tableName),
		FilterExpression:     aws.String("expires_at <= :now"),
		ProjectionExpression: aws.String("lookup_key, code_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", now.Unix())},
		},
	}
	deleted := 0
	for {
		out, err := r.client.Scan(ctx, input)
		if err != nil {
			return deleted, err
		}
		for _, item := range out.Items {
			lk, okLK := item["lookup_key"].(*types.AttributeValueMemberS)
			cid, okCID := item["code_id"].(*types.AttributeValueMemberS)
			if !okLK || !okCID {
				continue
			}
			if _, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
				TableName: aws.String(r.tableName),
				Key:       compositeKey("lookup_key", lk.Value, "code_id", cid.Value),
			}); err != nil {
				return deleted, err
			}
			deleted++
		}
		if out.LastEvaluatedKey == nil {
			return deleted, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}
