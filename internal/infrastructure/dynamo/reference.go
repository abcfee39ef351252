package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/greentech-platform/api/internal/config"
	"github.com/greentech-platform/api/internal/domain"
)

// ReferenceRepo reads the seeded countries/provinces/economic-zones tables.
type ReferenceRepo struct {
	client *dynamodb.Client
	tables config.DynamoTables
}

func NewReferenceRepo(client *dynamodb.Client, tables config.DynamoTables) *ReferenceRepo {
	return &ReferenceRepo{client: client, tables: tables}
}

func (r *ReferenceRepo) ListCountries(ctx context.Context) ([]domain.Country, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.tables.Countries),
	})
	if err != nil {
		return nil, err
	}
	var items []domain.Country
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ReferenceRepo) GetCountry(ctx context.Context, code string) (*domain.Country, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tables.Countries),
		Key:       strKey("code", code),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("country %q: %w", code, domain.ErrNotFound)
	}
	var c domain.Country
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ReferenceRepo) ListProvinces(ctx context.Context, countryCode string) ([]domain.Province, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tables.Provinces),
		IndexName:              aws.String("country_code-index"),
		KeyConditionExpression: aws.String("country_code = :cc"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cc": &types.AttributeValueMemberS{Value: countryCode},
		},
	})
	if err != nil {
		return nil, err
	}
	var items []domain.Province
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ReferenceRepo) GetProvince(ctx context.Context, code string) (*domain.Province, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tables.Provinces),
		Key:       strKey("code", code),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("province %q: %w", code, domain.ErrNotFound)
	}
	var p domain.Province
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ReferenceRepo) ListEconomicZones(ctx context.Context, provinceCode string) ([]domain.EconomicZone, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tables.EconomicZones),
		IndexName:              aws.String("province_code-index"),
		KeyConditionExpression: aws.String("province_code = :pc"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pc": &types.AttributeValueMemberS{Value: provinceCode},
		},
	})
	if err != nil {
		return nil, err
	}
	var items []domain.EconomicZone
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ReferenceRepo) GetEconomicZone(ctx context.Context, code string) (*domain.EconomicZone, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tables.EconomicZones),
		Key:       strKey("code", code),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("economic zone %q: %w", code, domain.ErrNotFound)
	}
	var z domain.EconomicZone
	if err := attributevalue.UnmarshalMap(out.Item, &z); err != nil {
		return nil, err
	}
	return &z, nil
}
