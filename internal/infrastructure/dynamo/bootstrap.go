package dynamo

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/greentech-platform/api/internal/config"
	"github.com/greentech-platform/api/internal/domain"
)

// Bootstrap creates all DynamoDB tables and GSIs if they don't already exist,
// then seeds the reference-data tables when they are empty.
// Safe to call on every startup.
func Bootstrap(ctx context.Context, client *dynamodb.Client, tables config.DynamoTables) {
	createTable(ctx, client, &dynamodb.CreateTableInput{
		TableName:   aws.String(tables.Users),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("user_id"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("email"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("phone"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("user_id"), KeyType: types.KeyTypeHash},
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			gsi("email-index", "email", ""),
			gsi("phone-index", "phone", ""),
		},
	})

	createTable(ctx, client, &dynamodb.CreateTableInput{
		TableName:   aws.String(tables.VerificationCodes),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("lookup_key"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("code_id"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("lookup_key"), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String("code_id"), KeyType: types.KeyTypeRange},
		},
	})

	createTable(ctx, client, &dynamodb.CreateTableInput{
		TableName:   aws.String(tables.CompanyProfiles),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("user_id"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("user_id"), KeyType: types.KeyTypeHash},
		},
	})

	createTable(ctx, client, &dynamodb.CreateTableInput{
		TableName:   aws.String(tables.Countries),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("code"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("code"), KeyType: types.KeyTypeHash},
		},
	})

	createTable(ctx, client, &dynamodb.CreateTableInput{
		TableName:   aws.String(tables.Provinces),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("code"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("country_code"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("code"), KeyType: types.KeyTypeHash},
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			gsi("country_code-index", "country_code", ""),
		},
	})

	createTable(ctx, client, &dynamodb.CreateTableInput{
		TableName:   aws.String(tables.EconomicZones),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("code"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("province_code"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("code"), KeyType: types.KeyTypeHash},
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			gsi("province_code-index", "province_code", ""),
		},
	})

	seedReferenceData(ctx, client, tables)
}

func createTable(ctx context.Context, client *dynamodb.Client, input *dynamodb.CreateTableInput) {
	_, err := client.CreateTable(ctx, input)
	if err != nil {
		var exists *types.ResourceInUseException
		if errors.As(err, &exists) {
			return
		}
		slog.Warn("create table failed", "table", aws.ToString(input.TableName), "err", err)
		return
	}
	slog.Info("created table", "table", aws.ToString(input.TableName))
}

// gsi builds a GlobalSecondaryIndex definition with an ALL projection.
func gsi(name, hashKey, rangeKey string) types.GlobalSecondaryIndex {
	schema := []types.KeySchemaElement{
		{AttributeName: aws.String(hashKey), KeyType: types.KeyTypeHash},
	}
	if rangeKey != "" {
		schema = append(schema, types.KeySchemaElement{AttributeName: aws.String(rangeKey), KeyType: types.KeyTypeRange})
	}
	return types.GlobalSecondaryIndex{
		IndexName:  aws.String(name),
		KeySchema:  schema,
		Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
	}
}

// seedReferenceData loads the starter reference dataset into empty tables.
// A non-empty countries table means a previous process already seeded.
func seedReferenceData(ctx context.Context, client *dynamodb.Client, tables config.DynamoTables) {
	out, err := client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(tables.Countries),
		Limit:     aws.Int32(1),
	})
	if err != nil {
		slog.Warn("reference seed check failed", "err", err)
		return
	}
	if len(out.Items) > 0 {
		return
	}

	put := func(table string, v interface{}) {
		item, err := attributevalue.MarshalMap(v)
		if err != nil {
			slog.Warn("marshal reference item failed", "err", err)
			return
		}
		if _, err := client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(table),
			Item:      item,
		}); err != nil {
			slog.Warn("seed reference item failed", "table", table, "err", err)
		}
	}

	for _, c := range seedCountries {
		put(tables.Countries, c)
	}
	for _, p := range seedProvinces {
		put(tables.Provinces, p)
	}
	for _, z := range seedEconomicZones {
		put(tables.EconomicZones, z)
	}
	slog.Info("seeded reference data",
		"countries", len(seedCountries), "provinces", len(seedProvinces), "economic_zones", len(seedEconomicZones))
}

var seedCountries = []domain.Country{
	{Code: "CN", Name: "China"},
	{Code: "DE", Name: "Germany"},
	{Code: "JP", Name: "Japan"},
	{Code: "US", Name: "United States"},
}

var seedProvinces = []domain.Province{
	{Code: "CN-BJ", CountryCode: "CN", Name: "Beijing"},
	{Code: "CN-SH", CountryCode: "CN", Name: "Shanghai"},
	{Code: "CN-GD", CountryCode: "CN", Name: "Guangdong"},
	{Code: "CN-JS", CountryCode: "CN", Name: "Jiangsu"},
	{Code: "CN-ZJ", CountryCode: "CN", Name: "Zhejiang"},
	{Code: "CN-SC", CountryCode: "CN", Name: "Sichuan"},
}

var seedEconomicZones = []domain.EconomicZone{
	{Code: "CN-BJ-ZGC", ProvinceCode: "CN-BJ", Name: "Zhongguancun Science Park"},
	{Code: "CN-SH-PDG", ProvinceCode: "CN-SH", Name: "Pudong New Area"},
	{Code: "CN-GD-SZX", ProvinceCode: "CN-GD", Name: "Shenzhen Special Economic Zone"},
	{Code: "CN-JS-SIP", ProvinceCode: "CN-JS", Name: "Suzhou Industrial Park"},
}
