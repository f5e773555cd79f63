package provision

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okvist/tablesmith/compiler"
	"github.com/okvist/tablesmith/config"
	"github.com/okvist/tablesmith/model"
)

type fakeTableAPI struct {
	created *dynamodb.CreateTableInput
	ttl     *dynamodb.UpdateTimeToLiveInput

	createErr error
	ttlErr    error
}

func (f *fakeTableAPI) CreateTable(_ context.Context, params *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	f.created = params
	return &dynamodb.CreateTableOutput{}, f.createErr
}

func (f *fakeTableAPI) UpdateTimeToLive(_ context.Context, params *dynamodb.UpdateTimeToLiveInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateTimeToLiveOutput, error) {
	f.ttl = params
	return &dynamodb.UpdateTimeToLiveOutput{}, f.ttlErr
}

func sessionResult(t *testing.T) (*compiler.Result, config.Table) {
	t.Helper()
	cfg := config.Default()
	entities := []*model.EntityDescriptor{
		{
			Name:       "User",
			PrimaryKey: "id",
			Attributes: []model.AttributeDescriptor{
				{Name: "id", Required: true},
				{Name: "email", Unique: true},
				{Name: "createdAt", Cast: "datetime"},
			},
		},
		{
			Name:       "Session",
			PrimaryKey: "id",
			Traits:     model.Traits{TTL: true},
			Attributes: []model.AttributeDescriptor{
				{Name: "id", Required: true},
				{Name: "userId", Required: true},
			},
			Relationships: []model.RelationshipDescriptor{
				{Kind: model.BelongsTo, Related: "User", ForeignKey: "userId", RequiresIndex: true},
			},
		},
	}
	return compiler.Compile(entities, cfg), cfg
}

func TestBuildCreateTableInput(t *testing.T) {
	res, cfg := sessionResult(t)

	input := BuildCreateTableInput(res, cfg)

	assert.Equal(t, "app-table", aws.ToString(input.TableName))
	assert.Equal(t, types.BillingModePayPerRequest, input.BillingMode)

	require.Len(t, input.KeySchema, 2)
	assert.Equal(t, "pk", aws.ToString(input.KeySchema[0].AttributeName))
	assert.Equal(t, types.KeyTypeHash, input.KeySchema[0].KeyType)
	assert.Equal(t, "sk", aws.ToString(input.KeySchema[1].AttributeName))
	assert.Equal(t, types.KeyTypeRange, input.KeySchema[1].KeyType)

	// gsi1 relationship + gsi2 unique email
	require.Len(t, input.GlobalSecondaryIndexes, 2)
	gsi := input.GlobalSecondaryIndexes[0]
	assert.Equal(t, "gsi1", aws.ToString(gsi.IndexName))
	assert.Equal(t, "gsi1pk", aws.ToString(gsi.KeySchema[0].AttributeName))
	assert.Equal(t, "gsi1sk", aws.ToString(gsi.KeySchema[1].AttributeName))
	assert.Equal(t, types.ProjectionTypeAll, gsi.Projection.ProjectionType)

	// createdAt LSI shares the table partition key
	require.Len(t, input.LocalSecondaryIndexes, 1)
	lsi := input.LocalSecondaryIndexes[0]
	assert.Equal(t, "lsi1", aws.ToString(lsi.IndexName))
	assert.Equal(t, "pk", aws.ToString(lsi.KeySchema[0].AttributeName))
	assert.Equal(t, "createdAt", aws.ToString(lsi.KeySchema[1].AttributeName))

	// pk, sk, gsi1pk, gsi1sk, gsi2pk, gsi2sk, createdAt; no duplicates
	var names []string
	for _, def := range input.AttributeDefinitions {
		assert.Equal(t, types.ScalarAttributeTypeS, def.AttributeType)
		names = append(names, aws.ToString(def.AttributeName))
	}
	assert.ElementsMatch(t, []string{"pk", "sk", "gsi1pk", "gsi1sk", "gsi2pk", "gsi2sk", "createdAt"}, names)
}

func TestBuildTTLInput(t *testing.T) {
	res, cfg := sessionResult(t)

	ttl := BuildTTLInput(res, cfg)
	require.NotNil(t, ttl)
	assert.Equal(t, "app-table", aws.ToString(ttl.TableName))
	assert.Equal(t, "expiresAt", aws.ToString(ttl.TimeToLiveSpecification.AttributeName))
	assert.True(t, aws.ToBool(ttl.TimeToLiveSpecification.Enabled))
}

func TestBuildTTLInput_NoneWithoutTrait(t *testing.T) {
	cfg := config.Default()
	res := compiler.Compile([]*model.EntityDescriptor{{Name: "User", PrimaryKey: "id"}}, cfg)

	assert.Nil(t, BuildTTLInput(res, cfg))
}

func TestApply(t *testing.T) {
	res, cfg := sessionResult(t)
	api := &fakeTableAPI{}

	require.NoError(t, Apply(context.Background(), api, res, cfg))

	require.NotNil(t, api.created)
	assert.Equal(t, "app-table", aws.ToString(api.created.TableName))
	require.NotNil(t, api.ttl, "TTL trait present, so TTL must be enabled")
}

func TestApply_RefusesConflictedSchema(t *testing.T) {
	cfg := config.Default()
	res := compiler.Compile([]*model.EntityDescriptor{
		{Name: "Order", PrimaryKey: "id"},
		{Name: "OrderLegacy", TypePrefix: "ORDER", PrimaryKey: "id"},
	}, cfg)
	api := &fakeTableAPI{}

	err := Apply(context.Background(), api, res, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refusing to provision")
	assert.Nil(t, api.created, "no control-plane call on a conflicted schema")
}

func TestApply_PropagatesCreateError(t *testing.T) {
	res, cfg := sessionResult(t)
	api := &fakeTableAPI{createErr: errors.New("limit exceeded")}

	err := Apply(context.Background(), api, res, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create table app-table")
	assert.Nil(t, api.ttl)
}
