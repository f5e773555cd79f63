// Package provision materializes a compiled schema as DynamoDB control-plane
// inputs: the CreateTable request covering the main key pair, every derived
// GSI and LSI, and the TTL specification. The compiler itself never touches
// the network; applying the inputs is strictly a downstream step.
package provision

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/okvist/tablesmith/compiler"
	"github.com/okvist/tablesmith/config"
	"github.com/okvist/tablesmith/deriver"
)

// BuildCreateTableInput converts a compilation result into the CreateTable
// request for the single physical table. All key attributes are strings; the
// compiler only emits string-templated keys.
func BuildCreateTableInput(res *compiler.Result, cfg config.Table) *dynamodb.CreateTableInput {
	input := &dynamodb.CreateTableInput{
		TableName:   aws.String(cfg.TableName),
		BillingMode: types.BillingModePayPerRequest,
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(cfg.PartitionKeyName), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String(cfg.SortKeyName), KeyType: types.KeyTypeRange},
		},
	}

	attrs := newAttributeSet()
	attrs.add(cfg.PartitionKeyName)
	attrs.add(cfg.SortKeyName)

	for _, def := range res.AllGlobalIndexes() {
		attrs.add(def.PartitionKey)
		attrs.add(def.SortKey)
		input.GlobalSecondaryIndexes = append(input.GlobalSecondaryIndexes, types.GlobalSecondaryIndex{
			IndexName: aws.String(def.Name),
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String(def.PartitionKey), KeyType: types.KeyTypeHash},
				{AttributeName: aws.String(def.SortKey), KeyType: types.KeyTypeRange},
			},
			Projection: projection(def),
		})
	}

	for _, def := range res.LSIs {
		attrs.add(def.SortKey)
		input.LocalSecondaryIndexes = append(input.LocalSecondaryIndexes, types.LocalSecondaryIndex{
			IndexName: aws.String(def.Name),
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String(cfg.PartitionKeyName), KeyType: types.KeyTypeHash},
				{AttributeName: aws.String(def.SortKey), KeyType: types.KeyTypeRange},
			},
			Projection: projection(def),
		})
	}

	input.AttributeDefinitions = attrs.definitions()
	return input
}

// BuildTTLInput returns the UpdateTimeToLive request when any entity uses
// TTL, or nil when none does.
func BuildTTLInput(res *compiler.Result, cfg config.Table) *dynamodb.UpdateTimeToLiveInput {
	for _, e := range res.Registry.Entities() {
		if e.Traits.TTL {
			return &dynamodb.UpdateTimeToLiveInput{
				TableName: aws.String(cfg.TableName),
				TimeToLiveSpecification: &types.TimeToLiveSpecification{
					AttributeName: aws.String(cfg.TTLAttribute),
					Enabled:       aws.Bool(true),
				},
			}
		}
	}
	return nil
}

func projection(def deriver.IndexDefinition) *types.Projection {
	p := &types.Projection{}
	switch def.Projection {
	case deriver.ProjectKeysOnly:
		p.ProjectionType = types.ProjectionTypeKeysOnly
	case deriver.ProjectInclude:
		p.ProjectionType = types.ProjectionTypeInclude
		p.NonKeyAttributes = def.IncludeAttributes
	default:
		p.ProjectionType = types.ProjectionTypeAll
	}
	return p
}

// attributeSet deduplicates key attribute definitions in insertion order.
type attributeSet struct {
	seen  map[string]bool
	names []string
}

func newAttributeSet() *attributeSet {
	return &attributeSet{seen: make(map[string]bool)}
}

func (s *attributeSet) add(name string) {
	if name == "" || s.seen[name] {
		return
	}
	s.seen[name] = true
	s.names = append(s.names, name)
}

func (s *attributeSet) definitions() []types.AttributeDefinition {
	out := make([]types.AttributeDefinition, 0, len(s.names))
	for _, name := range s.names {
		out = append(out, types.AttributeDefinition{
			AttributeName: aws.String(name),
			AttributeType: types.ScalarAttributeTypeS,
		})
	}
	return out
}

// TableAPI is the slice of the DynamoDB control plane Apply needs.
type TableAPI interface {
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	UpdateTimeToLive(ctx context.Context, params *dynamodb.UpdateTimeToLiveInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateTimeToLiveOutput, error)
}

// Apply provisions the compiled schema: it refuses schemas with key
// conflicts, creates the table, and enables TTL when required.
func Apply(ctx context.Context, api TableAPI, res *compiler.Result, cfg config.Table) error {
	if !res.Deployable() {
		return fmt.Errorf("schema has %d key conflict(s); refusing to provision", len(res.Conflicts))
	}

	if _, err := api.CreateTable(ctx, BuildCreateTableInput(res, cfg)); err != nil {
		return fmt.Errorf("create table %s: %w", cfg.TableName, err)
	}

	if ttl := BuildTTLInput(res, cfg); ttl != nil {
		if _, err := api.UpdateTimeToLive(ctx, ttl); err != nil {
			return fmt.Errorf("enable ttl on %s: %w", cfg.TableName, err)
		}
	}

	return nil
}
