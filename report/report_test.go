package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/okvist/tablesmith/compiler"
	"github.com/okvist/tablesmith/config"
	"github.com/okvist/tablesmith/model"
)

func blogResult(t *testing.T) (*compiler.Result, config.Table) {
	t.Helper()
	cfg := config.Default()
	entities := []*model.EntityDescriptor{
		{
			Name:       "User",
			PrimaryKey: "id",
			Traits:     model.Traits{SoftDelete: true},
			Attributes: []model.AttributeDescriptor{
				{Name: "id", Required: true},
				{Name: "email", Required: true, Unique: true},
				{Name: "passwordHash", Hidden: true},
				{Name: "createdAt", Cast: "datetime"},
			},
			Relationships: []model.RelationshipDescriptor{
				{Kind: model.HasMany, Related: "Post"},
			},
		},
		{
			Name:       "Post",
			PrimaryKey: "id",
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

func TestBuildSchema(t *testing.T) {
	res, cfg := blogResult(t)

	file := BuildSchema(res, cfg)
	require.Len(t, file.Tables, 1)
	tbl := file.Tables[0]

	assert.Equal(t, "app-table", tbl.Name)
	assert.Equal(t, KeyDefYAML{Name: "pk", Kind: "S"}, tbl.PartitionKey)
	require.NotNil(t, tbl.SortKey)
	assert.Equal(t, KeyDefYAML{Name: "sk", Kind: "S"}, *tbl.SortKey)

	// gsi1 relationship, gsi2 unique email, gsi3 sparse soft-delete
	require.Len(t, tbl.GSIs, 3)
	assert.Equal(t, "gsi1", tbl.GSIs[0].Name)
	assert.Equal(t, "gsi1pk", tbl.GSIs[0].PartitionKey.Name)
	assert.False(t, tbl.GSIs[0].Sparse)
	assert.True(t, tbl.GSIs[2].Sparse)

	// createdAt becomes an LSI sort key
	require.Len(t, tbl.LSIs, 1)
	assert.Equal(t, "lsi1", tbl.LSIs[0].Name)
	assert.Equal(t, "createdAt", tbl.LSIs[0].SortKey)
	assert.Equal(t, "User", tbl.LSIs[0].Entity)

	require.Len(t, tbl.Entities, 2)
	user := tbl.Entities[0]
	assert.Equal(t, "User", user.Type)
	assert.Equal(t, "USER#{id}", user.PartitionKeyPattern)
	assert.True(t, user.SoftDelete)

	fields := make([]string, 0, len(user.Fields))
	for _, f := range user.Fields {
		fields = append(fields, f.Name)
	}
	assert.NotContains(t, fields, "passwordHash", "hidden fields stay out of the schema")
	assert.Contains(t, fields, "email")

	post := tbl.Entities[1]
	require.NotEmpty(t, post.GSIMappings)
	assert.Equal(t, GSIMappingYAML{
		GSI:              "gsi1",
		PartitionPattern: "USER#{userId}",
		SortPattern:      "POST#{id}",
	}, post.GSIMappings[0])
}

func TestSchemaYAMLRoundTrips(t *testing.T) {
	res, cfg := blogResult(t)

	data, err := SchemaYAML(res, cfg)
	require.NoError(t, err)

	var decoded SchemaFile
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, BuildSchema(res, cfg), decoded)
}

func TestMarkdownSections(t *testing.T) {
	res, cfg := blogResult(t)

	md := Markdown(res, cfg)

	assert.Contains(t, md, "# Table app-table")
	assert.Contains(t, md, "## Indexes")
	assert.Contains(t, md, "## User")
	assert.Contains(t, md, "## Post")
	assert.Contains(t, md, "## Index assignments")
	assert.Contains(t, md, "| gsi1 | gsi1pk | gsi1sk | ALL | GSI |")
	assert.Contains(t, md, "sparse GSI")
	assert.Contains(t, md, "`Post:belongsTo:User` -> gsi1")
	assert.NotContains(t, md, "## Conflicts")
}

func TestMarkdownDiagnostics(t *testing.T) {
	cfg := config.Default()
	entities := []*model.EntityDescriptor{
		{Name: "Order", PrimaryKey: "id"},
		{Name: "OrderLegacy", TypePrefix: "ORDER", PrimaryKey: "id"},
	}
	res := compiler.Compile(entities, cfg)

	md := Markdown(res, cfg)

	assert.Contains(t, md, "## Conflicts")
	assert.Contains(t, md, "## Warnings")
	assert.Contains(t, md, "ORDER#")
}

func TestJSONCatalog(t *testing.T) {
	res, cfg := blogResult(t)

	data, err := JSON(res, cfg)
	require.NoError(t, err)

	var cat Catalog
	require.NoError(t, json.Unmarshal(data, &cat))

	assert.Equal(t, "app-table", cat.Table)
	assert.True(t, cat.Deployable)
	require.Len(t, cat.Entities, 2)
	assert.Equal(t, "USER#{id}", cat.Entities[0].PartitionKey)
	assert.Equal(t, 1, cat.Assignments["Post:belongsTo:User"])
	assert.NotEmpty(t, cat.Patterns)
	assert.Empty(t, cat.Conflicts)
}

func TestJSONCatalogConflicts(t *testing.T) {
	cfg := config.Default()
	res := compiler.Compile([]*model.EntityDescriptor{
		{Name: "Order", PrimaryKey: "id"},
		{Name: "OrderLegacy", TypePrefix: "ORDER", PrimaryKey: "id"},
	}, cfg)

	data, err := JSON(res, cfg)
	require.NoError(t, err)

	var cat Catalog
	require.NoError(t, json.Unmarshal(data, &cat))
	assert.False(t, cat.Deployable)
	require.Len(t, cat.Conflicts, 1)
}
