package deriver

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okvist/tablesmith/config"
	"github.com/okvist/tablesmith/keypattern"
	"github.com/okvist/tablesmith/model"
)

func newRegistry(t *testing.T, entities ...*model.EntityDescriptor) *model.Registry {
	t.Helper()
	reg := model.NewRegistry()
	for _, e := range entities {
		reg.Add(e)
	}
	keypattern.Generate(reg, config.Default())
	return reg
}

func TestDeriveGSIs_BelongsToAndUnique(t *testing.T) {
	cfg := config.Default()
	user := &model.EntityDescriptor{
		Name:       "User",
		PrimaryKey: "id",
		Attributes: []model.AttributeDescriptor{
			{Name: "id", Required: true},
			{Name: "email", Required: true, Unique: true},
		},
	}
	post := &model.EntityDescriptor{
		Name:       "Post",
		PrimaryKey: "id",
		Attributes: []model.AttributeDescriptor{
			{Name: "id", Required: true},
			{Name: "userId", Required: true},
		},
		Relationships: []model.RelationshipDescriptor{
			{Kind: model.BelongsTo, Related: "User", ForeignKey: "userId", RequiresIndex: true},
		},
	}
	reg := newRegistry(t, user, post)

	defs := DeriveGSIs(reg, cfg)

	// relationships claim slots before unique attributes
	require.Len(t, defs, 2)
	assert.Equal(t, "gsi1", defs[0].Name)
	assert.Equal(t, "gsi1pk", defs[0].PartitionKey)
	assert.Equal(t, "gsi1sk", defs[0].SortKey)
	assert.Equal(t, ProjectAll, defs[0].Projection)

	assert.Equal(t, 1, post.Relationships[0].IndexNumber)
	assert.Equal(t, model.IndexKeyPair{
		PartitionKey: "USER#{userId}",
		SortKey:      "POST#{id}",
	}, post.KeyPattern.Indexes[1])

	assert.Equal(t, 2, reg.Assignment(model.AssignmentKey("User", "unique", "email")))
	assert.Equal(t, model.IndexKeyPair{
		PartitionKey: "EMAIL#{email}",
		SortKey:      "USER#{id}",
	}, user.KeyPattern.Indexes[2])

	assert.Empty(t, reg.Warnings())
	assert.Empty(t, reg.Missing())
}

func TestDeriveGSIs_HasOneShape(t *testing.T) {
	cfg := config.Default()
	user := &model.EntityDescriptor{
		Name:       "User",
		PrimaryKey: "id",
		Relationships: []model.RelationshipDescriptor{
			{Kind: model.HasOne, Related: "Profile", ForeignKey: "profileId", RequiresIndex: true},
		},
	}
	profile := &model.EntityDescriptor{Name: "Profile", PrimaryKey: "id"}
	reg := newRegistry(t, user, profile)

	DeriveGSIs(reg, cfg)

	require.Equal(t, 1, user.Relationships[0].IndexNumber)
	assert.Equal(t, model.IndexKeyPair{
		PartitionKey: "USER#{id}",
		SortKey:      "PROFILE#{profileId}",
	}, user.KeyPattern.Indexes[1])
}

func TestDeriveGSIs_BelongsToManySharesAdjacencyShape(t *testing.T) {
	cfg := config.Default()
	tag := &model.EntityDescriptor{
		Name:       "Tag",
		PrimaryKey: "id",
		Relationships: []model.RelationshipDescriptor{
			{Kind: model.BelongsToMany, Related: "Post", ForeignKey: "postId", Pivot: "PostTag", RequiresIndex: true},
		},
	}
	post := &model.EntityDescriptor{Name: "Post", PrimaryKey: "id"}
	reg := newRegistry(t, tag, post)

	DeriveGSIs(reg, cfg)

	assert.Equal(t, model.IndexKeyPair{
		PartitionKey: "POST#{postId}",
		SortKey:      "TAG#{id}",
	}, tag.KeyPattern.Indexes[1])
}

func TestDeriveGSIs_HasManyNeedsNoIndex(t *testing.T) {
	cfg := config.Default()
	user := &model.EntityDescriptor{
		Name:       "User",
		PrimaryKey: "id",
		Relationships: []model.RelationshipDescriptor{
			{Kind: model.HasMany, Related: "Post", RequiresIndex: true},
		},
	}
	post := &model.EntityDescriptor{Name: "Post", PrimaryKey: "id"}
	reg := newRegistry(t, user, post)

	defs := DeriveGSIs(reg, cfg)

	assert.Empty(t, defs)
	assert.Equal(t, 0, user.Relationships[0].IndexNumber)
	assert.Empty(t, reg.Warnings())
}

func TestDeriveGSIs_UnknownRelatedSkipsWithWarning(t *testing.T) {
	cfg := config.Default()
	post := &model.EntityDescriptor{
		Name:       "Post",
		PrimaryKey: "id",
		Relationships: []model.RelationshipDescriptor{
			{Kind: model.BelongsTo, Related: "Ghost", ForeignKey: "ghostId", RequiresIndex: true},
		},
	}
	reg := newRegistry(t, post)

	defs := DeriveGSIs(reg, cfg)

	assert.Empty(t, defs)
	assert.Equal(t, 0, post.Relationships[0].IndexNumber)
	require.Len(t, reg.Warnings(), 1)
	assert.Contains(t, reg.Warnings()[0], `related model "Ghost" not found`)
}

func TestDeriveGSIs_BudgetExhaustion(t *testing.T) {
	cfg := config.Default()

	var entities []*model.EntityDescriptor
	for i := 1; i <= 6; i++ {
		name := fmt.Sprintf("Entity%d", i)
		entities = append(entities, &model.EntityDescriptor{
			Name:       name,
			PrimaryKey: "id",
			Attributes: []model.AttributeDescriptor{
				{Name: "id", Required: true},
				{Name: "code", Unique: true},
			},
		})
	}
	reg := newRegistry(t, entities...)

	defs := DeriveGSIs(reg, cfg)

	assert.Len(t, defs, 5)
	require.Len(t, reg.Missing(), 1)
	assert.Equal(t, "Entity6", reg.Missing()[0].Entity)
	assert.Equal(t, "unique", reg.Missing()[0].Kind)
	assert.Equal(t, "code", reg.Missing()[0].Target)

	var found bool
	for _, w := range reg.Warnings() {
		if strings.Contains(w, "exceeded max GSI count") {
			found = true
		}
	}
	assert.True(t, found, "expected an exceeded max GSI count warning")
}

func TestDeriveGSIs_TemplatePlaceholdersAreDeclared(t *testing.T) {
	cfg := config.Default()
	user := &model.EntityDescriptor{
		Name:       "User",
		PrimaryKey: "id",
		Attributes: []model.AttributeDescriptor{
			{Name: "id", Required: true},
			{Name: "email", Unique: true},
		},
	}
	reg := newRegistry(t, user)

	DeriveGSIs(reg, cfg)

	for _, pair := range user.KeyPattern.Indexes {
		assert.Empty(t, verifyPlaceholders(user, pair.PartitionKey))
		assert.Empty(t, verifyPlaceholders(user, pair.SortKey))
	}
}

func TestDefaultForeignKey(t *testing.T) {
	assert.Equal(t, "userId", defaultForeignKey("User"))
	assert.Equal(t, "orderItemId", defaultForeignKey("OrderItem"))
	assert.Equal(t, "id", defaultForeignKey(""))
}
