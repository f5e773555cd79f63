package model

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// Declaration types
// =============================================================================

// Declarations is the root of a model declaration file.
type Declarations struct {
	Entities []EntityDecl `yaml:"entities"`
}

// EntityDecl is the raw declarative form of one entity, as written in YAML.
type EntityDecl struct {
	Name          string             `yaml:"name"`
	Type          string             `yaml:"type,omitempty"` // key prefix override
	PrimaryKey    string             `yaml:"primaryKey"`
	Attributes    []AttributeDecl    `yaml:"attributes,omitempty"`
	Relationships []RelationshipDecl `yaml:"relationships,omitempty"`
	Traits        TraitsDecl         `yaml:"traits,omitempty"`
}

// AttributeDecl is the raw declarative form of one attribute.
type AttributeDecl struct {
	Name        string `yaml:"name"`
	Required    bool   `yaml:"required,omitempty"`
	Unique      bool   `yaml:"unique,omitempty"`
	Nullable    bool   `yaml:"nullable,omitempty"`
	Hidden      bool   `yaml:"hidden,omitempty"`
	Cast        string `yaml:"cast,omitempty"`
	Default     any    `yaml:"default,omitempty"`
	LocalIndex  bool   `yaml:"localIndex,omitempty"`
	SparseIndex bool   `yaml:"sparseIndex,omitempty"`
}

// RelationshipDecl is the raw declarative form of one relationship.
type RelationshipDecl struct {
	Kind       string `yaml:"kind"`
	Related    string `yaml:"related"`
	ForeignKey string `yaml:"foreignKey,omitempty"`
	LocalKey   string `yaml:"localKey,omitempty"`
	Pivot      string `yaml:"pivot,omitempty"`
	Index      bool   `yaml:"index,omitempty"`
}

// TraitsDecl is the raw declarative form of entity traits.
type TraitsDecl struct {
	Timestamps bool `yaml:"timestamps,omitempty"`
	SoftDelete bool `yaml:"softDelete,omitempty"`
	UUID       bool `yaml:"uuid,omitempty"`
	TTL        bool `yaml:"ttl,omitempty"`
	Versioning bool `yaml:"versioning,omitempty"`
}

// =============================================================================
// Loading
// =============================================================================

// LoadFile reads a YAML declaration file and parses it into descriptors.
func LoadFile(path string) ([]*EntityDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model declarations: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML model declarations into entity descriptors. Structural
// problems (missing name or primary key, unknown relationship kind) are
// errors; cross-entity consistency is checked later by the compiler, which
// downgrades dangling references to warnings.
func Parse(data []byte) ([]*EntityDescriptor, error) {
	var decls Declarations
	if err := yaml.Unmarshal(data, &decls); err != nil {
		return nil, fmt.Errorf("parse model declarations: %w", err)
	}
	if len(decls.Entities) == 0 {
		return nil, fmt.Errorf("no entities declared")
	}

	out := make([]*EntityDescriptor, 0, len(decls.Entities))
	for i, decl := range decls.Entities {
		e, err := fromDecl(decl)
		if err != nil {
			return nil, fmt.Errorf("entity %d (%q): %w", i, decl.Name, err)
		}
		out = append(out, e)
	}
	return out, nil
}

func fromDecl(decl EntityDecl) (*EntityDescriptor, error) {
	if decl.Name == "" {
		return nil, fmt.Errorf("missing name")
	}
	if decl.PrimaryKey == "" {
		return nil, fmt.Errorf("missing primaryKey")
	}

	prefix := decl.Type
	if prefix == "" {
		prefix = DefaultTypePrefix(decl.Name)
	}

	e := &EntityDescriptor{
		Name:       decl.Name,
		TypePrefix: prefix,
		PrimaryKey: decl.PrimaryKey,
		Traits: Traits{
			Timestamps:     decl.Traits.Timestamps,
			SoftDelete:     decl.Traits.SoftDelete,
			UUIDPrimaryKey: decl.Traits.UUID,
			TTL:            decl.Traits.TTL,
			Versioning:     decl.Traits.Versioning,
		},
		Raw: decl,
	}

	for _, a := range decl.Attributes {
		if a.Name == "" {
			return nil, fmt.Errorf("attribute with empty name")
		}
		e.Attributes = append(e.Attributes, AttributeDescriptor{
			Name:        a.Name,
			Required:    a.Required,
			Unique:      a.Unique,
			Nullable:    a.Nullable,
			Hidden:      a.Hidden,
			Cast:        a.Cast,
			Default:     a.Default,
			LocalIndex:  a.LocalIndex,
			SparseIndex: a.SparseIndex,
		})
	}
	// The primary key participates in key templates even when the declaration
	// omits it from the attribute list.
	if e.Attribute(e.PrimaryKey) == nil {
		e.Attributes = append([]AttributeDescriptor{{
			Name:     e.PrimaryKey,
			Required: true,
			Cast:     "string",
		}}, e.Attributes...)
	}

	for _, r := range decl.Relationships {
		kind := RelationshipKind(r.Kind)
		if !kind.Valid() {
			return nil, fmt.Errorf("unknown relationship kind %q", r.Kind)
		}
		if r.Related == "" {
			return nil, fmt.Errorf("relationship of kind %q missing related entity", r.Kind)
		}
		localKey := r.LocalKey
		if localKey == "" {
			localKey = e.PrimaryKey
		}
		e.Relationships = append(e.Relationships, RelationshipDescriptor{
			Kind:          kind,
			Related:       r.Related,
			ForeignKey:    r.ForeignKey,
			LocalKey:      localKey,
			Pivot:         r.Pivot,
			RequiresIndex: r.Index,
		})
	}

	return e, nil
}
