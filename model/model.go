// Package model defines the descriptor types for single-table entity schemas
// and the registry that owns them during compilation. The descriptor types are
// plain data structures; the compilation logic lives in the keypattern,
// deriver and accesspattern packages.
package model

import "strings"

// RelationshipKind identifies how two entities relate. The set is closed:
// code dispatching on kind should switch over all four constants.
type RelationshipKind string

const (
	HasOne        RelationshipKind = "hasOne"
	HasMany       RelationshipKind = "hasMany"
	BelongsTo     RelationshipKind = "belongsTo"
	BelongsToMany RelationshipKind = "belongsToMany"
)

// Valid reports whether k is one of the four known relationship kinds.
func (k RelationshipKind) Valid() bool {
	switch k {
	case HasOne, HasMany, BelongsTo, BelongsToMany:
		return true
	}
	return false
}

// AttributeDescriptor describes one declared attribute of an entity.
type AttributeDescriptor struct {
	Name     string
	Required bool
	Unique   bool
	Nullable bool
	Hidden   bool
	Cast     string // declared type: "string", "int", "float", "bool", "datetime", ...
	Default  any

	// LocalIndex marks the attribute as an explicit LSI sort-key candidate.
	LocalIndex bool
	// SparseIndex marks an optional attribute that should be indexed only on
	// items that define it.
	SparseIndex bool
}

// RelationshipDescriptor describes one declared relationship of an entity.
type RelationshipDescriptor struct {
	Kind       RelationshipKind
	Related    string // related entity name
	ForeignKey string // attribute holding the related entity's key
	LocalKey   string // attribute on this entity the relationship joins on
	Pivot      string // pivot entity name, belongsToMany only

	// RequiresIndex requests a secondary index for cross-entity lookup.
	RequiresIndex bool
	// IndexNumber is the assigned secondary index slot (1..5), 0 if none.
	IndexNumber int
}

// Traits are the behavioral flags an entity opts into.
type Traits struct {
	Timestamps     bool
	SoftDelete     bool
	UUIDPrimaryKey bool
	TTL            bool
	Versioning     bool
}

// IndexKeyPair holds the partition and sort key templates of one secondary index.
type IndexKeyPair struct {
	PartitionKey string
	SortKey      string
}

// KeyPattern holds the key templates computed for one entity. Templates are
// strings with {attributeName} placeholders, e.g. "USER#{id}". A KeyPattern
// belongs to exactly one entity and is never mutated after compilation.
type KeyPattern struct {
	PartitionKey string
	SortKey      string
	// Indexes maps secondary index number (1..5) to that index's key templates.
	Indexes map[int]IndexKeyPair
}

// Operation classifies how an access pattern reads the table.
type Operation string

const (
	OperationGet   Operation = "get"
	OperationQuery Operation = "query"
	OperationScan  Operation = "scan"
)

// AccessPattern documents one named way of retrieving data, tagged with the
// index it uses and whether it avoids a full table scan. Access patterns are
// produced once per compilation and consumed for documentation and validation
// only; the live query path never reads them.
type AccessPattern struct {
	Name           string
	Description    string
	Entity         string
	Operation      Operation
	Index          string // "main", "gsi1".."gsi5", or "scan"
	KeyCondition   string
	ExampleKeys    []string
	Efficient      bool
	Category       string
	RequiredParams []string
	OptionalParams []string
	Notes          string

	// Machine-readable form of KeyCondition, used to render example query
	// expressions for documentation. Empty for scan patterns.
	PartitionAttr     string
	PartitionTemplate string
	SortAttr          string
	SortTemplate      string
	SortOperator      SortOperator
}

// SortOperator is the comparison an access pattern applies to the sort key.
type SortOperator string

const (
	SortNone       SortOperator = ""
	SortEquals     SortOperator = "eq"
	SortBeginsWith SortOperator = "begins_with"
)

// EntityDescriptor is the parsed form of one declared model.
type EntityDescriptor struct {
	Name          string
	TypePrefix    string // uppercase token used in keys, e.g. "ORDER"
	PrimaryKey    string // primary key attribute name
	Attributes    []AttributeDescriptor
	Relationships []RelationshipDescriptor
	Traits        Traits

	// KeyPattern and AccessPatterns are computed during compilation.
	KeyPattern     *KeyPattern
	AccessPatterns []AccessPattern

	// Raw is the original declaration, kept for diagnostics only.
	Raw any
}

// Attribute returns the named attribute descriptor, or nil if not declared.
func (e *EntityDescriptor) Attribute(name string) *AttributeDescriptor {
	for i := range e.Attributes {
		if e.Attributes[i].Name == name {
			return &e.Attributes[i]
		}
	}
	return nil
}

// UniqueAttributes returns the declared unique attributes excluding the
// primary key, in declaration order.
func (e *EntityDescriptor) UniqueAttributes() []AttributeDescriptor {
	var out []AttributeDescriptor
	for _, a := range e.Attributes {
		if a.Unique && a.Name != e.PrimaryKey {
			out = append(out, a)
		}
	}
	return out
}

// DefaultTypePrefix derives the key prefix for an entity name: the name
// uppercased, e.g. "OrderItem" -> "ORDERITEM". Declarations may override it.
func DefaultTypePrefix(name string) string {
	return strings.ToUpper(name)
}
