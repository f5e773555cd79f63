package keypattern

import (
	"fmt"
	"strings"

	"github.com/okvist/tablesmith/config"
	"github.com/okvist/tablesmith/model"
)

// maxPatternsPerIndex is how many distinct relationship access patterns may
// share one secondary index before it is flagged as overloaded. Many unrelated
// entity types in one partition-key namespace raises hot-partition risk and
// usually means the prefix design is not distinguishing enough.
const maxPatternsPerIndex = 5

// Conflict reports two or more entities whose partition-key templates share
// the same literal prefix, making their items indistinguishable in the table.
// A non-empty conflict list means the schema must not be deployed; the
// compiler itself still runs to completion.
type Conflict struct {
	Prefix   string
	Entities []string
}

func (c Conflict) String() string {
	return fmt.Sprintf("key prefix %q claimed by entities: %s", c.Prefix, strings.Join(c.Entities, ", "))
}

// Validate runs the registry-wide key checks after all entities have been
// processed: partition-key prefix collisions and overloaded secondary
// indexes. Collisions are returned as conflicts; both checks also append
// warnings to the registry.
func Validate(reg *model.Registry) []Conflict {
	conflicts := detectPrefixCollisions(reg)
	for _, c := range conflicts {
		reg.Warnf("key conflict: %s", c)
	}
	detectOverloadedIndexes(reg)
	return conflicts
}

func detectPrefixCollisions(reg *model.Registry) []Conflict {
	byPrefix := make(map[string][]string)
	var order []string
	for _, e := range reg.Entities() {
		if e.KeyPattern == nil {
			continue
		}
		prefix := Prefix(e.KeyPattern.PartitionKey)
		if _, seen := byPrefix[prefix]; !seen {
			order = append(order, prefix)
		}
		byPrefix[prefix] = append(byPrefix[prefix], e.Name)
	}

	var conflicts []Conflict
	for _, prefix := range order {
		if names := byPrefix[prefix]; len(names) > 1 {
			conflicts = append(conflicts, Conflict{Prefix: prefix, Entities: names})
		}
	}
	return conflicts
}

func detectOverloadedIndexes(reg *model.Registry) {
	usage := make(map[int]int)
	for _, e := range reg.Entities() {
		for _, r := range e.Relationships {
			if r.IndexNumber > 0 {
				usage[r.IndexNumber]++
			}
		}
	}
	for n := 1; n <= config.MaxSecondaryIndexes; n++ {
		if count, ok := usage[n]; ok && count > maxPatternsPerIndex {
			reg.Warnf("overloaded index gsi%d: referenced by %d relationship access patterns (max %d recommended)",
				n, count, maxPatternsPerIndex)
		}
	}
}
