package deriver

import (
	"strings"

	"github.com/okvist/tablesmith/config"
	"github.com/okvist/tablesmith/model"
)

// maxSparsePerEntity caps how many sparse index slots one entity may claim.
const maxSparsePerEntity = 2

// statusNames are the attribute names conventionally holding a small
// enumerated state, where indexing only the items that define the attribute
// beats a filtered scan.
var statusNames = map[string]bool{
	"status":    true,
	"state":     true,
	"active":    true,
	"enabled":   true,
	"published": true,
}

// DeriveSparse assigns global index slots to attributes where a sparse index
// is cheaper than a full one: the soft-delete marker (only live items get
// indexed), status-like attributes, attributes explicitly declared optional
// and indexed, and the TTL attribute on entities that use TTL.
//
// Sparse indexes share the 1..MaxGSICount numbering with the GSI deriver;
// start fast-forwards the registry's slot counter so a caller that allocated
// earlier slots elsewhere cannot collide with them. Budget exhaustion warns
// and records a missing pattern, identical to the GSI deriver.
func DeriveSparse(reg *model.Registry, cfg config.Table, start int) []IndexDefinition {
	reg.SetIndexFloor(start)
	defs := make(map[int]IndexDefinition)

	for _, e := range reg.Entities() {
		candidates := sparseCandidates(e, cfg)
		if len(candidates) > maxSparsePerEntity {
			candidates = candidates[:maxSparsePerEntity]
		}

		for _, attr := range candidates {
			key := model.AssignmentKey(e.Name, "sparse", attr)
			n, ok := reg.Assign(key, cfg.MaxGSICount)
			if !ok {
				reg.Warnf("exceeded max GSI count (%d): no sparse index for %s.%s", cfg.MaxGSICount, e.Name, attr)
				reg.AddMissing(model.MissingPattern{
					Entity: e.Name,
					Kind:   "sparse",
					Target: attr,
					Reason: "GSI budget exhausted; consider raising maxGSICount",
				})
				continue
			}

			e.KeyPattern.Indexes[n] = model.IndexKeyPair{
				PartitionKey: strings.ToUpper(attr) + cfg.Delimiter + "{" + attr + "}",
				SortKey:      e.TypePrefix + cfg.Delimiter + "{" + e.PrimaryKey + "}",
			}
			ensureDefinition(defs, cfg, n, true)
		}
	}

	return slotOrder(defs)
}

func sparseCandidates(e *model.EntityDescriptor, cfg config.Table) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}

	if e.Traits.SoftDelete {
		add(cfg.SoftDeleteAttribute)
	}
	for _, a := range e.Attributes {
		if statusLike(a.Name) {
			add(a.Name)
		}
	}
	for _, a := range e.Attributes {
		if a.SparseIndex && !a.Required {
			add(a.Name)
		}
	}
	if e.Traits.TTL {
		add(cfg.TTLAttribute)
	}

	return out
}

func statusLike(name string) bool {
	lower := strings.ToLower(name)
	if statusNames[lower] {
		return true
	}
	return strings.HasSuffix(lower, "status")
}
