// Package compiler runs the single-table schema pipeline: it takes parsed
// entity descriptors, computes base key patterns, assigns the bounded
// secondary index slots, synthesizes the access-pattern catalog, and runs the
// registry-wide validation pass. Compilation never fails: unsatisfiable
// requirements surface as warnings, missing patterns, and conflicts on the
// Result, and the caller decides what to do with them.
package compiler

import (
	"github.com/okvist/tablesmith/accesspattern"
	"github.com/okvist/tablesmith/config"
	"github.com/okvist/tablesmith/deriver"
	"github.com/okvist/tablesmith/keypattern"
	"github.com/okvist/tablesmith/model"
)

// Result is the complete output of one compilation. It is immutable once
// returned; downstream consumers (reporting, provisioning, the runtime key
// builder) only read it.
type Result struct {
	Registry *model.Registry

	// GSIs are the relationship and unique-lookup indexes; Sparse are the
	// filtered-query indexes. Both draw from the same 1..MaxGSICount slots.
	GSIs   []deriver.IndexDefinition
	Sparse []deriver.IndexDefinition

	LSIs     []deriver.IndexDefinition
	LSIUsage []deriver.LSIUsage

	Patterns    []model.AccessPattern
	Matrices    map[string]accesspattern.Matrix
	Suggestions []string

	Conflicts []keypattern.Conflict
	Warnings  []string
	Missing   []model.MissingPattern
}

// Deployable reports whether the schema is safe to provision: any key-prefix
// conflict means two entities would collide in the table.
func (r *Result) Deployable() bool {
	return len(r.Conflicts) == 0
}

// AllGlobalIndexes returns the GSI and sparse index definitions merged in
// slot order, as table-provisioning tooling consumes them.
func (r *Result) AllGlobalIndexes() []deriver.IndexDefinition {
	out := make([]deriver.IndexDefinition, 0, len(r.GSIs)+len(r.Sparse))
	out = append(out, r.GSIs...)
	out = append(out, r.Sparse...)
	return out
}

// Compile builds a fresh registry from the descriptors and runs the pipeline.
// Each call uses its own registry, so independent compilations never share
// mutable state.
func Compile(entities []*model.EntityDescriptor, cfg config.Table) *Result {
	reg := model.NewRegistry()
	for _, e := range entities {
		reg.Add(e)
	}
	return CompileRegistry(reg, cfg)
}

// CompileRegistry runs the pipeline against an already-populated registry:
// base key patterns, then the GSI, LSI and sparse derivers, then the
// access-pattern catalog, then validation.
func CompileRegistry(reg *model.Registry, cfg config.Table) *Result {
	keypattern.Generate(reg, cfg)

	gsis := deriver.DeriveGSIs(reg, cfg)
	lsis, lsiUsage := deriver.DeriveLSIs(reg, cfg)
	// Sparse derivation shares the GSI budget, continuing from the slots the
	// GSI deriver consumed.
	sparse := deriver.DeriveSparse(reg, cfg, reg.AssignedCount())

	ap := accesspattern.Generate(reg, cfg)
	conflicts := keypattern.Validate(reg)

	return &Result{
		Registry:    reg,
		GSIs:        gsis,
		Sparse:      sparse,
		LSIs:        lsis,
		LSIUsage:    lsiUsage,
		Patterns:    ap.Patterns,
		Matrices:    ap.Matrices,
		Suggestions: ap.Suggestions,
		Conflicts:   conflicts,
		Warnings:    reg.Warnings(),
		Missing:     reg.Missing(),
	}
}
