// Package shacl evaluates declarative shape constraints against stored
// entities. A shape targets a class and constrains property cardinality;
// an entity is valid for a shape when it is not a target (vacuously) or
// every constraint holds.
//
// Counting always enumerates the store's distinct object set for the
// (property, entity) pair. Approximating the count as 0-or-1 would
// silently break maxCount > 1 semantics.
package shacl

import (
	"fmt"
	"log/slog"

	"github.com/c360/semkernel/errors"
	"github.com/c360/semkernel/owl"
	"github.com/c360/semkernel/store"
	"github.com/c360/semkernel/types"
)

// PropertyConstraint bounds the number of distinct objects an entity may
// carry for one property. MaxCount nil means unbounded.
type PropertyConstraint struct {
	Property types.ID `json:"property"`
	MinCount uint32   `json:"min_count"`
	MaxCount *uint32  `json:"max_count,omitempty"`
}

// Shape is a target class plus its property constraints.
type Shape struct {
	TargetClass types.ID             `json:"target_class"`
	Constraints []PropertyConstraint `json:"constraints"`
}

// Validator owns the shape registry and evaluates shapes against
// entities. Shape definitions are independent of triple data and are
// referenced by caller-chosen ids at validation time.
type Validator struct {
	store         *store.Store
	reasoner      *owl.Reasoner // nil disables semantic targeting
	typePredicate types.ID
	logger        *slog.Logger

	shapes map[string]Shape
	order  []string // registration order, for deterministic evaluation
}

// New creates a validator. The reasoner may be nil; targeting then uses
// direct rdf:type triples only.
func New(st *store.Store, reasoner *owl.Reasoner, typePredicate types.ID, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{
		store:         st,
		reasoner:      reasoner,
		typePredicate: typePredicate,
		logger:        logger,
		shapes:        make(map[string]Shape),
	}
}

// DefineShape registers a shape, overwriting any prior definition with
// the same id.
func (v *Validator) DefineShape(id string, shape Shape) error {
	if id == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Validator", "DefineShape",
			"shape id must be non-empty")
	}
	if shape.TargetClass == 0 {
		return errors.WrapInvalid(errors.ErrReservedIdentifier, "Validator", "DefineShape",
			"target class must be non-zero")
	}
	for i, pc := range shape.Constraints {
		if pc.Property == 0 {
			return errors.WrapInvalid(errors.ErrReservedIdentifier, "Validator", "DefineShape",
				fmt.Sprintf("constraint %d: property must be non-zero", i))
		}
		if pc.MaxCount != nil && *pc.MaxCount < pc.MinCount {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "Validator", "DefineShape",
				fmt.Sprintf("constraint %d: max_count %d below min_count %d", i, *pc.MaxCount, pc.MinCount))
		}
	}

	if _, exists := v.shapes[id]; !exists {
		v.order = append(v.order, id)
	}
	v.shapes[id] = shape
	return nil
}

// Shape returns a registered shape definition.
func (v *Validator) Shape(id string) (Shape, error) {
	shape, ok := v.shapes[id]
	if !ok {
		return Shape{}, errors.WrapNotFound(errors.ErrShapeNotFound, "Validator", "Shape", id)
	}
	return shape, nil
}

// Len returns the number of registered shapes.
func (v *Validator) Len() int {
	return len(v.shapes)
}

// Validate evaluates every registered shape against the entity. Shapes
// whose target class the entity does not satisfy are vacuously valid.
// With no registered shapes the result is an empty map, not an error.
func (v *Validator) Validate(entity types.ID) (map[string]bool, error) {
	results := make(map[string]bool, len(v.shapes))
	for _, id := range v.order {
		shape := v.shapes[id]
		target, err := v.isTarget(entity, shape.TargetClass)
		if err != nil {
			return nil, err
		}
		if !target {
			results[id] = true
			continue
		}
		results[id] = v.constraintsHold(entity, shape.Constraints)
	}
	return results, nil
}

// CheckClass reports whether the entity belongs to the class, expanding
// through subclass closures when a reasoner is attached and clean.
func (v *Validator) CheckClass(entity, class types.ID) (bool, error) {
	return v.isTarget(entity, class)
}

// CheckMinCount reports whether the entity carries at least min distinct
// objects for the property.
func (v *Validator) CheckMinCount(entity, property types.ID, min uint32) bool {
	return uint32(len(v.store.ObjectsFor(property, entity))) >= min
}

// CheckMaxCount reports whether the entity carries at most max distinct
// objects for the property.
func (v *Validator) CheckMaxCount(entity, property types.ID, max uint32) bool {
	return uint32(len(v.store.ObjectsFor(property, entity))) <= max
}

// isTarget resolves class membership. The reasoner path is only taken
// when closures are clean; a dirty reasoner surfaces the stale error
// rather than silently downgrading to direct lookup.
func (v *Validator) isTarget(entity, class types.ID) (bool, error) {
	if v.reasoner != nil {
		return v.reasoner.Ask(entity, v.typePredicate, class)
	}
	return v.store.Contains(entity, v.typePredicate, class), nil
}

// constraintsHold evaluates every property constraint by enumerating the
// entity's distinct object set.
func (v *Validator) constraintsHold(entity types.ID, constraints []PropertyConstraint) bool {
	for _, pc := range constraints {
		count := uint32(len(v.store.ObjectsFor(pc.Property, entity)))
		if count < pc.MinCount {
			return false
		}
		if pc.MaxCount != nil && count > *pc.MaxCount {
			return false
		}
	}
	return true
}
