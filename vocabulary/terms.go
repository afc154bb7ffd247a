package vocabulary

import (
	"github.com/c360/semkernel/intern"
	"github.com/c360/semkernel/types"
)

// Terms holds the interned identifiers of the IRIs the engine gives
// built-in semantics to. Interned once at engine construction so the
// query hot path compares integers, never strings.
type Terms struct {
	Type               types.ID
	SubClassOf         types.ID
	EquivalentClass    types.ID
	TransitiveProperty types.ID
}

// InternTerms interns the built-in IRIs and returns their identifiers.
func InternTerms(in *intern.Interner) (*Terms, error) {
	t := &Terms{}
	var err error
	if t.Type, err = in.Intern(RdfType); err != nil {
		return nil, err
	}
	if t.SubClassOf, err = in.Intern(RdfsSubClassOf); err != nil {
		return nil, err
	}
	if t.EquivalentClass, err = in.Intern(OwlEquivalentClass); err != nil {
		return nil, err
	}
	if t.TransitiveProperty, err = in.Intern(OwlTransitiveProperty); err != nil {
		return nil, err
	}
	return t, nil
}
