// Package vocabulary provides the W3C standard IRIs the engine gives
// built-in semantics to, and a Terms table of their interned identifiers.
//
// The engine itself is vocabulary-agnostic: identifiers are opaque. The
// few IRIs below are the exception — the facade routes triples over them
// into the reasoner (subclass edges, transitivity flags) and uses rdf:type
// for shape targeting and closure membership.
//
// References:
//   - RDF:  https://www.w3.org/TR/rdf11-concepts/
//   - RDFS: https://www.w3.org/TR/rdf-schema/
//   - OWL:  https://www.w3.org/TR/owl2-overview/
//   - SHACL: https://www.w3.org/TR/shacl/
package vocabulary

// RDF core IRIs.
const (
	// RdfType relates an entity to its class. Queries over this predicate
	// can be answered through subclass closures.
	RdfType = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
)

// RDF Schema IRIs.
const (
	// RdfsSubClassOf records a directed subclass edge. Triples with this
	// predicate are routed into the reasoner.
	RdfsSubClassOf = "http://www.w3.org/2000/01/rdf-schema#subClassOf"

	// RdfsLabel provides a human-readable name for a resource.
	RdfsLabel = "http://www.w3.org/2000/01/rdf-schema#label"

	// RdfsComment provides a human-readable description.
	RdfsComment = "http://www.w3.org/2000/01/rdf-schema#comment"
)

// OWL IRIs.
const (
	// OwlEquivalentClass indicates equivalent classes; recorded as
	// subclass edges in both directions.
	OwlEquivalentClass = "http://www.w3.org/2002/07/owl#equivalentClass"

	// OwlTransitiveProperty marks a property as transitive. A triple
	// (p, rdf:type, owl:TransitiveProperty) flags p in the reasoner.
	OwlTransitiveProperty = "http://www.w3.org/2002/07/owl#TransitiveProperty"

	// OwlSameAs indicates that two URI references refer to the same
	// entity. Stored but not given built-in semantics.
	OwlSameAs = "http://www.w3.org/2002/07/owl#sameAs"

	// OwlClass is the class of OWL classes.
	OwlClass = "http://www.w3.org/2002/07/owl#Class"
)

// SHACL IRIs, used by external collaborators exchanging shape data.
const (
	ShNodeShape   = "http://www.w3.org/ns/shacl#NodeShape"
	ShTargetClass = "http://www.w3.org/ns/shacl#targetClass"
	ShPath        = "http://www.w3.org/ns/shacl#path"
	ShMinCount    = "http://www.w3.org/ns/shacl#minCount"
	ShMaxCount    = "http://www.w3.org/ns/shacl#maxCount"
)
