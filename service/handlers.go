package service

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/c360/semkernel/errors"
	"github.com/c360/semkernel/query"
	"github.com/c360/semkernel/types"
)

// AskRequest asks whether at least one triple matches the pattern. Empty
// strings are wildcards.
type AskRequest struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`

	// Reason routes the ask through the reasoner instead of the direct
	// index.
	Reason bool `json:"reason,omitempty"`
}

// AskResponse carries the result of an ask.
type AskResponse struct {
	Found bool   `json:"found"`
	Error string `json:"error,omitempty"`
}

// ObjectsRequest enumerates objects for a (predicate, subject) pair.
type ObjectsRequest struct {
	Predicate string `json:"predicate"`
	Subject   string `json:"subject"`
}

// ObjectsResponse carries resolved object terms.
type ObjectsResponse struct {
	Objects []string `json:"objects"`
	Error   string   `json:"error,omitempty"`
}

// JoinPattern is one (predicate, object) pattern of a join. An empty
// object is a wildcard.
type JoinPattern struct {
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
}

// JoinRequest intersects the subject sets of all patterns, or unions
// them when Union is set.
type JoinRequest struct {
	Patterns []JoinPattern `json:"patterns"`
	Union    bool          `json:"union,omitempty"`
}

// JoinResponse carries resolved subject terms.
type JoinResponse struct {
	Subjects []string `json:"subjects"`
	Cached   bool     `json:"cached,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// ValidateRequest validates an entity against all registered shapes.
type ValidateRequest struct {
	Entity string `json:"entity"`
}

// ValidateResponse maps shape id to conformance.
type ValidateResponse struct {
	Results map[string]bool `json:"results"`
	Error   string          `json:"error,omitempty"`
}

func (s *Service) handleAsk(data []byte) []byte {
	var req AskRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return marshalReply(AskResponse{Error: "malformed request: " + err.Error()})
	}

	subj, ok := s.lookupTerm(req.Subject)
	if !ok {
		return marshalReply(AskResponse{Found: false})
	}
	pred, ok := s.lookupTerm(req.Predicate)
	if !ok {
		return marshalReply(AskResponse{Found: false})
	}
	obj, ok := s.lookupTerm(req.Object)
	if !ok {
		return marshalReply(AskResponse{Found: false})
	}

	if req.Reason {
		found, err := s.engine.AskWithReasoning(subj, pred, obj)
		if err != nil {
			return marshalReply(AskResponse{Error: errorMessage(err)})
		}
		return marshalReply(AskResponse{Found: found})
	}
	return marshalReply(AskResponse{Found: s.engine.Ask(subj, pred, obj)})
}

func (s *Service) handleReason(data []byte) []byte {
	var req AskRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return marshalReply(AskResponse{Error: "malformed request: " + err.Error()})
	}
	req.Reason = true
	payload, err := json.Marshal(req)
	if err != nil {
		return marshalReply(AskResponse{Error: err.Error()})
	}
	return s.handleAsk(payload)
}

func (s *Service) handleObjects(data []byte) []byte {
	var req ObjectsRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return marshalReply(ObjectsResponse{Error: "malformed request: " + err.Error()})
	}
	if req.Predicate == "" || req.Subject == "" {
		return marshalReply(ObjectsResponse{Error: "predicate and subject are required"})
	}

	pred, ok := s.engine.Lookup(req.Predicate)
	if !ok {
		return marshalReply(ObjectsResponse{Objects: []string{}})
	}
	subj, ok := s.engine.Lookup(req.Subject)
	if !ok {
		return marshalReply(ObjectsResponse{Objects: []string{}})
	}

	objects, err := s.resolveAll(s.engine.Objects(pred, subj))
	if err != nil {
		return marshalReply(ObjectsResponse{Error: errorMessage(err)})
	}
	return marshalReply(ObjectsResponse{Objects: objects})
}

func (s *Service) handleJoin(data []byte) []byte {
	var req JoinRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return marshalReply(JoinResponse{Error: "malformed request: " + err.Error()})
	}
	if len(req.Patterns) == 0 {
		return marshalReply(JoinResponse{Error: "at least one pattern is required"})
	}

	key := joinCacheKey(req, s.engine.Generation())
	if s.joinCache != nil {
		if subjects, hit := s.joinCache.Get(key); hit {
			return marshalReply(JoinResponse{Subjects: subjects, Cached: true})
		}
	}

	patterns := make([]query.Pattern, 0, len(req.Patterns))
	for _, p := range req.Patterns {
		if p.Predicate == "" {
			return marshalReply(JoinResponse{Error: "join patterns require a bound predicate"})
		}
		pred, ok := s.engine.Lookup(p.Predicate)
		if !ok {
			// Unknown predicate matches nothing.
			if req.Union {
				continue
			}
			return marshalReply(JoinResponse{Subjects: []string{}})
		}
		obj, ok := s.lookupTerm(p.Object)
		if !ok {
			if req.Union {
				continue
			}
			return marshalReply(JoinResponse{Subjects: []string{}})
		}
		patterns = append(patterns, query.Pattern{Predicate: pred, Object: obj})
	}
	if len(patterns) == 0 {
		return marshalReply(JoinResponse{Subjects: []string{}})
	}

	var (
		ids []types.ID
		err error
	)
	if req.Union {
		ids, err = s.engine.Union(patterns)
	} else {
		ids, err = s.engine.Join(patterns)
	}
	if err != nil {
		return marshalReply(JoinResponse{Error: errorMessage(err)})
	}

	subjects, err := s.resolveAll(ids)
	if err != nil {
		return marshalReply(JoinResponse{Error: errorMessage(err)})
	}
	if s.joinCache != nil {
		if _, err := s.joinCache.Set(key, subjects); err != nil {
			s.logger.Warn("failed to cache join result", "error", err)
		}
	}
	return marshalReply(JoinResponse{Subjects: subjects})
}

func (s *Service) handleValidate(data []byte) []byte {
	var req ValidateRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return marshalReply(ValidateResponse{Error: "malformed request: " + err.Error()})
	}
	if req.Entity == "" {
		return marshalReply(ValidateResponse{Error: "entity is required"})
	}

	entity, ok := s.engine.Lookup(req.Entity)
	if !ok {
		return marshalReply(ValidateResponse{Error: "unknown entity: " + req.Entity})
	}
	results, err := s.engine.Validate(entity)
	if err != nil {
		return marshalReply(ValidateResponse{Error: errorMessage(err)})
	}
	return marshalReply(ValidateResponse{Results: results})
}

func (s *Service) handleStats(_ []byte) []byte {
	stats := s.engine.Stats()
	payload, err := json.Marshal(stats)
	if err != nil {
		s.logger.Error("failed to marshal stats", "error", err)
		return []byte(`{}`)
	}
	return payload
}

// lookupTerm resolves a request term without interning it. Empty strings
// are the wildcard. A term the engine has never seen matches nothing.
func (s *Service) lookupTerm(term string) (types.ID, bool) {
	if term == "" {
		return types.Wildcard, true
	}
	return s.engine.Lookup(term)
}

// resolveAll maps identifiers back to strings, sorted for stable output.
func (s *Service) resolveAll(ids []types.ID) ([]string, error) {
	terms := make([]string, 0, len(ids))
	for _, id := range ids {
		term, err := s.engine.Resolve(id)
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms, nil
}

// joinCacheKey digests the request together with the engine generation,
// so entries written before any store mutation can never be served after.
func joinCacheKey(req JoinRequest, generation uint64) string {
	d := xxhash.New()
	if req.Union {
		_, _ = d.WriteString("u|")
	}
	for _, p := range req.Patterns {
		_, _ = d.WriteString(p.Predicate)
		_, _ = d.WriteString("\x00")
		_, _ = d.WriteString(p.Object)
		_, _ = d.WriteString("\x01")
	}
	return fmt.Sprintf("%d:%x", generation, d.Sum64())
}

func marshalReply(v any) []byte {
	payload, err := json.Marshal(v)
	if err != nil {
		return []byte(`{"error":"internal encoding failure"}`)
	}
	return payload
}

// errorMessage strips the wrapped chain down to a transport-safe message
// while keeping the error class visible.
func errorMessage(err error) string {
	return fmt.Sprintf("%s: %s", errors.ClassOf(err), err.Error())
}
