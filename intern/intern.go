// Package intern maps byte strings to dense 32-bit identifiers and back.
// It is the foundation of every other engine component: all triples,
// shapes, and axioms are expressed over interned identifiers.
//
// The index is an open-addressing hash table over 64-bit xxhash values
// with linear probing. The probe sequence is bounded, but the table
// resizes before occupancy can make the bound reachable, so lookups never
// produce false negatives under the configured load factor.
package intern

import (
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/c360/semkernel/config"
	"github.com/c360/semkernel/errors"
	"github.com/c360/semkernel/types"
)

// slot is one open-addressing table entry. id 0 means empty; the hash is
// cached so resizes and probe comparisons avoid touching string data.
type slot struct {
	hash uint64
	id   types.ID
}

// Interner assigns dense identifiers to byte strings. Identifiers start
// at 1 (0 is the reserved wildcard), are assigned monotonically, and are
// never reused or invalidated while the interner lives.
//
// Not safe for concurrent mutation; see the engine's bulk-load-then-query
// contract.
type Interner struct {
	slots      []slot
	values     []string // values[id-1] is the interned string for id
	mask       uint64   // len(slots)-1; table size is a power of two
	resizeAt   int      // occupancy that triggers doubling
	maxProbes  int
	maxEntries uint32
	loadFactor float64
}

// New creates an interner from validated configuration.
func New(cfg config.InternerConfig) (*Interner, error) {
	if cfg.InitialCapacity < 16 || cfg.InitialCapacity&(cfg.InitialCapacity-1) != 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Interner", "New",
			fmt.Sprintf("initial capacity must be a power of two >= 16, got %d", cfg.InitialCapacity))
	}
	if cfg.MaxLoadFactor <= 0 || cfg.MaxLoadFactor >= 1 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Interner", "New",
			fmt.Sprintf("load factor must be in (0, 1), got %v", cfg.MaxLoadFactor))
	}
	if cfg.MaxProbes < 1 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Interner", "New",
			"max probes must be >= 1")
	}
	if cfg.MaxEntries == 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Interner", "New",
			"max entries must be > 0")
	}

	return &Interner{
		slots:      make([]slot, cfg.InitialCapacity),
		mask:       uint64(cfg.InitialCapacity - 1),
		resizeAt:   int(float64(cfg.InitialCapacity) * cfg.MaxLoadFactor),
		maxProbes:  cfg.MaxProbes,
		maxEntries: cfg.MaxEntries,
		loadFactor: cfg.MaxLoadFactor,
	}, nil
}

// Intern returns the identifier for s, issuing a fresh one if s has not
// been seen. Interning equal byte content always returns the same id.
func (in *Interner) Intern(s string) (types.ID, error) {
	if len(s) == 0 {
		return 0, errors.WrapInvalid(errors.ErrReservedIdentifier, "Interner", "Intern",
			"empty string cannot be interned")
	}

	hash := xxhash.Sum64String(s)
	if id, _, found := in.probe(hash, s); found {
		return id, nil
	}

	if uint32(len(in.values)) >= in.maxEntries {
		return 0, errors.WrapInvalid(errors.ErrCapacityExceeded, "Interner", "Intern",
			fmt.Sprintf("interner full at %d entries", in.maxEntries))
	}

	if len(in.values)+1 > in.resizeAt {
		if err := in.grow(); err != nil {
			return 0, err
		}
	}

	// Find the slot before committing the value, so a failed probe leaves
	// no half-interned string behind.
	_, idx, _ := in.probe(hash, s)
	if idx < 0 {
		// Unreachable below the load factor; a full probe chain after a
		// fresh resize means the table is corrupted.
		return 0, errors.WrapFatal(errors.ErrIndexCorrupt, "Interner", "Intern",
			"probe bound exhausted after resize")
	}

	in.values = append(in.values, s)
	id := types.ID(len(in.values)) // ids are 1-based
	in.slots[idx] = slot{hash: hash, id: id}
	return id, nil
}

// Lookup returns the identifier for s without interning it. The second
// return is false if s was never interned. Lookup never mutates, so it is
// safe on a frozen engine.
func (in *Interner) Lookup(s string) (types.ID, bool) {
	if len(s) == 0 {
		return 0, false
	}
	id, _, found := in.probe(xxhash.Sum64String(s), s)
	return id, found
}

// Resolve returns the string for a previously issued identifier.
func (in *Interner) Resolve(id types.ID) (string, error) {
	if id == 0 || int(id) > len(in.values) {
		return "", errors.WrapNotFound(errors.ErrUnknownIdentifier, "Interner", "Resolve",
			fmt.Sprintf("id %d was never issued", id))
	}
	return in.values[id-1], nil
}

// Len returns the number of interned strings.
func (in *Interner) Len() int {
	return len(in.values)
}

// Capacity returns the current table size.
func (in *Interner) Capacity() int {
	return len(in.slots)
}

// probe walks the bounded linear probe chain for hash/s. It returns the
// existing id if found, or the index of the first empty slot otherwise.
// idx is -1 if the probe bound was exhausted without an empty slot.
func (in *Interner) probe(hash uint64, s string) (id types.ID, idx int, found bool) {
	i := hash & in.mask
	for n := 0; n < in.maxProbes; n++ {
		sl := in.slots[i]
		if sl.id == 0 {
			return 0, int(i), false
		}
		if sl.hash == hash && in.values[sl.id-1] == s {
			return sl.id, int(i), true
		}
		i = (i + 1) & in.mask
	}
	return 0, -1, false
}

// grow doubles the table and reinserts every entry. Values and ids are
// untouched; only the hash index is rebuilt.
func (in *Interner) grow() error {
	newSize := len(in.slots) * 2
	newSlots := make([]slot, newSize)
	newMask := uint64(newSize - 1)

	for _, sl := range in.slots {
		if sl.id == 0 {
			continue
		}
		i := sl.hash & newMask
		placed := false
		for n := 0; n < in.maxProbes; n++ {
			if newSlots[i].id == 0 {
				newSlots[i] = sl
				placed = true
				break
			}
			i = (i + 1) & newMask
		}
		if !placed {
			return errors.WrapFatal(errors.ErrIndexCorrupt, "Interner", "grow",
				"probe bound exhausted during rehash")
		}
	}

	in.slots = newSlots
	in.mask = newMask
	in.resizeAt = int(float64(newSize) * in.loadFactor)
	return nil
}
