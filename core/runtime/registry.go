package runtime

import (
	"fmt"
	"sync"

	"github.com/tos-network/ratingd/common"
	"github.com/tos-network/ratingd/core/vm"
)

// Registry holds the programs a runtime can invoke.
type Registry struct {
	mu       sync.RWMutex
	programs map[common.Address]vm.Program
	native   map[common.Address]bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		programs: make(map[common.Address]vm.Program),
		native:   make(map[common.Address]bool),
	}
}

// Register adds a user program.
func (r *Registry) Register(p vm.Program) error {
	return r.register(p, false)
}

// RegisterNative adds a program that receives direct ledger access.
func (r *Registry) RegisterNative(p vm.Program) error {
	return r.register(p, true)
}

func (r *Registry) register(p vm.Program, native bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := p.ID()
	if _, ok := r.programs[id]; ok {
		return fmt.Errorf("%w: %s", ErrProgramRegistered, id)
	}
	r.programs[id] = p
	r.native[id] = native
	return nil
}

// Lookup returns the program registered under id and whether it is native.
func (r *Registry) Lookup(id common.Address) (vm.Program, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.programs[id]
	if !ok {
		return nil, false, fmt.Errorf("%w: %s", ErrProgramNotFound, id)
	}
	return p, r.native[id], nil
}

// Programs lists the registered program ids.
func (r *Registry) Programs() []common.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]common.Address, 0, len(r.programs))
	for id := range r.programs {
		ids = append(ids, id)
	}
	return ids
}
