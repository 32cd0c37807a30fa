package runtime

import (
	"fmt"

	"github.com/tos-network/ratingd/common"
	"github.com/tos-network/ratingd/core/system"
	"github.com/tos-network/ratingd/core/types"
	"github.com/tos-network/ratingd/core/vm"
)

// storage scopes account access to the accounts of one invocation.
type storage struct {
	inv *invocation
}

func (s *storage) Read(addr common.Address) (*types.Account, error) {
	if s.inv.account(addr) == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingAccount, addr)
	}
	if err := s.inv.tx.state.Error(); err != nil {
		return nil, err
	}
	return s.inv.tx.state.GetAccount(addr), nil
}

// Allocate creates the account through the system program, signing for
// req.Address with req.Seeds.
func (s *storage) Allocate(req vm.AllocateRequest) error {
	ix := system.NewCreateAccountInstruction(req.Funder, req.Address, req.Lamports, req.Space, req.Owner)
	var seeds [][][]byte
	if len(req.Seeds) > 0 {
		seeds = [][][]byte{req.Seeds}
	}
	return s.inv.InvokeSigned(ix, seeds)
}

func (s *storage) Write(addr common.Address, data []byte) error {
	acc := s.inv.account(addr)
	if acc == nil {
		return fmt.Errorf("%w: %s", ErrMissingAccount, addr)
	}
	if !acc.IsWritable {
		return fmt.Errorf("%w: %s", ErrAccountNotWritable, addr)
	}
	st := s.inv.tx.state
	current := st.GetAccount(addr)
	if current == nil {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	if current.Owner != s.inv.program {
		return fmt.Errorf("%w: %s owned by %s", ErrExternalDataModified, addr, current.Owner)
	}
	if len(data) > len(current.Data) {
		return fmt.Errorf("%w: %d > %d", ErrAccountDataTooSmall, len(data), len(current.Data))
	}
	copy(current.Data, data)
	return st.SetData(addr, current.Data)
}
