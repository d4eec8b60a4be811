// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package countervm

import (
	"github.com/ava-labs/avalanchego/snow/validators"
	"github.com/ava-labs/avalanchego/utils/logging"

	"github.com/ava-labs/countervm/sdk/stack"
)

// Factory creates countervm instances for a node that links the VM in
// directly instead of running it as a plugin
type Factory struct{}

// New returns a new chain VM
func (*Factory) New(logging.Logger) (interface{}, error) { return NewChainVM(), nil }

// NewChainVM returns the VM wrapped by the stack into a block.ChainVM.
// The VM also listens for peer connections.
func NewChainVM() *stack.VM[*Block] {
	vm := &VM{}
	return &stack.VM[*Block]{
		ChainVM:    vm,
		Connectors: []validators.Connector{vm},
	}
}
