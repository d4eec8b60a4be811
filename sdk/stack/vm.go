// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package stack

import (
	"context"

	"github.com/ava-labs/avalanchego/database/manager"
	"github.com/ava-labs/avalanchego/snow"
	"github.com/ava-labs/avalanchego/snow/engine/common"
	"github.com/ava-labs/avalanchego/snow/engine/snowman/block"
	"github.com/ava-labs/avalanchego/snow/validators"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/countervm/sdk/network"
)

// Type assertions
var _ block.ChainVM = (*VM[StatelessBlock])(nil)

// MetricsRegisterer is implemented by backends that expose their own metrics.
// They are registered alongside the block cache metrics.
type MetricsRegisterer interface {
	RegisterMetrics(prometheus.Registerer) error
}

// VM wraps a VMBackend into a block.ChainVM
type VM[Block StatelessBlock] struct {
	chainCtx *snow.Context

	ChainVM VMBackend[Block]
	// Connectors are notified of peer connections in addition to the
	// network's own peer tracking
	Connectors []validators.Connector

	*BlockCache[Block]
	*network.Network
}

func (vm *VM[B]) Initialize(
	ctx context.Context,
	chainCtx *snow.Context,
	dbManager manager.Manager,
	genesisBytes []byte,
	upgradeBytes []byte,
	configBytes []byte,
	toEngine chan<- common.Message,
	fxs []*common.Fx,
	appSender common.AppSender,
) error {
	vm.chainCtx = chainCtx
	vm.Network = network.NewNetwork(chainCtx.Log, vm.Connectors)
	if err := vm.ChainVM.Initialize(
		ctx,
		chainCtx,
		dbManager,
		genesisBytes,
		upgradeBytes,
		configBytes,
		toEngine,
		fxs,
		appSender,
	); err != nil {
		return err
	}

	// Initialize chain
	lastAcceptedID, err := vm.ChainVM.LastAccepted(ctx)
	if err != nil {
		return err
	}
	lastAcceptedBlock, err := vm.ChainVM.GetBlock(ctx, lastAcceptedID)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	vm.BlockCache, err = NewBlockCache[B](vm.ChainVM, lastAcceptedBlock, DefaultBlockCacheConfig, registry)
	if err != nil {
		return err
	}
	if registerer, ok := vm.ChainVM.(MetricsRegisterer); ok {
		if err := registerer.RegisterMetrics(registry); err != nil {
			return err
		}
	}
	if chainCtx.Metrics != nil {
		return chainCtx.Metrics.Register(registry)
	}
	return nil
}

func (vm *VM[B]) HealthCheck(ctx context.Context) (interface{}, error) {
	return vm.ChainVM.HealthCheck(ctx)
}

// SetState communicates to VM its next state it starts
func (vm *VM[B]) SetState(ctx context.Context, state snow.State) error {
	return vm.ChainVM.SetState(ctx, state)
}

// Shutdown is called when the node is shutting down.
func (vm *VM[B]) Shutdown(ctx context.Context) error {
	if vm.BlockCache != nil {
		vm.BlockCache.Flush()
	}
	return vm.ChainVM.Shutdown(ctx)
}

// Version returns the version of the VM.
func (vm *VM[B]) Version(ctx context.Context) (string, error) {
	return vm.ChainVM.Version(ctx)
}

func (vm *VM[B]) CreateStaticHandlers(ctx context.Context) (map[string]*common.HTTPHandler, error) {
	return vm.ChainVM.CreateStaticHandlers(ctx)
}

func (vm *VM[B]) CreateHandlers(ctx context.Context) (map[string]*common.HTTPHandler, error) {
	return vm.ChainVM.CreateHandlers(ctx)
}
