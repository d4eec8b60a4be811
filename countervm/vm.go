// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package countervm

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/manager"
	"github.com/ava-labs/avalanchego/database/prefixdb"
	"github.com/ava-labs/avalanchego/database/versiondb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/snow"
	"github.com/ava-labs/avalanchego/snow/engine/common"
	"github.com/ava-labs/avalanchego/snow/validators"
	avalancheJSON "github.com/ava-labs/avalanchego/utils/json"
	"github.com/ava-labs/avalanchego/utils/timer/mockable"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/ava-labs/avalanchego/version"
	avalancheRPC "github.com/gorilla/rpc/v2"
	log "github.com/inconshreveable/log15"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/countervm/contract"
	"github.com/ava-labs/countervm/sdk/stack"
)

// Name/Version
var (
	Name    = "countervm"
	Version = "v0.1.0"
	ID      = ids.ID{'c', 'o', 'u', 'n', 't', 'e', 'r', 'v', 'm'}
)

// Type assertions
var (
	_ stack.VMBackend[*Block]  = (*VM)(nil)
	_ stack.MetricsRegisterer = (*VM)(nil)
	_ validators.Connector    = (*VM)(nil)
)

var (
	// Database prefixes
	heightPrefix   = []byte("height")
	blockPrefix    = []byte("block")
	acceptedPrefix = []byte("accepted")
	statePrefix    = []byte("state")
	receiptPrefix  = []byte("receipt")

	// Database markers
	acceptedKey = []byte("acceptedBlock")

	futureBlockLimit = time.Minute // Maximum amount of time that a block can be in the future

	errGenesisMismatch   = errors.New("genesis block does not match the database")
	errWrongHeight       = errors.New("block height does not follow its parent")
	errTimestampTooEarly = errors.New("block timestamp is before its parent's")
	errTimestampTooLate  = errors.New("block timestamp is too far in the future")
	errNoCalls           = errors.New("block has no calls")
	errTooManyCalls      = errors.New("block has too many calls")
	errStateRootMismatch = errors.New("block state root does not match the executed state")
)

// VM hosts the counter contract on a Snowman chain.
// Each block carries a batch of contract calls and commits to the
// contract state after executing them.
type VM struct {
	log    log.Logger
	config Config

	// Clock used for block building and verification
	clock mockable.Clock

	// State management
	vDB           *versiondb.Database
	heightIndex   database.Database
	blockIndex    database.Database
	acceptedIndex database.Database
	state         *contractState

	bootstrapped atomic.Bool

	mempool *mempool
	*builder

	metrics *metrics
}

// Initialize implements the snowman.ChainVM interface
func (vm *VM) Initialize(
	ctx context.Context,
	chainCtx *snow.Context,
	dbManager manager.Manager,
	genesisBytes []byte,
	_ []byte,
	configBytes []byte,
	toEngine chan<- common.Message,
	_ []*common.Fx,
	_ common.AppSender,
) error {
	config, err := ParseConfig(configBytes)
	if err != nil {
		return err
	}
	vm.config = config

	lvl, _ := config.Lvl()
	vm.log = log.New("vm", Name, "chainID", chainCtx.ChainID)
	vm.log.SetHandler(log.LvlFilterHandler(lvl, log.Root().GetHandler()))
	vm.log.Info("initializing VM", "version", Version, "mempoolSize", config.MempoolSize, "maxCallsPerBlock", config.MaxCallsPerBlock)

	vm.vDB = versiondb.New(dbManager.Current().Database)
	vm.heightIndex = prefixdb.New(heightPrefix, vm.vDB)
	vm.blockIndex = prefixdb.New(blockPrefix, vm.vDB)
	vm.acceptedIndex = prefixdb.New(acceptedPrefix, vm.vDB)
	vm.state = newContractState(
		prefixdb.New(statePrefix, vm.vDB),
		prefixdb.New(receiptPrefix, vm.vDB),
	)

	vm.metrics = newMetrics()
	vm.mempool = newMempool(toEngine, config.MempoolSize)
	vm.builder = newBuilder(&vm.clock, vm.mempool, vm.state, config.MaxCallsPerBlock)

	if err := vm.initGenesis(ctx, genesisBytes); err != nil {
		vm.log.Error("failed to initialize genesis", "err", err)
		return err
	}
	return nil
}

func (vm *VM) initGenesis(ctx context.Context, genesisBytes []byte) error {
	if _, err := ParseGenesis(genesisBytes); err != nil {
		return err
	}

	defer vm.vDB.Abort()

	initialized, err := vm.state.IsInitialized()
	if err != nil {
		return fmt.Errorf("failed to check contract state: %w", err)
	}
	if !initialized {
		if err := vm.state.Init(); err != nil {
			return err
		}
	}

	stateRoot, err := vm.state.Root()
	if err != nil {
		return err
	}
	genesisBlock := &Block{
		PrntID:    ids.Empty,
		Hght:      0,
		Tmstmp:    0,
		StateRoot: stateRoot,
	}
	if err := genesisBlock.initialize(); err != nil {
		return fmt.Errorf("failed to marshal genesis block: %w", err)
	}

	genesisBlkID, err := vm.GetBlockIDAtHeight(ctx, 0)
	switch {
	case err == nil && genesisBlkID == genesisBlock.id: // If the block on disk matches what we built, return early
		vm.log.Info("loaded existing chain", "genesisID", genesisBlkID)
		return nil
	case err == nil:
		return fmt.Errorf("%w: found %s, expected %s", errGenesisMismatch, genesisBlkID, genesisBlock.id)
	case errors.Is(err, database.ErrNotFound):
		if err := vm.putAccepted(genesisBlock, nil); err != nil {
			return fmt.Errorf("failed to put genesis block: %w", err)
		}
		if err := vm.vDB.Commit(); err != nil {
			return fmt.Errorf("failed to commit genesis: %w", err)
		}
		vm.log.Info("initialized genesis", "genesisID", genesisBlock.id, "stateRoot", stateRoot)
		return nil
	default:
		return fmt.Errorf("failed to get blockID for genesis: %w", err)
	}
}

// RegisterMetrics implements the stack.MetricsRegisterer interface
func (vm *VM) RegisterMetrics(registerer prometheus.Registerer) error {
	return vm.metrics.register(registerer)
}

func (vm *VM) ParseBlock(_ context.Context, b []byte) (*Block, error) {
	return ParseBlock(b)
}

// BuildBlock implements the stack.BlockBackend interface
func (vm *VM) BuildBlock(ctx context.Context, parentBlock *Block) (*Block, error) {
	block, err := vm.builder.BuildBlock(ctx, parentBlock)
	vm.metrics.mempoolSize.Set(float64(vm.mempool.Len()))
	if err != nil {
		return nil, err
	}
	vm.metrics.blocksBuilt.Inc()
	vm.log.Debug("built block", "blkID", block.id, "height", block.Hght, "calls", len(block.Calls))
	return block, nil
}

// SubmitCall adds [call] to the mempool
func (vm *VM) SubmitCall(call Call) error {
	if err := vm.mempool.Add(call); err != nil {
		return err
	}
	vm.metrics.callsSubmitted.Inc()
	vm.metrics.mempoolSize.Set(float64(vm.mempool.Len()))
	return nil
}

// putAccepted writes [block] and [receipts] to the accepted index.
// The caller is responsible for committing.
func (vm *VM) putAccepted(block *Block, receipts []*Receipt) error {
	heightBytes := make([]byte, wrappers.LongLen)
	binary.BigEndian.PutUint64(heightBytes, block.Height())

	if err := vm.heightIndex.Put(heightBytes, block.id[:]); err != nil {
		return fmt.Errorf("failed to put block %s into height index: %w", block.ID(), err)
	}

	if err := vm.blockIndex.Put(block.id[:], block.bytes); err != nil {
		return fmt.Errorf("failed to put block %s into block index: %w", block.ID(), err)
	}

	for _, receipt := range receipts {
		if err := vm.state.PutReceipt(receipt); err != nil {
			return fmt.Errorf("failed to put receipt %d of block %s: %w", receipt.Index, block.id, err)
		}
	}

	if err := vm.acceptedIndex.Put(acceptedKey, block.id[:]); err != nil {
		return fmt.Errorf("failed to update last accepted block to %s: %w", block.id, err)
	}
	return nil
}

// acceptBlock atomically persists [block] and the receipts produced while
// verifying it
func (vm *VM) acceptBlock(block *Block, receipts []*Receipt) error {
	defer vm.vDB.Abort()

	if err := vm.putAccepted(block, receipts); err != nil {
		return err
	}

	if err := vm.vDB.Commit(); err != nil {
		return fmt.Errorf("failed to commit database accepting block %s: %w", block.id, err)
	}

	vm.metrics.blocksAccepted.Inc()
	vm.metrics.callsAccepted.Add(float64(len(receipts)))
	vm.log.Info("accepted block", "blkID", block.id, "height", block.Hght, "calls", len(receipts))
	return nil
}

func (vm *VM) GetBlockIDAtHeight(_ context.Context, height uint64) (ids.ID, error) {
	heightBytes := make([]byte, wrappers.LongLen)
	binary.BigEndian.PutUint64(heightBytes, height)

	blkIDBytes, err := vm.heightIndex.Get(heightBytes)
	switch {
	case err == database.ErrNotFound:
		return ids.ID{}, err
	case err != nil:
		return ids.ID{}, fmt.Errorf("failed to get height index at %d: %w", height, err)
	}

	blkID, err := ids.ToID(blkIDBytes)
	if err != nil {
		return ids.ID{}, fmt.Errorf("failed to parse blkIDBytes at height %d: %w", height, err)
	}

	return blkID, nil
}

func (vm *VM) GetBlock(ctx context.Context, blkID ids.ID) (*Block, error) {
	blkBytes, err := vm.blockIndex.Get(blkID[:])
	if err != nil {
		return nil, fmt.Errorf("failed to get block %s: %w", blkID, err)
	}

	blk, err := vm.ParseBlock(ctx, blkBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse block from disk %s: %w", blkID, err)
	}

	return blk, nil
}

// Verify verifies that [block] to be added to consensus with the given parent block.
// This function assumes that [parentBlock] is guaranteed to be the actual parent of
// [block].
func (vm *VM) Verify(_ context.Context, parent *Block, block *Block) (stack.Decider, error) {
	// Ensure [b]'s height comes right after its parent's height
	if expectedHeight := parent.Height() + 1; expectedHeight != block.Hght {
		return nil, fmt.Errorf(
			"%w: expected %d, but found %d",
			errWrongHeight,
			expectedHeight,
			block.Hght,
		)
	}

	// Ensure [b]'s timestamp is >= its parent's timestamp.
	if block.Timestamp().Unix() < parent.Timestamp().Unix() {
		return nil, fmt.Errorf("%w: %s < %s", errTimestampTooEarly, block.Timestamp(), parent.Timestamp())
	}

	// Ensure [b]'s timestamp is not more than [futureBlockLimit]
	// ahead of this node's time
	now := vm.clock.Time()
	if block.Timestamp().Unix() >= now.Add(futureBlockLimit).Unix() {
		return nil, fmt.Errorf("%w: %s is further than %s past current time %s", errTimestampTooLate, block.Timestamp(), futureBlockLimit, now)
	}

	switch {
	case len(block.Calls) == 0:
		return nil, errNoCalls
	case len(block.Calls) > vm.config.MaxCallsPerBlock:
		return nil, fmt.Errorf("%w: %d > %d", errTooManyCalls, len(block.Calls), vm.config.MaxCallsPerBlock)
	}

	receipts, err := vm.state.Execute(block.id, block.Calls)
	if err != nil {
		return nil, err
	}

	stateRoot, err := vm.state.Root()
	if err != nil {
		return nil, err
	}
	if block.StateRoot != stateRoot {
		return nil, fmt.Errorf("%w: block has %s, expected %s", errStateRootMismatch, block.StateRoot, stateRoot)
	}

	return &blockDecider{
		Block:    block,
		receipts: receipts,
		vm:       vm,
	}, nil
}

func (vm *VM) LastAccepted(context.Context) (ids.ID, error) {
	blkIDBytes, err := vm.acceptedIndex.Get(acceptedKey)
	if err != nil {
		return ids.ID{}, fmt.Errorf("failed to get last accepted blockID: %w", err)
	}

	blkID, err := ids.ToID(blkIDBytes)
	if err != nil {
		return ids.ID{}, fmt.Errorf("failed to parse last accepted blockID from disk: %w", err)
	}

	return blkID, nil
}

// Hello serves a read-only call to the contract's hello method against the
// persisted state
func (vm *VM) Hello(to contract.AccountID) (string, contract.AccountID, error) {
	state, err := vm.state.Get()
	if err != nil {
		return "", contract.AccountID{}, err
	}
	greeting, greeted := state.Hello(to)
	vm.metrics.views.Inc()
	return greeting, greeted, nil
}

// HealthCheck reports the tip of the chain and the pending work
func (vm *VM) HealthCheck(ctx context.Context) (interface{}, error) {
	lastAcceptedID, err := vm.LastAccepted(ctx)
	if err != nil {
		return nil, err
	}
	lastAccepted, err := vm.GetBlock(ctx, lastAcceptedID)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"lastAcceptedID":     lastAcceptedID,
		"lastAcceptedHeight": lastAccepted.Height(),
		"mempoolSize":        vm.mempool.Len(),
		"bootstrapped":       vm.bootstrapped.Load(),
	}, nil
}

// SetState communicates to VM its next state it starts
func (vm *VM) SetState(_ context.Context, state snow.State) error {
	switch state {
	case snow.Bootstrapping:
		vm.bootstrapped.Store(false)
	case snow.NormalOp:
		vm.bootstrapped.Store(true)
	default:
		return snow.ErrUnknownState
	}
	vm.log.Info("VM state changed", "state", state)
	return nil
}

// Connected records a peer joining the chain's network
func (vm *VM) Connected(_ context.Context, nodeID ids.NodeID, nodeVersion *version.Application) error {
	vm.metrics.peers.Inc()
	vm.log.Debug("peer connected", "nodeID", nodeID, "version", nodeVersion)
	return nil
}

// Disconnected records a peer leaving the chain's network
func (vm *VM) Disconnected(_ context.Context, nodeID ids.NodeID) error {
	vm.metrics.peers.Dec()
	vm.log.Debug("peer disconnected", "nodeID", nodeID)
	return nil
}

// Shutdown is called when the node is shutting down.
func (vm *VM) Shutdown(context.Context) error {
	if vm.vDB == nil {
		return nil
	}
	vm.log.Info("shutting down VM")
	return vm.vDB.Close()
}

// Version returns the version of the VM.
func (vm *VM) Version(context.Context) (string, error) {
	return Version, nil
}

// CreateStaticHandlers returns the API that is available without a chain
func (vm *VM) CreateStaticHandlers(context.Context) (map[string]*common.HTTPHandler, error) {
	server := newRPCServer()
	if err := server.RegisterService(CreateStaticService(), ContractName); err != nil {
		return nil, err
	}
	return map[string]*common.HTTPHandler{
		"": {LockOptions: common.NoLock, Handler: server},
	}, nil
}

func (vm *VM) CreateHandlers(context.Context) (map[string]*common.HTTPHandler, error) {
	server := newRPCServer()
	if err := server.RegisterService(&Service{vm: vm}, ContractName); err != nil {
		return nil, err
	}

	handlers := map[string]*common.HTTPHandler{
		"/" + ContractName: {LockOptions: common.ReadLock, Handler: server},
	}
	return handlers, nil
}

func newRPCServer() *avalancheRPC.Server {
	server := avalancheRPC.NewServer()
	server.RegisterCodec(avalancheJSON.NewCodec(), "application/json")
	server.RegisterCodec(avalancheJSON.NewCodec(), "application/json;charset=UTF-8")
	return server
}
