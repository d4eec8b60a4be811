// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package stack

import (
	"context"
	"time"

	"github.com/ava-labs/avalanchego/api/health"
	"github.com/ava-labs/avalanchego/database/manager"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/snow"
	"github.com/ava-labs/avalanchego/snow/engine/common"
)

// VMBackend is everything a VM built on the stack must implement. The stack
// supplies block caching, consensus status tracking and networking on top.
type VMBackend[Block StatelessBlock] interface {
	Initialize(
		ctx context.Context,
		chainCtx *snow.Context,
		dbManager manager.Manager,
		genesisBytes []byte,
		upgradeBytes []byte,
		configBytes []byte,
		toEngine chan<- common.Message,
		fxs []*common.Fx,
		appSender common.AppSender,
	) error

	// Returns nil if the VM is healthy.
	// Periodically called and reported via the node's Health API.
	health.Checker

	// SetState communicates to VM its next state it starts
	SetState(ctx context.Context, state snow.State) error

	// Shutdown is called when the node is shutting down.
	Shutdown(context.Context) error

	// Version returns the version of the VM.
	Version(context.Context) (string, error)

	ChainBackend[Block]

	CreateStaticHandlers(context.Context) (map[string]*common.HTTPHandler, error)
	CreateHandlers(context.Context) (map[string]*common.HTTPHandler, error)
}

// ChainBackend provides the index of accepted blocks
type ChainBackend[Block StatelessBlock] interface {
	LastAccepted(context.Context) (ids.ID, error)
	// GetBlockIDAtHeight returns database.ErrNotFound if no block has been
	// accepted at [height]
	GetBlockIDAtHeight(context.Context, uint64) (ids.ID, error)
	// GetBlock returns an error wrapping database.ErrNotFound if the block
	// is not known
	GetBlock(context.Context, ids.ID) (Block, error)
	BlockBackend[Block]
}

type BlockBackend[Block StatelessBlock] interface {
	ParseBlock(context.Context, []byte) (Block, error)
	BuildBlock(ctx context.Context, parent Block) (Block, error)
	BlockDecisioner[Block]
}

type BlockDecisioner[Block StatelessBlock] interface {
	// Verify assumes that [parent] is the actual parent of [block]
	Verify(ctx context.Context, parent Block, block Block) (Decider, error)
}

// Decider holds the result of verifying a block until consensus decides it
type Decider interface {
	Accept(context.Context) error
	Abandon(context.Context) error
}

type StatelessBlock interface {
	ID() ids.ID
	Parent() ids.ID
	Bytes() []byte
	Height() uint64
	Timestamp() time.Time
}
