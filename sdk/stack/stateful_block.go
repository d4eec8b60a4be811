// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package stack

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/snow/choices"
	"github.com/ava-labs/avalanchego/snow/consensus/snowman"
)

var errNotVerified = errors.New("block has not been verified")

// Type assertion
var _ snowman.Block = (*Block[StatelessBlock])(nil)

// Block implements the snowman.Block interface
type Block[B StatelessBlock] struct {
	innerBlock B
	cache      *BlockCache[B]

	// decider is set once the block passes verification
	decider Decider
	status  choices.Status
}

func (b *Block[B]) ID() ids.ID {
	return b.innerBlock.ID()
}

func (b *Block[B]) Parent() ids.ID {
	return b.innerBlock.Parent()
}

func (b *Block[B]) Bytes() []byte {
	return b.innerBlock.Bytes()
}

func (b *Block[B]) Height() uint64 {
	return b.innerBlock.Height()
}

func (b *Block[B]) Timestamp() time.Time {
	return b.innerBlock.Timestamp()
}

func (b *Block[B]) Status() choices.Status {
	return b.status
}

// Inner returns the block the backend produced
func (b *Block[B]) Inner() B {
	return b.innerBlock
}

func (b *Block[B]) Verify(ctx context.Context) error {
	parentBlock, err := b.cache.getBlock(ctx, b.innerBlock.Parent())
	if err != nil {
		return fmt.Errorf("failed to get parent of %s for verification: %w", b.innerBlock.ID(), err)
	}

	decider, err := b.cache.backend.Verify(ctx, parentBlock.innerBlock, b.innerBlock)
	if err != nil {
		return err
	}
	b.decider = decider

	// Update caches if verification passes
	blkID := b.innerBlock.ID()
	b.cache.unverifiedBlocks.Evict(blkID)
	b.cache.verifiedBlocks[blkID] = b

	return nil
}

func (b *Block[B]) Accept(ctx context.Context) error {
	if b.decider == nil {
		return fmt.Errorf("failed to accept %s: %w", b.innerBlock.ID(), errNotVerified)
	}
	if err := b.decider.Accept(ctx); err != nil {
		return err
	}

	b.status = choices.Accepted
	b.decider = nil

	blkID := b.innerBlock.ID()
	b.cache.decidedBlocks.Put(blkID, b)
	delete(b.cache.verifiedBlocks, blkID)
	b.cache.lastAcceptedBlock = b

	return nil
}

func (b *Block[B]) Reject(ctx context.Context) error {
	if b.decider != nil {
		if err := b.decider.Abandon(ctx); err != nil {
			return err
		}
	}

	b.status = choices.Rejected
	b.decider = nil

	blkID := b.innerBlock.ID()
	delete(b.cache.verifiedBlocks, blkID)
	b.cache.decidedBlocks.Put(blkID, b)
	return nil
}
