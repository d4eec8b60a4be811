// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package countervm

import (
	"context"
	"errors"

	"github.com/ava-labs/avalanchego/utils/timer/mockable"
)

type builder struct {
	clock *mockable.Clock

	mempool          *mempool
	state            *contractState
	maxCallsPerBlock int
}

func newBuilder(clock *mockable.Clock, mempool *mempool, state *contractState, maxCallsPerBlock int) *builder {
	return &builder{
		clock:            clock,
		mempool:          mempool,
		state:            state,
		maxCallsPerBlock: maxCallsPerBlock,
	}
}

// BuildBlock drains up to [maxCallsPerBlock] calls into a block on top of [parentBlock]
func (b *builder) BuildBlock(_ context.Context, parentBlock *Block) (*Block, error) {
	defer b.mempool.NotifyBuildBlock()

	calls := make([]Call, 0, b.maxCallsPerBlock)
	for len(calls) < b.maxCallsPerBlock {
		call, err := b.mempool.Next()
		if errors.Is(err, errEmptyMempool) {
			break
		}
		if err != nil {
			return nil, err
		}
		calls = append(calls, call)
	}
	if len(calls) == 0 {
		return nil, errEmptyMempool
	}

	// Calls never write to the contract state, so the root is unchanged
	stateRoot, err := b.state.Root()
	if err != nil {
		return nil, err
	}

	timestamp := b.clock.Time().Unix()
	if timestamp < parentBlock.Tmstmp {
		timestamp = parentBlock.Tmstmp
	}

	block := &Block{
		PrntID:    parentBlock.id,
		Hght:      parentBlock.Hght + 1,
		Tmstmp:    timestamp,
		StateRoot: stateRoot,
		Calls:     calls,
	}
	return block, block.initialize()
}
